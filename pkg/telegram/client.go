// Package telegram is a minimal Telegram Bot API client covering exactly the
// methods the bot needs: long polling, sending, editing, and answering
// callback queries.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
)

// Client wraps the Bot API over HTTP and adds retries, timeouts, and backoff.
type Client struct {
	base   *url.URL
	token  string
	cfg    config.TelegramConfig
	client *http.Client

	closed int32 // atomic flag for Close()
}

// package-level logger for pkg/telegram; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/telegram. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// NewClient creates a new Bot API client. The http.Client must not carry its
// own timeout: long polls outlive per-call timeouts, which are applied via
// context instead.
func NewClient(token string, cfg config.TelegramConfig, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{base: u, token: token, cfg: cfg, client: httpClient}
	logger.Info("telegram: NewClient created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

func NewDefaultClient(token string, cfg config.TelegramConfig) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(token, cfg, defaultClient)
}

// Close releases any resources held by the client. It is idempotent and safe
// to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call POSTs one Bot API method with retries and backoff. result may be nil
// when the caller only cares about success.
func (c *Client) call(ctx context.Context, timeout time.Duration, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	u := c.base.ResolveReference(&url.URL{Path: fmt.Sprintf("/bot%s/%s", c.token, method)})

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		ctxReq, cancel := context.WithTimeout(ctx, timeout)
		err := c.doOnce(ctxReq, u.String(), body, result)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		time.Sleep(c.cfg.Backoff * time.Duration(attempt+1))
	}

	return fmt.Errorf("%s failed after retries: %w", method, lastErr)
}

func (c *Client) doOnce(ctx context.Context, endpoint string, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !ar.OK {
		return fmt.Errorf("api error %d: %s", ar.ErrorCode, ar.Description)
	}
	if result != nil {
		if err := json.Unmarshal(ar.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(c.cfg.PollTimeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}

	var updates []Update
	// a long poll holds the connection open for up to PollTimeout
	if err := c.call(ctx, c.cfg.PollTimeout+c.cfg.Timeout, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}

	return updates, nil
}

// SendMessage sends Markdown text to a chat, optionally with a reply markup.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup any) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	return c.call(ctx, c.cfg.Timeout, "sendMessage", payload, nil)
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	return c.call(ctx, c.cfg.Timeout, "editMessageText", payload, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops the
// loading indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, c.cfg.Timeout, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}
