// Package bot is the conversation engine: it routes each inbound message to
// exactly one handler given the sender's ephemeral conversation state, writes
// the resulting entities through the store interfaces, and emits the reply.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/activity"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/dispatch"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/telegram"
)

// Sender is the transport surface the engine replies through.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Message is one inbound text message.
type Message struct {
	UserID   int64
	ChatID   int64
	Username string
	Text     string
}

// Callback is one inbound button response.
type Callback struct {
	ID        string
	UserID    int64
	ChatID    int64
	MessageID int64
	Data      string
}

type stepFn func(*Engine, context.Context, Message, Conversation)

type Engine struct {
	store      repository.Store
	recorder   *activity.Recorder
	sender     Sender
	dispatcher *dispatch.Dispatcher
	reports    *report.Service
	states     StateStore
	steps      map[Step]stepFn

	adminID int64
	secret  string
	logger  *slog.Logger
}

func NewEngine(
	cfg *config.Config,
	store repository.Store,
	recorder *activity.Recorder,
	sender Sender,
	dispatcher *dispatch.Dispatcher,
	reports *report.Service,
	states StateStore,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if states == nil {
		states = NewMemoryStateStore()
	}

	e := &Engine{
		store:      store,
		recorder:   recorder,
		sender:     sender,
		dispatcher: dispatcher,
		reports:    reports,
		states:     states,
		adminID:    cfg.AdminID,
		secret:     cfg.JWTSecret,
		logger:     logger,
	}

	// transition table: every reachable mid-conversation state and its handler
	e.steps = map[Step]stepFn{
		StepAskSkills:      (*Engine).stepSkills,
		StepAskLocation:    (*Engine).stepLocation,
		StepJobTitle:       (*Engine).stepJobTitle,
		StepJobDescription: (*Engine).stepJobDescription,
		StepJobBudget:      (*Engine).stepJobBudget,
	}

	return e
}

// HandleUpdate adapts one transport update into the engine.
func (e *Engine) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.Message != nil && u.Message.From != nil:
		e.HandleMessage(ctx, Message{
			UserID:   u.Message.From.ID,
			ChatID:   u.Message.Chat.ID,
			Username: u.Message.From.Username,
			Text:     u.Message.Text,
		})
	case u.CallbackQuery != nil:
		cb := Callback{
			ID:     u.CallbackQuery.ID,
			UserID: u.CallbackQuery.From.ID,
			Data:   u.CallbackQuery.Data,
		}
		if u.CallbackQuery.Message != nil {
			cb.ChatID = u.CallbackQuery.Message.Chat.ID
			cb.MessageID = u.CallbackQuery.Message.MessageID
		}
		e.HandleCallback(ctx, cb)
	}
}

// HandleMessage routes one message: commands first, then the role buttons,
// then the active conversation step, then bare role words, then the fallback.
func (e *Engine) HandleMessage(ctx context.Context, m Message) {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		e.handleCommand(ctx, m, text)
		return
	}

	// the exact button captions re-select the role even mid-flow, so a user
	// who taps the other button halfway through intake switches over instead
	// of having the caption swallowed as a field value
	if role := parseRoleButton(text); role != "" {
		e.selectRole(ctx, m, role)
		return
	}

	if conv, ok := e.states.Get(m.UserID); ok && conv.Step != StepNone {
		if fn, ok := e.steps[conv.Step]; ok {
			fn(e, ctx, m, conv)
			return
		}
		e.states.Clear(m.UserID)
	}

	if role := ParseRole(text); role != "" {
		e.selectRole(ctx, m, role)
		return
	}

	// stray free text outside any flow: audit it, stay silent
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionUnknownCommand, text)
}

func (e *Engine) handleCommand(ctx context.Context, m Message, text string) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	// group-style mentions: /start@SomeBot
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch {
	case cmd == "/start":
		e.cmdStart(ctx, m)
	case cmd == "/jobs":
		e.cmdJobs(ctx, m)
	case cmd == "/profile":
		e.cmdProfile(ctx, m)
	case cmd == "/help":
		e.cmdHelp(ctx, m)
	case cmd == "/getid":
		e.cmdGetID(ctx, m)
	case cmd == "/dashboard":
		e.cmdDashboard(ctx, m)
	case cmd == "/users":
		e.cmdUsers(ctx, m)
	case cmd == "/alljobs":
		e.cmdAllJobs(ctx, m)
	case cmd == "/viewuser":
		e.cmdViewUser(ctx, m, fields[1:])
	case cmd == "/dailyreport":
		e.cmdDailyReport(ctx, m)
	case cmd == "/analytics":
		e.cmdAnalytics(ctx, m)
	case cmd == "/broadcast":
		e.cmdBroadcast(ctx, m, strings.TrimSpace(strings.TrimPrefix(text, fields[0])))
	case strings.HasPrefix(cmd, "/ban_"), strings.HasPrefix(cmd, "/unban_"):
		e.cmdBanUnban(ctx, m, cmd)
	default:
		_ = e.recorder.Record(ctx, m.UserID, activity.ActionUnknownCommand, text)
		e.reply(ctx, m.ChatID, unknownCommandText, nil)
	}
}

// parseRoleButton maps the two exact button captions to a role value. Only
// these captions cut through an active flow; the bare words stay usable as
// ordinary field text there.
func parseRoleButton(text string) string {
	switch strings.TrimSpace(text) {
	case ButtonFreelancer:
		return models.RoleFreelancer
	case ButtonClient:
		return models.RoleClient
	}
	return ""
}

// ParseRole maps recognized role texts (button labels or the bare words) to a
// role value; anything else returns "".
func ParseRole(text string) string {
	if role := parseRoleButton(text); role != "" {
		return role
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case models.RoleFreelancer:
		return models.RoleFreelancer
	case models.RoleClient:
		return models.RoleClient
	}

	return ""
}

func (e *Engine) isAdmin(userID int64) bool {
	return e.adminID != 0 && userID == e.adminID
}

func (e *Engine) reply(ctx context.Context, chatID int64, text string, markup any) {
	if err := e.sender.SendMessage(ctx, chatID, text, markup); err != nil {
		e.logger.Warn("send message", "chat_id", chatID, "err", err)
	}
}

func (e *Engine) edit(ctx context.Context, cb Callback, text string) {
	if err := e.sender.EditMessageText(ctx, cb.ChatID, cb.MessageID, text); err != nil {
		e.logger.Warn("edit message", "chat_id", cb.ChatID, "err", err)
	}
}
