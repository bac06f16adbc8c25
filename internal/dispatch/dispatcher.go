// Package dispatch delivers one message to a set of recipients
// independently. A recipient failure is counted, never propagated, and never
// retried within the batch.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
)

// Sender is the transport surface the dispatcher needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) error
}

// Result is the aggregate outcome of one fan-out batch.
type Result struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type Dispatcher struct {
	sender      Sender
	spacing     time.Duration
	sendTimeout time.Duration
	logger      *slog.Logger
}

func New(sender Sender, cfg config.DispatchConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	spacing := cfg.Spacing
	if spacing <= 0 {
		spacing = 100 * time.Millisecond
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	return &Dispatcher{sender: sender, spacing: spacing, sendTimeout: sendTimeout, logger: logger}
}

// Dispatch sends text to every target. Each send runs under its own timeout so
// a blocked recipient costs at most sendTimeout, and consecutive sends are
// spaced to respect transport rate limits. onSent, when non-nil, runs after
// each successful delivery. If the batch context is canceled, the remaining
// targets are counted as failed.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []int64, text string, onSent func(id int64)) Result {
	res := Result{Total: len(targets)}

	for i, id := range targets {
		if ctx.Err() != nil {
			res.Failed = res.Total - res.Succeeded
			return res
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				res.Failed = res.Total - res.Succeeded
				return res
			case <-time.After(d.spacing):
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := d.sender.SendMessage(sendCtx, id, text, nil)
		cancel()
		if err != nil {
			res.Failed++
			d.logger.Warn("delivery failed", "recipient", id, "err", err)
			continue
		}

		res.Succeeded++
		if onSent != nil {
			onSent(id)
		}
	}

	return res
}
