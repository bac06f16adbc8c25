package telegram

import (
	"context"
	"log/slog"
	"time"
)

// Poller runs the long-poll loop and hands each update to a single handler,
// one at a time. Sequential delivery is what keeps a user's own messages in
// arrival order.
type Poller struct {
	client     *Client
	handle     func(context.Context, Update)
	retryDelay time.Duration
}

func NewPoller(client *Client, handle func(context.Context, Update), retryDelay time.Duration) *Poller {
	if retryDelay <= 0 {
		retryDelay = 10 * time.Second
	}
	return &Poller{client: client, handle: handle, retryDelay: retryDelay}
}

// Run polls until the context is canceled. Poll failures are logged and
// retried after a delay; the loop itself never gives up.
func (p *Poller) Run(ctx context.Context) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("poll updates", slog.Any("err", err), slog.Duration("retry_in", p.retryDelay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.retryDelay):
			}
			continue
		}

		for _, u := range updates {
			p.handle(ctx, u)
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
		}
	}
}
