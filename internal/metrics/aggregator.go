// Package metrics recomputes the one-row-per-date platform aggregates from
// the raw tables. Every run is a full recompute followed by an upsert, so
// running twice for the same date is harmless.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

const dateLayout = "2006-01-02"

// Store is the slice of the persistent store the aggregator reads and writes.
type Store interface {
	CountUsersCreatedOn(ctx context.Context, date string) (int64, error)
	CountJobsCreatedOn(ctx context.Context, date string) (int64, error)
	CountActiveUsersOn(ctx context.Context, date string) (int64, error)
	UpsertDailyMetric(ctx context.Context, m *models.DailyMetric) error
}

type Aggregator struct {
	store  Store
	runAt  string
	logger *slog.Logger
	now    func() time.Time
}

// New creates an aggregator that fires daily at runAt (HH:MM, UTC).
func New(store Store, runAt string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if runAt == "" {
		runAt = "23:59"
	}
	return &Aggregator{store: store, runAt: runAt, logger: logger, now: time.Now}
}

// RunOnce recomputes and upserts the metric row for one calendar date.
func (a *Aggregator) RunOnce(ctx context.Context, date string) error {
	newUsers, err := a.store.CountUsersCreatedOn(ctx, date)
	if err != nil {
		return fmt.Errorf("count new users: %w", err)
	}
	newJobs, err := a.store.CountJobsCreatedOn(ctx, date)
	if err != nil {
		return fmt.Errorf("count new jobs: %w", err)
	}
	activeUsers, err := a.store.CountActiveUsersOn(ctx, date)
	if err != nil {
		return fmt.Errorf("count active users: %w", err)
	}

	m := &models.DailyMetric{Date: date, NewUsers: newUsers, NewJobs: newJobs, ActiveUsers: activeUsers}
	if err := a.store.UpsertDailyMetric(ctx, m); err != nil {
		return fmt.Errorf("upsert daily metric: %w", err)
	}

	a.logger.Info("daily metrics updated", "date", date, "new_users", newUsers, "new_jobs", newJobs, "active_users", activeUsers)
	return nil
}

// Run performs one eager recompute for today, covering a process that was
// down at the scheduled time, then fires once per day at the configured time
// until the context is canceled. The scheduled run and the eager run may both
// write today's row; the upsert makes the final state the same either way.
func (a *Aggregator) Run(ctx context.Context) {
	if err := a.RunOnce(ctx, a.today()); err != nil {
		a.logger.Error("startup metrics run", "err", err)
	}

	for {
		next := a.nextRun()
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		if err := a.RunOnce(ctx, a.today()); err != nil {
			a.logger.Error("scheduled metrics run", "err", err)
		}
	}
}

func (a *Aggregator) today() string {
	return a.now().UTC().Format(dateLayout)
}

func (a *Aggregator) nextRun() time.Time {
	at, err := time.Parse("15:04", a.runAt)
	if err != nil {
		// config validation rejects bad values; fall back to end of day
		at = time.Date(0, 1, 1, 23, 59, 0, 0, time.UTC)
	}

	now := a.now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
