package sqlite

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/db"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.ActivityRepo = (*SQLiteRepo)(nil)
var _ repository.MetricRepo = (*SQLiteRepo)(nil)
var _ repository.Store = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// dayRange maps a calendar date (YYYY-MM-DD, UTC) to the half-open
// [start, end) millisecond interval used by created-on queries.
func dayRange(date string) (int64, int64, error) {
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	start := t.UnixMilli()
	end := t.AddDate(0, 0, 1).UnixMilli()
	return start, end, nil
}
