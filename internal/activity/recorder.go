// Package activity owns the append-only audit stream. Every user-facing and
// admin operation records one event here; recording is best-effort and must
// never break the operation that triggered it, so callers discard the
// returned error on purpose.
package activity

import (
	"context"
	"log/slog"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository"
)

// Action tags written to the stream.
const (
	ActionStartCommand    = "start_command"
	ActionRoleSelected    = "role_selected"
	ActionSetSkills       = "set_skills"
	ActionSetLocation     = "set_location"
	ActionSetJobTitle     = "set_job_title"
	ActionSetJobDesc      = "set_job_description"
	ActionPostJob         = "post_job"
	ActionViewJobs        = "view_jobs"
	ActionViewProfile     = "view_profile"
	ActionViewHelp        = "view_help"
	ActionJobNotification = "job_notification"
	ActionUserBanned      = "user_banned"
	ActionUserUnbanned    = "user_unbanned"
	ActionBroadcastSent   = "broadcast_sent"
	ActionUnknownCommand  = "unknown_command"
)

// maxDetail bounds the free-text detail column so reports stay readable.
const maxDetail = 50

type Recorder struct {
	repo   repository.ActivityRepo
	logger *slog.Logger
}

func NewRecorder(repo repository.ActivityRepo, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record appends one event. The error is returned so the contract stays
// visible at call sites, but callers are expected to drop it: a failed audit
// write is logged here and must not reach the user.
func (r *Recorder) Record(ctx context.Context, userID int64, action, detail string) error {
	a := &models.Activity{UserID: userID, Action: action, Details: Truncate(detail, maxDetail)}
	if _, err := r.repo.AppendActivity(ctx, a); err != nil {
		r.logger.Warn("record activity", "action", action, "user_id", userID, "err", err)
		return err
	}
	return nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
