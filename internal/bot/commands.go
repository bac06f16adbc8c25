package bot

import (
	"context"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/activity"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/telegram"
)

func (e *Engine) cmdStart(ctx context.Context, m Message) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionStartCommand, "User started bot")

	if e.isAdmin(m.UserID) {
		e.reply(ctx, m.ChatID, adminGreetingText, nil)
	}

	e.reply(ctx, m.ChatID, welcomeText, telegram.ReplyKeyboard(ButtonFreelancer, ButtonClient))
}

func (e *Engine) cmdJobs(ctx context.Context, m Message) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionViewJobs, "Browsed job listings")

	jobs, err := e.store.ListOpenJobs(ctx, 10)
	if err != nil {
		e.logger.Error("list open jobs", "err", err)
		e.reply(ctx, m.ChatID, genericErrorText, nil)
		return
	}
	if len(jobs) == 0 {
		e.reply(ctx, m.ChatID, noJobsText, nil)
		return
	}

	e.reply(ctx, m.ChatID, renderJobList(jobs), nil)
}

func (e *Engine) cmdProfile(ctx context.Context, m Message) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionViewProfile, "Viewed own profile")

	u, err := e.store.GetUser(ctx, m.UserID)
	if err != nil {
		e.logger.Error("get user", "user_id", m.UserID, "err", err)
		e.reply(ctx, m.ChatID, genericErrorText, nil)
		return
	}
	if u == nil {
		e.reply(ctx, m.ChatID, profileNotFoundText, nil)
		return
	}

	e.reply(ctx, m.ChatID, renderProfile(u), nil)
}

func (e *Engine) cmdHelp(ctx context.Context, m Message) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionViewHelp, "Viewed help")
	e.reply(ctx, m.ChatID, helpText, nil)
}

func (e *Engine) cmdGetID(ctx context.Context, m Message) {
	e.reply(ctx, m.ChatID, renderID(m.UserID, m.Username), nil)

	if e.isAdmin(m.UserID) {
		e.reply(ctx, m.ChatID, renderAdminIDNote(m.UserID), nil)
	}
}
