package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/activity"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/dispatch"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/telegram"
)

// Admin commands. Authorization is a single configured privileged id; with no
// id configured every admin operation is disabled. Non-admin callers get no
// response at all, so the surface stays invisible.
//
// Unlike user-facing handlers, admin replies may carry the literal underlying
// failure text for diagnosability.

const confirmBroadcastPrefix = "confirm_broadcast:"
const cancelBroadcastData = "cancel_broadcast"
const confirmTokenTTL = 10 * time.Minute

func (e *Engine) cmdDashboard(ctx context.Context, m Message) {
	if !e.isAdmin(m.UserID) {
		return
	}

	d, err := e.reports.Dashboard(ctx)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}

	e.reply(ctx, m.ChatID, renderDashboard(d), nil)
}

func (e *Engine) cmdUsers(ctx context.Context, m Message) {
	if !e.isAdmin(m.UserID) {
		return
	}

	users, err := e.reports.Users(ctx)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}
	if len(users) == 0 {
		e.reply(ctx, m.ChatID, noUsersText, nil)
		return
	}

	e.reply(ctx, m.ChatID, renderUserList(users), nil)
}

func (e *Engine) cmdAllJobs(ctx context.Context, m Message) {
	if !e.isAdmin(m.UserID) {
		return
	}

	jobs, err := e.reports.Jobs(ctx)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}
	if len(jobs) == 0 {
		e.reply(ctx, m.ChatID, noJobsAdminText, nil)
		return
	}

	e.reply(ctx, m.ChatID, renderAdminJobList(jobs), nil)
}

func (e *Engine) cmdViewUser(ctx context.Context, m Message, args []string) {
	if !e.isAdmin(m.UserID) {
		return
	}
	if len(args) < 1 {
		e.reply(ctx, m.ChatID, viewUserUsage, nil)
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		e.reply(ctx, m.ChatID, "❌ Invalid user ID. Please provide a numeric ID.", nil)
		return
	}

	detail, err := e.reports.UserDetail(ctx, id)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}
	if detail == nil {
		e.reply(ctx, m.ChatID, fmt.Sprintf("❌ User ID `%d` not found.", id), nil)
		return
	}

	e.reply(ctx, m.ChatID, renderUserDetail(detail), nil)
}

func (e *Engine) cmdBanUnban(ctx context.Context, m Message, cmd string) {
	if !e.isAdmin(m.UserID) {
		return
	}

	ban := strings.HasPrefix(cmd, "/ban_")
	idPart := cmd[strings.IndexByte(cmd, '_')+1:]
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}

	u, err := e.store.GetUser(ctx, id)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}
	if u == nil {
		e.reply(ctx, m.ChatID, fmt.Sprintf("❌ User ID `%d` not found.", id), nil)
		return
	}

	if err := e.store.SetBanned(ctx, id, ban); err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}

	verb := "unbanned"
	action := activity.ActionUserUnbanned
	detail := fmt.Sprintf("Unbanned by admin %d", m.UserID)
	if ban {
		verb = "banned"
		action = activity.ActionUserBanned
		detail = fmt.Sprintf("Banned by admin %d", m.UserID)
	}
	_ = e.recorder.Record(ctx, id, action, detail)

	e.reply(ctx, m.ChatID, fmt.Sprintf("✅ User @%s (ID: %d) has been %s.", orNA(u.Username), id, verb), nil)
}

func (e *Engine) cmdDailyReport(ctx context.Context, m Message) {
	if !e.isAdmin(m.UserID) {
		return
	}

	metric, err := e.reports.DailyReport(ctx)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}
	if metric == nil {
		yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
		e.reply(ctx, m.ChatID, "📭 No data for "+yesterday, nil)
		return
	}

	e.reply(ctx, m.ChatID, renderDailyReport(metric), nil)
}

func (e *Engine) cmdAnalytics(ctx context.Context, m Message) {
	if !e.isAdmin(m.UserID) {
		return
	}

	w, err := e.reports.Weekly(ctx)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}
	if len(w.Days) == 0 {
		e.reply(ctx, m.ChatID, noAnalyticsText, nil)
		return
	}

	e.reply(ctx, m.ChatID, renderWeekly(w), nil)
}

// cmdBroadcast holds the draft as a signed token on the confirm button. The
// token carries the full text; only the preview shown here is truncated.
func (e *Engine) cmdBroadcast(ctx context.Context, m Message, text string) {
	if !e.isAdmin(m.UserID) {
		return
	}
	if text == "" {
		e.reply(ctx, m.ChatID, broadcastUsage, nil)
		return
	}

	token, err := dispatch.IssueConfirmToken(e.secret, m.UserID, text, confirmTokenTTL)
	if err != nil {
		e.replyAdminErr(ctx, m.ChatID, err)
		return
	}

	markup := telegram.InlineButtons(
		telegram.InlineKeyboardButton{Text: "✅ Yes, Send to All", CallbackData: confirmBroadcastPrefix + token},
		telegram.InlineKeyboardButton{Text: "❌ Cancel", CallbackData: cancelBroadcastData},
	)
	e.reply(ctx, m.ChatID, renderBroadcastConfirm(text), markup)
}

// HandleCallback routes button responses. Only the broadcast confirmation
// flow uses callbacks, so everything here is admin-only.
func (e *Engine) HandleCallback(ctx context.Context, cb Callback) {
	if cb.ID != "" {
		if err := e.sender.AnswerCallbackQuery(ctx, cb.ID); err != nil {
			e.logger.Warn("answer callback", "err", err)
		}
	}

	if !e.isAdmin(cb.UserID) {
		return
	}

	switch {
	case cb.Data == cancelBroadcastData:
		e.edit(ctx, cb, broadcastCancelledText)
	case strings.HasPrefix(cb.Data, confirmBroadcastPrefix):
		e.confirmBroadcast(ctx, cb, strings.TrimPrefix(cb.Data, confirmBroadcastPrefix))
	}
}

func (e *Engine) confirmBroadcast(ctx context.Context, cb Callback, tokenStr string) {
	ct, err := dispatch.ParseConfirmToken(e.secret, tokenStr)
	if err != nil || ct.AdminID != cb.UserID {
		e.edit(ctx, cb, broadcastInvalidText)
		return
	}

	e.edit(ctx, cb, broadcastSendingText)

	targets, err := e.store.ListActiveUserIDs(ctx)
	if err != nil {
		e.replyAdminErr(ctx, cb.ChatID, err)
		return
	}

	res := e.dispatcher.Dispatch(ctx, targets, renderAnnouncement(ct.Text), nil)

	// one aggregate event for the whole batch, attributed to the admin
	_ = e.recorder.Record(ctx, cb.UserID, activity.ActionBroadcastSent,
		fmt.Sprintf("Sent to %d users. Message: %s", res.Succeeded, ct.Text))

	e.reply(ctx, cb.ChatID, renderBroadcastReport(res, ct.Text), nil)
}

func (e *Engine) replyAdminErr(ctx context.Context, chatID int64, err error) {
	e.reply(ctx, chatID, "❌ Error: "+err.Error(), nil)
}
