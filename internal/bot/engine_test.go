package bot_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/activity"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/bot"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/dispatch"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository/mock"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/telegram"
)

const adminID = int64(900)

type sentMessage struct {
	ChatID int64
	Text   string
	Markup any
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	edited  []sentMessage
	failFor map[int64]bool
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, markup any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("chat not reachable")
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Markup: markup})
	return nil
}

func (f *fakeSender) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeSender) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return nil
}

func (f *fakeSender) sentTo(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("no messages sent")
	}
	return f.sent[len(f.sent)-1].Text
}

func newTestEngine(t *testing.T, store *mock.Store) (*bot.Engine, *fakeSender, bot.StateStore) {
	t.Helper()
	sender := &fakeSender{failFor: map[int64]bool{}}
	cfg := &config.Config{
		BotToken:  "test-token",
		AdminID:   adminID,
		JWTSecret: "test-secret",
		Dispatch: config.DispatchConfig{
			Spacing:     time.Millisecond,
			SendTimeout: time.Second,
		},
	}
	dispatcher := dispatch.New(sender, cfg.Dispatch, nil)
	recorder := activity.NewRecorder(store, nil)
	reports := report.NewService(store)
	states := bot.NewMemoryStateStore()
	engine := bot.NewEngine(cfg, store, recorder, sender, dispatcher, reports, states, nil)
	return engine, sender, states
}

func msg(userID int64, text string) bot.Message {
	return bot.Message{UserID: userID, ChatID: userID, Username: "user", Text: text}
}

func actionsFor(store *mock.Store, userID int64) []string {
	var out []string
	for _, a := range store.Activities {
		if a.UserID == userID {
			out = append(out, a.Action)
		}
	}
	return out
}

// confirmCallbackData digs the confirm button's callback data out of an
// inline keyboard markup.
func confirmCallbackData(t *testing.T, markup any) string {
	t.Helper()
	km, ok := markup.(*telegram.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard markup, got %T", markup)
	}
	for _, row := range km.InlineKeyboard {
		for _, b := range row {
			if strings.HasPrefix(b.CallbackData, "confirm_broadcast:") {
				return b.CallbackData
			}
		}
	}
	t.Fatalf("no confirm button in %#v", km)
	return ""
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{bot.ButtonFreelancer, models.RoleFreelancer},
		{bot.ButtonClient, models.RoleClient},
		{"freelancer", models.RoleFreelancer},
		{"Client", models.RoleClient},
		{"  CLIENT  ", models.RoleClient},
		{"plumber", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := bot.ParseRole(tc.in); got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFreelancerIntake(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(1, "/start"))
	if got := sender.lastText(t); !strings.Contains(got, "Welcome to SideHustle Bot") {
		t.Fatalf("expected welcome message, got %q", got)
	}

	engine.HandleMessage(ctx, msg(1, bot.ButtonFreelancer))
	u, _ := store.GetUser(ctx, 1)
	if u == nil || u.Role != models.RoleFreelancer {
		t.Fatalf("expected freelancer role stored, got %#v", u)
	}
	if got := sender.lastText(t); !strings.Contains(got, "What are your skills") {
		t.Fatalf("expected skills prompt, got %q", got)
	}

	engine.HandleMessage(ctx, msg(1, "Go, SQL"))
	u, _ = store.GetUser(ctx, 1)
	if u.Skills != "Go, SQL" {
		t.Fatalf("skills not persisted, got %q", u.Skills)
	}
	if got := sender.lastText(t); !strings.Contains(got, "Where are you located") {
		t.Fatalf("expected location prompt, got %q", got)
	}

	engine.HandleMessage(ctx, msg(1, "Manila"))
	u, _ = store.GetUser(ctx, 1)
	if u.Location != "Manila" {
		t.Fatalf("location not persisted, got %q", u.Location)
	}
	if got := sender.lastText(t); !strings.Contains(got, "Profile Complete") {
		t.Fatalf("expected completion message, got %q", got)
	}

	// flow is done: stray text should produce no reply
	before := len(sender.sentTo(1))
	engine.HandleMessage(ctx, msg(1, "hello there"))
	if after := len(sender.sentTo(1)); after != before {
		t.Fatalf("expected silence after completed flow, got %d new messages", after-before)
	}
}

func TestRoleReselectionKeepsProfileFields(t *testing.T) {
	store := mock.NewStore()
	engine, _, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(1, "freelancer"))
	engine.HandleMessage(ctx, msg(1, "Go, SQL"))
	engine.HandleMessage(ctx, msg(1, "Manila"))

	// switching roles must not wipe the completed profile
	engine.HandleMessage(ctx, msg(1, "client"))

	u, _ := store.GetUser(ctx, 1)
	if u.Role != models.RoleClient {
		t.Fatalf("expected role overwritten to client, got %q", u.Role)
	}
	if u.Skills != "Go, SQL" || u.Location != "Manila" {
		t.Fatalf("profile fields lost on role change: %#v", u)
	}
}

func TestRoleButtonSwitchesMidFlow(t *testing.T) {
	store := mock.NewStore()
	engine, _, states := newTestEngine(t, store)
	ctx := context.Background()

	// halfway through the freelancer intake, the other role button must
	// re-select the role, not land in the skills field
	engine.HandleMessage(ctx, msg(1, bot.ButtonFreelancer))
	engine.HandleMessage(ctx, msg(1, bot.ButtonClient))

	u, _ := store.GetUser(ctx, 1)
	if u.Role != models.RoleClient {
		t.Fatalf("expected role switched to client, got %q", u.Role)
	}
	if u.Skills != "" {
		t.Fatalf("button caption persisted as skills: %q", u.Skills)
	}
	if conv, ok := states.Get(1); !ok || conv.Step != bot.StepJobTitle {
		t.Fatalf("expected job title step after switch, got %#v", conv)
	}

	// the bare role words are still ordinary field text inside a flow
	engine.HandleMessage(ctx, msg(1, "client"))
	if conv, _ := states.Get(1); conv.Step != bot.StepJobDescription || conv.Title != "client" {
		t.Fatalf("bare word should be taken as the title, got %#v", conv)
	}
}

func TestClientJobFlowNotifiesFreelancers(t *testing.T) {
	store := mock.NewStore()
	store.Users[10] = &models.User{ID: 10, Username: "fl1", Role: models.RoleFreelancer, Created: 1}
	store.Users[11] = &models.User{ID: 11, Username: "fl2", Role: models.RoleFreelancer, Created: 1}
	store.Users[12] = &models.User{ID: 12, Username: "fl3", Role: models.RoleFreelancer, Banned: true, Created: 1}

	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(2, bot.ButtonClient))
	engine.HandleMessage(ctx, msg(2, "Build a landing page"))
	engine.HandleMessage(ctx, msg(2, "One page, mobile friendly"))
	engine.HandleMessage(ctx, msg(2, "$100"))

	if len(store.Jobs) != 1 {
		t.Fatalf("expected exactly one job, got %d", len(store.Jobs))
	}
	job := store.Jobs[0]
	if job.ClientID != 2 || job.Title != "Build a landing page" ||
		job.Description != "One page, mobile friendly" || job.Budget != "$100" ||
		job.Status != models.JobStatusOpen {
		t.Fatalf("unexpected job: %#v", job)
	}

	if msgs := sender.sentTo(2); !strings.Contains(msgs[len(msgs)-1].Text, "Job Posted Successfully") {
		t.Fatalf("expected posted confirmation, got %q", msgs[len(msgs)-1].Text)
	}

	// non-banned freelancers each get one notification, the banned one none
	for _, id := range []int64{10, 11} {
		msgs := sender.sentTo(id)
		if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "NEW JOB AVAILABLE") {
			t.Fatalf("freelancer %d: unexpected notifications %#v", id, msgs)
		}
		if acts := actionsFor(store, id); len(acts) != 1 || acts[0] != activity.ActionJobNotification {
			t.Fatalf("freelancer %d: unexpected activities %v", id, acts)
		}
	}
	if msgs := sender.sentTo(12); len(msgs) != 0 {
		t.Fatalf("banned freelancer must not be notified, got %#v", msgs)
	}
}

func TestBudgetWithoutDraftRestartsFlow(t *testing.T) {
	store := mock.NewStore()
	engine, sender, states := newTestEngine(t, store)
	ctx := context.Background()

	// a budget-step state with no accumulated draft, as after a restart
	states.Set(3, bot.Conversation{Step: bot.StepJobBudget})

	engine.HandleMessage(ctx, msg(3, "$500"))

	if len(store.Jobs) != 0 {
		t.Fatalf("no job may be created from a lost draft, got %d", len(store.Jobs))
	}
	if got := sender.lastText(t); !strings.Contains(got, "job posting expired") {
		t.Fatalf("expected restart prompt, got %q", got)
	}
	if _, ok := states.Get(3); ok {
		t.Fatalf("expected state cleared after restart prompt")
	}
}

func TestCreateJobFailureKeepsState(t *testing.T) {
	store := mock.NewStore()
	engine, sender, states := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(4, "client"))
	engine.HandleMessage(ctx, msg(4, "Title"))
	engine.HandleMessage(ctx, msg(4, "Description"))

	store.JobErr = errors.New("disk full")
	engine.HandleMessage(ctx, msg(4, "$50"))

	if got := sender.lastText(t); !strings.Contains(got, "Something went wrong") {
		t.Fatalf("expected generic error, got %q", got)
	}
	conv, ok := states.Get(4)
	if !ok || conv.Step != bot.StepJobBudget {
		t.Fatalf("state must survive a failed write, got %#v ok=%v", conv, ok)
	}

	// retry succeeds once the store recovers
	store.JobErr = nil
	engine.HandleMessage(ctx, msg(4, "$50"))
	if len(store.Jobs) != 1 {
		t.Fatalf("expected job created on retry, got %d", len(store.Jobs))
	}
}

func TestUnknownCommandReply(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(5, "/frobnicate"))

	if got := sender.lastText(t); !strings.Contains(got, "Unknown Command") {
		t.Fatalf("expected unknown command reply, got %q", got)
	}
	if acts := actionsFor(store, 5); len(acts) != 1 || acts[0] != activity.ActionUnknownCommand {
		t.Fatalf("expected one unknown_command event, got %v", acts)
	}
}

func TestStrayTextIsAuditedSilently(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(5, "is anyone there?"))

	if len(sender.sentTo(5)) != 0 {
		t.Fatalf("stray text must not be answered")
	}
	if acts := actionsFor(store, 5); len(acts) != 1 || acts[0] != activity.ActionUnknownCommand {
		t.Fatalf("expected one audit event, got %v", acts)
	}
}

func TestCommandWithBotMention(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)

	engine.HandleMessage(context.Background(), msg(6, "/help@SideHustleBot"))

	if got := sender.lastText(t); !strings.Contains(got, "HELP & COMMANDS") {
		t.Fatalf("expected help text, got %q", got)
	}
}

func TestAdminCommandsInvisibleToOthers(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	for _, cmd := range []string{"/dashboard", "/users", "/alljobs", "/viewuser 1", "/broadcast hi", "/ban_1", "/dailyreport", "/analytics"} {
		engine.HandleMessage(ctx, msg(7, cmd))
	}

	if msgs := sender.sentTo(7); len(msgs) != 0 {
		t.Fatalf("admin surface must be silent for non-admins, got %#v", msgs)
	}
}

func TestAdminStartGreeting(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)

	engine.HandleMessage(context.Background(), msg(adminID, "/start"))

	msgs := sender.sentTo(adminID)
	if len(msgs) != 2 {
		t.Fatalf("expected admin greeting plus welcome, got %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "ADMIN MODE ACTIVATED") {
		t.Fatalf("expected admin greeting first, got %q", msgs[0].Text)
	}
}

func TestBanAndUnban(t *testing.T) {
	store := mock.NewStore()
	store.Users[42] = &models.User{ID: 42, Username: "mallory", Role: models.RoleFreelancer, Created: 1}
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(adminID, "/ban_42"))
	if !store.Users[42].Banned {
		t.Fatalf("expected user banned")
	}
	if got := sender.lastText(t); !strings.Contains(got, "has been banned") {
		t.Fatalf("expected ban confirmation, got %q", got)
	}
	if acts := actionsFor(store, 42); len(acts) != 1 || acts[0] != activity.ActionUserBanned {
		t.Fatalf("expected user_banned event, got %v", acts)
	}

	engine.HandleMessage(ctx, msg(adminID, "/unban_42"))
	if store.Users[42].Banned {
		t.Fatalf("expected user unbanned")
	}
	if got := sender.lastText(t); !strings.Contains(got, "has been unbanned") {
		t.Fatalf("expected unban confirmation, got %q", got)
	}

	engine.HandleMessage(ctx, msg(adminID, "/ban_9999"))
	if got := sender.lastText(t); !strings.Contains(got, "not found") {
		t.Fatalf("expected not-found reply, got %q", got)
	}
}

func TestViewUser(t *testing.T) {
	store := mock.NewStore()
	store.Users[42] = &models.User{ID: 42, Username: "alice", Role: models.RoleClient, Created: 1}
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(adminID, "/viewuser"))
	if got := sender.lastText(t); !strings.Contains(got, "Usage: /viewuser") {
		t.Fatalf("expected usage, got %q", got)
	}

	engine.HandleMessage(ctx, msg(adminID, "/viewuser abc"))
	if got := sender.lastText(t); !strings.Contains(got, "Invalid user ID") {
		t.Fatalf("expected invalid id reply, got %q", got)
	}

	engine.HandleMessage(ctx, msg(adminID, "/viewuser 99"))
	if got := sender.lastText(t); !strings.Contains(got, "not found") {
		t.Fatalf("expected not-found reply, got %q", got)
	}

	engine.HandleMessage(ctx, msg(adminID, "/viewuser 42"))
	if got := sender.lastText(t); !strings.Contains(got, "USER DETAILS: #42") {
		t.Fatalf("expected user details, got %q", got)
	}
}

func TestBroadcastConfirmFlow(t *testing.T) {
	store := mock.NewStore()
	store.Users[10] = &models.User{ID: 10, Role: models.RoleFreelancer, Created: 1}
	store.Users[11] = &models.User{ID: 11, Role: models.RoleClient, Created: 1}
	store.Users[12] = &models.User{ID: 12, Role: models.RoleFreelancer, Banned: true, Created: 1}

	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(adminID, "/broadcast Server maintenance tonight"))

	msgs := sender.sentTo(adminID)
	confirm := msgs[len(msgs)-1]
	if !strings.Contains(confirm.Text, "BROADCAST CONFIRMATION") {
		t.Fatalf("expected confirmation prompt, got %q", confirm.Text)
	}
	data := confirmCallbackData(t, confirm.Markup)

	engine.HandleCallback(ctx, bot.Callback{
		ID:        "cb1",
		UserID:    adminID,
		ChatID:    adminID,
		MessageID: 77,
		Data:      data,
	})

	// both non-banned users reached, banned one skipped
	for _, id := range []int64{10, 11} {
		got := sender.sentTo(id)
		if len(got) != 1 || !strings.Contains(got[0].Text, "Server maintenance tonight") {
			t.Fatalf("user %d: unexpected broadcast %#v", id, got)
		}
	}
	if got := sender.sentTo(12); len(got) != 0 {
		t.Fatalf("banned user must not receive broadcast, got %#v", got)
	}

	summary := sender.lastText(t)
	if !strings.Contains(summary, "BROADCAST COMPLETE") || !strings.Contains(summary, "*Successfully Sent:* 2") {
		t.Fatalf("unexpected broadcast report %q", summary)
	}
	if acts := actionsFor(store, adminID); acts[len(acts)-1] != activity.ActionBroadcastSent {
		t.Fatalf("expected broadcast_sent event, got %v", acts)
	}
}

func TestBroadcastCancel(t *testing.T) {
	store := mock.NewStore()
	store.Users[10] = &models.User{ID: 10, Role: models.RoleFreelancer, Created: 1}
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	engine.HandleMessage(ctx, msg(adminID, "/broadcast hello"))
	engine.HandleCallback(ctx, bot.Callback{ID: "cb2", UserID: adminID, ChatID: adminID, MessageID: 78, Data: "cancel_broadcast"})

	if got := sender.sentTo(10); len(got) != 0 {
		t.Fatalf("cancelled broadcast must not be delivered, got %#v", got)
	}
	if len(sender.edited) == 0 || !strings.Contains(sender.edited[len(sender.edited)-1].Text, "cancelled") {
		t.Fatalf("expected cancel edit, got %#v", sender.edited)
	}
}

func TestBroadcastRejectsForeignToken(t *testing.T) {
	store := mock.NewStore()
	store.Users[10] = &models.User{ID: 10, Role: models.RoleFreelancer, Created: 1}
	engine, sender, _ := newTestEngine(t, store)
	ctx := context.Background()

	// token signed with a different secret must be rejected
	token, err := dispatch.IssueConfirmToken("other-secret", adminID, "evil", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	engine.HandleCallback(ctx, bot.Callback{ID: "cb3", UserID: adminID, ChatID: adminID, MessageID: 79, Data: "confirm_broadcast:" + token})

	if got := sender.sentTo(10); len(got) != 0 {
		t.Fatalf("forged broadcast must not be delivered, got %#v", got)
	}
	if len(sender.edited) == 0 || !strings.Contains(sender.edited[len(sender.edited)-1].Text, "expired or is invalid") {
		t.Fatalf("expected invalid-token edit, got %#v", sender.edited)
	}
}

func TestBroadcastUsage(t *testing.T) {
	store := mock.NewStore()
	engine, sender, _ := newTestEngine(t, store)

	engine.HandleMessage(context.Background(), msg(adminID, "/broadcast"))

	if got := sender.lastText(t); !strings.Contains(got, "Usage: /broadcast") {
		t.Fatalf("expected usage reply, got %q", got)
	}
}
