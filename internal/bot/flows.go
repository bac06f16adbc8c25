package bot

import (
	"context"
	"fmt"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/activity"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/telegram"
)

// selectRole records the role and opens the matching intake flow. Role choice
// is state-free: a recognized role text works at any time and overwrites a
// previously stored role without touching skills or location.
func (e *Engine) selectRole(ctx context.Context, m Message, role string) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionRoleSelected, "Selected role: "+role)

	u := &models.User{ID: m.UserID, Username: m.Username, Role: role}
	if err := e.store.UpsertUser(ctx, u); err != nil {
		e.logger.Error("upsert user", "user_id", m.UserID, "err", err)
		e.reply(ctx, m.ChatID, genericErrorText, nil)
		return
	}

	if role == models.RoleFreelancer {
		e.states.Set(m.UserID, Conversation{Step: StepAskSkills})
		e.reply(ctx, m.ChatID, skillsPrompt, telegram.RemoveKeyboard())
		return
	}

	e.states.Set(m.UserID, Conversation{Step: StepJobTitle})
	e.reply(ctx, m.ChatID, jobTitlePrompt, telegram.RemoveKeyboard())
}

// Freelancer path: each step persists its field immediately.

func (e *Engine) stepSkills(ctx context.Context, m Message, _ Conversation) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionSetSkills, "Skills: "+m.Text)

	if err := e.store.SetSkills(ctx, m.UserID, m.Text); err != nil {
		e.logger.Error("set skills", "user_id", m.UserID, "err", err)
		e.reply(ctx, m.ChatID, genericErrorText, nil)
		return
	}

	e.states.Set(m.UserID, Conversation{Step: StepAskLocation})
	e.reply(ctx, m.ChatID, locationPrompt, nil)
}

func (e *Engine) stepLocation(ctx context.Context, m Message, _ Conversation) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionSetLocation, "Location: "+m.Text)

	if err := e.store.SetLocation(ctx, m.UserID, m.Text); err != nil {
		e.logger.Error("set location", "user_id", m.UserID, "err", err)
		e.reply(ctx, m.ChatID, genericErrorText, nil)
		return
	}

	e.states.Clear(m.UserID)
	e.reply(ctx, m.ChatID, profileCompleteText, nil)
}

// Client path: title and description accumulate in ephemeral state; the
// budget step performs the single job-creation write.

func (e *Engine) stepJobTitle(ctx context.Context, m Message, _ Conversation) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionSetJobTitle, "Title: "+m.Text)

	e.states.Set(m.UserID, Conversation{Step: StepJobDescription, Title: m.Text})
	e.reply(ctx, m.ChatID, jobDescriptionPrompt, nil)
}

func (e *Engine) stepJobDescription(ctx context.Context, m Message, conv Conversation) {
	_ = e.recorder.Record(ctx, m.UserID, activity.ActionSetJobDesc, "Description: "+m.Text)

	conv.Description = m.Text
	conv.Step = StepJobBudget
	e.states.Set(m.UserID, conv)
	e.reply(ctx, m.ChatID, jobBudgetPrompt, nil)
}

func (e *Engine) stepJobBudget(ctx context.Context, m Message, conv Conversation) {
	// fail closed: never commit a job with fabricated earlier-step fields
	if conv.Title == "" || conv.Description == "" {
		e.states.Clear(m.UserID)
		e.reply(ctx, m.ChatID, restartFlowText, nil)
		return
	}

	job := &models.Job{
		ClientID:    m.UserID,
		Title:       conv.Title,
		Description: conv.Description,
		Budget:      m.Text,
		Status:      models.JobStatusOpen,
	}
	id, err := e.store.CreateJob(ctx, job)
	if err != nil {
		// state is kept so the user can resend the budget
		e.logger.Error("create job", "client_id", m.UserID, "err", err)
		e.reply(ctx, m.ChatID, genericErrorText, nil)
		return
	}
	job.ID = id

	_ = e.recorder.Record(ctx, m.UserID, activity.ActionPostJob, "Job: "+job.Title)

	e.states.Clear(m.UserID)
	e.reply(ctx, m.ChatID, renderJobPosted(job), nil)

	e.notifyFreelancers(ctx, job)
}

// notifyFreelancers fans the new job out to every non-banned freelancer. Each
// successful delivery is recorded against the recipient so "was notified" is
// auditable; failures only affect the counts.
func (e *Engine) notifyFreelancers(ctx context.Context, job *models.Job) {
	targets, err := e.store.ListFreelancerIDs(ctx)
	if err != nil {
		e.logger.Error("list freelancers", "job_id", job.ID, "err", err)
		return
	}

	text := renderJobNotification(job)
	res := e.dispatcher.Dispatch(ctx, targets, text, func(id int64) {
		_ = e.recorder.Record(ctx, id, activity.ActionJobNotification, fmt.Sprintf("Notified about job #%d", job.ID))
	})

	e.logger.Info("job notifications dispatched",
		"job_id", job.ID, "total", res.Total, "succeeded", res.Succeeded, "failed", res.Failed)
}
