// Package report composes read-only store queries into the views the admin
// surface shows. Nothing here mutates state, and "no data yet" comes back as
// an empty result, never as an error.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository"
)

const (
	userListLimit   = 20
	jobListLimit    = 15
	activityLimit   = 10
	activeWindow    = 5 * time.Minute
	trendWindowDays = 7
)

type Service struct {
	store repository.Store
	now   func() time.Time
}

func NewService(store repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

type Dashboard struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	TotalUsers    int64             `json:"total_users"`
	TotalJobs     int64             `json:"total_jobs"`
	NewUsersToday int64             `json:"new_users_today"`
	NewJobsToday  int64             `json:"new_jobs_today"`
	ActiveNow     int64             `json:"active_now"`
	Recent        []models.Activity `json:"recent"`
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	nowT := s.now().UTC()
	today := nowT.Format("2006-01-02")

	totalUsers, err := s.store.CountActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totalJobs, err := s.store.CountJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	newUsers, err := s.store.CountUsersCreatedOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("count new users: %w", err)
	}
	newJobs, err := s.store.CountJobsCreatedOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("count new jobs: %w", err)
	}
	activeNow, err := s.store.CountDistinctActorsSince(ctx, nowT.Add(-activeWindow).UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("count active now: %w", err)
	}
	recent, err := s.store.ListRecentActivity(ctx, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	if recent == nil {
		recent = []models.Activity{}
	}

	return &Dashboard{
		GeneratedAt:   nowT,
		TotalUsers:    totalUsers,
		TotalJobs:     totalJobs,
		NewUsersToday: newUsers,
		NewJobsToday:  newJobs,
		ActiveNow:     activeNow,
		Recent:        recent,
	}, nil
}

// Users returns the most recently registered non-banned users.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListRecentUsers(ctx, userListLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Jobs returns the most recent jobs regardless of status.
func (s *Service) Jobs(ctx context.Context) ([]models.Job, error) {
	jobs, err := s.store.ListAllJobs(ctx, jobListLimit)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

type UserDetail struct {
	User       models.User       `json:"user"`
	JobsPosted int64             `json:"jobs_posted"`
	Activities []models.Activity `json:"activities"`
}

// UserDetail returns one user's profile, job count, and recent activity. Ban
// state does not hide a user here. Returns nil, nil when the id is unknown.
func (s *Service) UserDetail(ctx context.Context, id int64) (*UserDetail, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	jobs, err := s.store.CountJobsByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count jobs by client: %w", err)
	}
	acts, err := s.store.ListActivityByUser(ctx, id, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("list user activity: %w", err)
	}
	if acts == nil {
		acts = []models.Activity{}
	}

	return &UserDetail{User: *u, JobsPosted: jobs, Activities: acts}, nil
}

// DailyReport returns yesterday's metric row, or nil when none was written.
func (s *Service) DailyReport(ctx context.Context) (*models.DailyMetric, error) {
	yesterday := s.now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	return s.store.GetDailyMetric(ctx, yesterday)
}

type Weekly struct {
	Days []models.DailyMetric `json:"days"`

	TotalNewUsers    int64 `json:"total_new_users"`
	TotalNewJobs     int64 `json:"total_new_jobs"`
	TotalActiveUsers int64 `json:"total_active_users"`

	AvgNewUsers    float64 `json:"avg_new_users"`
	AvgNewJobs     float64 `json:"avg_new_jobs"`
	AvgActiveUsers float64 `json:"avg_active_users"`
}

// Weekly returns the metric rows for the last seven dates plus sums and
// per-day averages. With no rows it returns an empty trend, not an error.
func (s *Service) Weekly(ctx context.Context) (*Weekly, error) {
	from := s.now().UTC().AddDate(0, 0, -trendWindowDays).Format("2006-01-02")
	days, err := s.store.ListDailyMetrics(ctx, from)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []models.DailyMetric{}
	}

	w := &Weekly{Days: days}
	for _, d := range days {
		w.TotalNewUsers += d.NewUsers
		w.TotalNewJobs += d.NewJobs
		w.TotalActiveUsers += d.ActiveUsers
	}
	if n := len(days); n > 0 {
		w.AvgNewUsers = float64(w.TotalNewUsers) / float64(n)
		w.AvgNewJobs = float64(w.TotalNewJobs) / float64(n)
		w.AvgActiveUsers = float64(w.TotalActiveUsers) / float64(n)
	}

	return w, nil
}
