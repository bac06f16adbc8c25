package repository

import (
	"context"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	// UpsertUser inserts or updates a user keyed by id. It always sets the
	// username and role, but never clears skills or location on conflict.
	UpsertUser(ctx context.Context, u *models.User) error
	SetSkills(ctx context.Context, id int64, skills string) error
	SetLocation(ctx context.Context, id int64, location string) error
	SetBanned(ctx context.Context, id int64, banned bool) error
	// GetUser returns nil, nil when no user exists for the id.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListFreelancerIDs(ctx context.Context) ([]int64, error)
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
	ListRecentUsers(ctx context.Context, limit int) ([]models.User, error)
	CountActiveUsers(ctx context.Context) (int64, error)
	CountUsersCreatedOn(ctx context.Context, date string) (int64, error)
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	ListOpenJobs(ctx context.Context, limit int) ([]models.Job, error)
	ListAllJobs(ctx context.Context, limit int) ([]models.Job, error)
	CountJobs(ctx context.Context) (int64, error)
	CountJobsCreatedOn(ctx context.Context, date string) (int64, error)
	CountJobsByClient(ctx context.Context, clientID int64) (int64, error)
}

type ActivityRepo interface {
	AppendActivity(ctx context.Context, a *models.Activity) (int64, error)
	ListRecentActivity(ctx context.Context, limit int) ([]models.Activity, error)
	ListActivityByUser(ctx context.Context, userID int64, limit int) ([]models.Activity, error)
	CountDistinctActorsSince(ctx context.Context, sinceMillis int64) (int64, error)
	CountActiveUsersOn(ctx context.Context, date string) (int64, error)
}

type MetricRepo interface {
	UpsertDailyMetric(ctx context.Context, m *models.DailyMetric) error
	// GetDailyMetric returns nil, nil when no row exists for the date.
	GetDailyMetric(ctx context.Context, date string) (*models.DailyMetric, error)
	ListDailyMetrics(ctx context.Context, fromDate string) ([]models.DailyMetric, error)
}

// Store is the full persistent surface the bot wires together.
type Store interface {
	UserRepo
	JobRepo
	ActivityRepo
	MetricRepo
}
