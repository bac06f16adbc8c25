package models

// Domain models matching the database schema in db/migrations/0001_init.sql

const (
	RoleFreelancer = "freelancer"
	RoleClient     = "client"
)

const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

type User struct {
	ID       int64  `json:"id" db:"user_id"`
	Username string `json:"username,omitempty" db:"username"`
	Role     string `json:"role,omitempty" db:"role"`
	Skills   string `json:"skills,omitempty" db:"skills"`
	Location string `json:"location,omitempty" db:"location"`
	Banned   bool   `json:"banned" db:"is_banned"`
	Created  int64  `json:"created" db:"created"`
}

type Job struct {
	ID          int64  `json:"id" db:"id"`
	ClientID    int64  `json:"client_id" db:"client_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Budget      string `json:"budget" db:"budget"`
	Status      string `json:"status" db:"status"`
	Created     int64  `json:"created" db:"created"`

	// ClientHandle is populated by joined listings only.
	ClientHandle string `json:"client_handle,omitempty" db:"-"`
}

type Activity struct {
	ID      int64  `json:"id" db:"id"`
	UserID  int64  `json:"user_id" db:"user_id"`
	Action  string `json:"action" db:"action"`
	Details string `json:"details,omitempty" db:"details"`
	Created int64  `json:"created" db:"created"`

	// Username is populated by joined listings only.
	Username string `json:"username,omitempty" db:"-"`
}

type DailyMetric struct {
	Date        string `json:"date" db:"date"`
	NewUsers    int64  `json:"new_users" db:"new_users"`
	NewJobs     int64  `json:"new_jobs" db:"new_jobs"`
	ActiveUsers int64  `json:"active_users" db:"active_users"`
}
