package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository"
)

// Store is an in-memory repository.Store for tests. Zero value is not
// usable; construct with NewStore. Error fields, when set, make the
// matching operations fail.
type Store struct {
	mu sync.Mutex

	Users      map[int64]*models.User
	Jobs       []*models.Job
	Activities []*models.Activity
	Metrics    map[string]*models.DailyMetric

	nextJobID      int64
	nextActivityID int64

	UpsertErr   error
	JobErr      error
	ActivityErr error
	MetricErr   error
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		Users:          make(map[int64]*models.User),
		Metrics:        make(map[string]*models.DailyMetric),
		nextJobID:      1,
		nextActivityID: 1,
	}
}

func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if cur, ok := s.Users[u.ID]; ok {
		cur.Username = u.Username
		cur.Role = u.Role
		return nil
	}
	cp := *u
	if cp.Created == 0 {
		cp.Created = time.Now().UnixMilli()
	}
	s.Users[u.ID] = &cp
	return nil
}

func (s *Store) SetSkills(ctx context.Context, id int64, skills string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if u, ok := s.Users[id]; ok {
		u.Skills = skills
	}
	return nil
}

func (s *Store) SetLocation(ctx context.Context, id int64, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if u, ok := s.Users[id]; ok {
		u.Location = location
	}
	return nil
}

func (s *Store) SetBanned(ctx context.Context, id int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.Users[id]; ok {
		u.Banned = banned
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) ListFreelancerIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []int64{}
	for _, u := range s.Users {
		if u.Role == models.RoleFreelancer && !u.Banned {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []int64{}
	for _, u := range s.Users {
		if !u.Banned {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) ListRecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for _, u := range s.Users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Created > users[j].Created })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) CountActiveUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, u := range s.Users {
		if !u.Banned {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountUsersCreatedOn(ctx context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end, err := dayRange(date)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, u := range s.Users {
		if u.Created >= start && u.Created < end {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.JobErr != nil {
		return 0, s.JobErr
	}
	cp := *j
	cp.ID = s.nextJobID
	s.nextJobID++
	if cp.Status == "" {
		cp.Status = models.JobStatusOpen
	}
	if cp.Created == 0 {
		cp.Created = time.Now().UnixMilli()
	}
	s.Jobs = append(s.Jobs, &cp)
	return cp.ID, nil
}

func (s *Store) ListOpenJobs(ctx context.Context, limit int) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := []models.Job{}
	for i := len(s.Jobs) - 1; i >= 0 && len(jobs) < limit; i-- {
		if s.Jobs[i].Status == models.JobStatusOpen {
			jobs = append(jobs, *s.Jobs[i])
		}
	}
	return jobs, nil
}

func (s *Store) ListAllJobs(ctx context.Context, limit int) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := []models.Job{}
	for i := len(s.Jobs) - 1; i >= 0 && len(jobs) < limit; i-- {
		jobs = append(jobs, *s.Jobs[i])
	}
	return jobs, nil
}

func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.Jobs)), nil
}

func (s *Store) CountJobsCreatedOn(ctx context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end, err := dayRange(date)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, j := range s.Jobs {
		if j.Created >= start && j.Created < end {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountJobsByClient(ctx context.Context, clientID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, j := range s.Jobs {
		if j.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (s *Store) AppendActivity(ctx context.Context, a *models.Activity) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ActivityErr != nil {
		return 0, s.ActivityErr
	}
	cp := *a
	cp.ID = s.nextActivityID
	s.nextActivityID++
	if cp.Created == 0 {
		cp.Created = time.Now().UnixMilli()
	}
	s.Activities = append(s.Activities, &cp)
	return cp.ID, nil
}

func (s *Store) ListRecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acts := []models.Activity{}
	for i := len(s.Activities) - 1; i >= 0 && len(acts) < limit; i-- {
		a := *s.Activities[i]
		if u, ok := s.Users[a.UserID]; ok {
			if u.Banned {
				continue
			}
			a.Username = u.Username
		}
		acts = append(acts, a)
	}
	return acts, nil
}

func (s *Store) ListActivityByUser(ctx context.Context, userID int64, limit int) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acts := []models.Activity{}
	for i := len(s.Activities) - 1; i >= 0 && len(acts) < limit; i-- {
		if s.Activities[i].UserID == userID {
			acts = append(acts, *s.Activities[i])
		}
	}
	return acts, nil
}

func (s *Store) CountDistinctActorsSince(ctx context.Context, sinceMillis int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[int64]bool{}
	for _, a := range s.Activities {
		if a.Created >= sinceMillis {
			seen[a.UserID] = true
		}
	}
	return int64(len(seen)), nil
}

func (s *Store) CountActiveUsersOn(ctx context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end, err := dayRange(date)
	if err != nil {
		return 0, err
	}
	seen := map[int64]bool{}
	for _, a := range s.Activities {
		if a.Created >= start && a.Created < end {
			seen[a.UserID] = true
		}
	}
	return int64(len(seen)), nil
}

func (s *Store) UpsertDailyMetric(ctx context.Context, m *models.DailyMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.MetricErr != nil {
		return s.MetricErr
	}
	cp := *m
	s.Metrics[m.Date] = &cp
	return nil
}

func (s *Store) GetDailyMetric(ctx context.Context, date string) (*models.DailyMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.Metrics[date]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *Store) ListDailyMetrics(ctx context.Context, fromDate string) ([]models.DailyMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics := []models.DailyMetric{}
	for _, m := range s.Metrics {
		if m.Date >= fromDate {
			metrics = append(metrics, *m)
		}
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Date < metrics[j].Date })
	return metrics, nil
}

func dayRange(date string) (int64, int64, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, 0, err
	}
	return t.UnixMilli(), t.Add(24 * time.Hour).UnixMilli(), nil
}
