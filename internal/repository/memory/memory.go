// Package memory provides in-memory repository implementations used by the
// service and handler tests. Behavior mirrors the Postgres repositories:
// missing rows surface as pgx.ErrNoRows and constraint violations as
// *pgconn.PgError so error classification stays exercised.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository"
)

// Store is the shared backing for all in-memory repositories.
type Store struct {
	mu          sync.Mutex
	users       map[int64]domain.User
	departments map[int64]domain.Department
	requests    map[int64]domain.ServiceRequest
	activities  []domain.ServiceActivity

	userSeq     int64
	deptSeq     int64
	requestSeq  int64
	activitySeq int64
	clock       time.Time
}

// NewStore initializes an empty store with a deterministic clock.
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]domain.User),
		departments: make(map[int64]domain.Department),
		requests:    make(map[int64]domain.ServiceRequest),
		clock:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick advances the clock so consecutive writes get distinct timestamps.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// ActivityCount reports how many audit rows exist for a request.
func (s *Store) ActivityCount(requestID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, activity := range s.activities {
		if activity.ServiceRequestID == requestID {
			count++
		}
	}
	return count
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Departments returns the department repository view.
func (s *Store) Departments() repository.DepartmentRepository { return departmentRepo{s} }

// Requests returns the service request repository view.
func (s *Store) Requests() repository.ServiceRequestRepository { return requestRepo{s} }

// Activities returns the activity repository view.
func (s *Store) Activities() repository.ActivityRepository { return activityRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	r.s.userSeq++
	user.ID = r.s.userSeq
	user.CreatedAt = r.s.tick()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), nil
}

type departmentRepo struct{ s *Store }

func (r departmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.departments {
		if existing.Name == dept.Name {
			return uniqueViolation("departments_name_key")
		}
	}
	r.s.deptSeq++
	dept.ID = r.s.deptSeq
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r departmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dept, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &dept, nil
}

func (r departmentRepo) List(_ context.Context, limit, offset int) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]domain.Department, 0, len(r.s.departments))
	for _, dept := range r.s.departments {
		all = append(all, dept)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), nil
}

type requestRepo struct{ s *Store }

func (r requestRepo) CreateWithActivity(_ context.Context, req *domain.ServiceRequest, activity *domain.ServiceActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requestSeq++
	req.ID = r.s.requestSeq
	req.CreatedAt = r.s.tick()
	req.UpdatedAt = req.CreatedAt

	stored := *req
	stored.User = nil
	stored.Department = nil
	r.s.requests[req.ID] = stored

	activity.ServiceRequestID = req.ID
	r.s.appendActivity(activity)
	return nil
}

func (r requestRepo) ApplyUpdate(_ context.Context, req *domain.ServiceRequest, activities []domain.ServiceActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[req.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Priority = req.Priority
	stored.Status = req.Status
	stored.DepartmentID = req.DepartmentID
	stored.UpdatedAt = r.s.tick()
	r.s.requests[req.ID] = stored
	req.UpdatedAt = stored.UpdatedAt

	for i := range activities {
		r.s.appendActivity(&activities[i])
	}
	return nil
}

func (r requestRepo) GetByID(_ context.Context, id int64) (*domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.s.resolve(stored), nil
}

func (r requestRepo) List(_ context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]domain.ServiceRequest, 0, len(r.s.requests))
	for _, stored := range r.s.requests {
		all = append(all, *r.s.resolve(stored))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), nil
}

func (s *Store) appendActivity(activity *domain.ServiceActivity) {
	s.activitySeq++
	activity.ID = s.activitySeq
	activity.CreatedAt = s.tick()
	stored := *activity
	stored.User = nil
	s.activities = append(s.activities, stored)
}

func (s *Store) resolve(stored domain.ServiceRequest) *domain.ServiceRequest {
	if user, ok := s.users[stored.UserID]; ok {
		stored.User = &user
	}
	if dept, ok := s.departments[stored.DepartmentID]; ok {
		stored.Department = &dept
	}
	return &stored
}

type activityRepo struct{ s *Store }

func (r activityRepo) ListByRequest(_ context.Context, requestID int64) ([]domain.ServiceActivity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.ServiceActivity, 0)
	for _, activity := range r.s.activities {
		if activity.ServiceRequestID != requestID {
			continue
		}
		if user, ok := r.s.users[activity.UserID]; ok {
			activity.User = &user
		}
		result = append(result, activity)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
