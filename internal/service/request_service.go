package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/persistence"
	"github.com/spec-kit/request-service/internal/repository"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

const (
	defaultListLimit = 100
	detailCacheTTL   = time.Minute
)

// RequestService coordinates the service request lifecycle and its audit
// trail.
type RequestService struct {
	requests    repository.ServiceRequestRepository
	activities  repository.ActivityRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	cache       *persistence.Redis
}

// RequestDependencies bundles repositories for the request service.
type RequestDependencies struct {
	RequestRepo    repository.ServiceRequestRepository
	ActivityRepo   repository.ActivityRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	Cache          *persistence.Redis
}

// RequestCreateInput describes the creation payload.
type RequestCreateInput struct {
	Title        string
	Description  string
	DepartmentID int64
}

// RequestPatch carries the recognized mutable fields of a partial update.
// Nil fields are absent from the patch.
type RequestPatch struct {
	Priority     *domain.Priority
	Status       *domain.Status
	DepartmentID *int64
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:    deps.RequestRepo,
		activities:  deps.ActivityRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		cache:       deps.Cache,
	}
}

// Create inserts a service request plus its "created" activity in one
// transaction and returns the entity with relations resolved.
func (s *RequestService) Create(ctx context.Context, userID int64, input RequestCreateInput, screenshotPath *string) (*domain.ServiceRequest, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, err
	}
	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": input.DepartmentID})
		}
		return nil, err
	}

	req := &domain.ServiceRequest{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		ScreenshotPath: screenshotPath,
		Priority:       domain.PriorityNormal,
		Status:         domain.StatusPending,
		UserID:         userID,
		DepartmentID:   input.DepartmentID,
	}
	activity := &domain.ServiceActivity{
		ActivityType: domain.ActivityCreated,
		Description:  "Service request created",
		UserID:       userID,
	}

	if err := s.requests.CreateWithActivity(ctx, req, activity); err != nil {
		return nil, err
	}
	req.User = user
	req.Department = dept
	return req, nil
}

// Get returns one service request with relations, consulting the read
// cache first.
func (s *RequestService) Get(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"id": id})
		}
		return nil, err
	}
	s.cacheSet(ctx, req)
	return req, nil
}

// List returns service requests paginated by offset/limit.
func (s *RequestService) List(ctx context.Context, skip, limit int) ([]domain.ServiceRequest, error) {
	skip, limit = normalizeRange(skip, limit)
	return s.requests.List(ctx, limit, skip)
}

// Activities returns the audit trail for a request, newest first.
func (s *RequestService) Activities(ctx context.Context, requestID int64) ([]domain.ServiceActivity, error) {
	return s.activities.ListByRequest(ctx, requestID)
}

// fieldChange pairs one recognized mutable field with the audit description
// formatter for its transition.
type fieldChange struct {
	field    string
	oldValue string
	newValue string
	apply    func(*domain.ServiceRequest)
}

func (c fieldChange) describe() string {
	return fmt.Sprintf("%s changed from %s to %s", c.field, c.oldValue, c.newValue)
}

// Update applies a partial update. Each recognized field whose new value
// differs from the stored one yields exactly one activity row; the row
// mutation and all activities commit atomically. A no-op patch writes
// nothing.
func (s *RequestService) Update(ctx context.Context, id int64, patch RequestPatch, actorID int64) (*domain.ServiceRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"id": id})
		}
		return nil, err
	}

	changes := collectChanges(req, patch)
	if len(changes) == 0 {
		return req, nil
	}

	if patch.DepartmentID != nil && *patch.DepartmentID != req.DepartmentID {
		dept, err := s.departments.GetByID(ctx, *patch.DepartmentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("department", map[string]any{"department_id": *patch.DepartmentID})
			}
			return nil, err
		}
		req.Department = dept
	}

	activities := make([]domain.ServiceActivity, 0, len(changes))
	for _, change := range changes {
		activities = append(activities, domain.ServiceActivity{
			ServiceRequestID: req.ID,
			ActivityType:     domain.ActivityTypeForField(change.field),
			Description:      change.describe(),
			UserID:           actorID,
		})
		change.apply(req)
	}

	if err := s.requests.ApplyUpdate(ctx, req, activities); err != nil {
		return nil, err
	}
	s.cacheDrop(ctx, req.ID)
	return req, nil
}

// collectChanges diffs the patch against the stored row over the enumerated
// set of mutable fields. Unrecognized fields cannot reach this point.
func collectChanges(req *domain.ServiceRequest, patch RequestPatch) []fieldChange {
	var changes []fieldChange
	if patch.Priority != nil && *patch.Priority != req.Priority {
		next := *patch.Priority
		changes = append(changes, fieldChange{
			field:    "priority",
			oldValue: req.Priority.Wire(),
			newValue: next.Wire(),
			apply:    func(r *domain.ServiceRequest) { r.Priority = next },
		})
	}
	if patch.Status != nil && *patch.Status != req.Status {
		next := *patch.Status
		changes = append(changes, fieldChange{
			field:    "status",
			oldValue: req.Status.Wire(),
			newValue: next.Wire(),
			apply:    func(r *domain.ServiceRequest) { r.Status = next },
		})
	}
	if patch.DepartmentID != nil && *patch.DepartmentID != req.DepartmentID {
		next := *patch.DepartmentID
		changes = append(changes, fieldChange{
			field:    "department_id",
			oldValue: strconv.FormatInt(req.DepartmentID, 10),
			newValue: strconv.FormatInt(next, 10),
			apply:    func(r *domain.ServiceRequest) { r.DepartmentID = next },
		})
	}
	return changes
}

func normalizeRange(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return skip, limit
}

func cacheKey(id int64) string {
	return fmt.Sprintf("service-requests:%d", id)
}

func (s *RequestService) cacheGet(ctx context.Context, id int64) *domain.ServiceRequest {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	payload, err := s.cache.Client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var req domain.ServiceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil
	}
	return &req
}

func (s *RequestService) cacheSet(ctx context.Context, req *domain.ServiceRequest) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return
	}
	_ = s.cache.Client.Set(ctx, cacheKey(req.ID), payload, detailCacheTTL).Err()
}

func (s *RequestService) cacheDrop(ctx context.Context, id int64) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	_ = s.cache.Client.Del(ctx, cacheKey(id)).Err()
}
