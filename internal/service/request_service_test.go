package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository/memory"
	"github.com/spec-kit/request-service/internal/service"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRequestService(t *testing.T) (*service.RequestService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewRequestService(service.RequestDependencies{
		RequestRepo:    store.Requests(),
		ActivityRepo:   store.Activities(),
		UserRepo:       store.Users(),
		DepartmentRepo: store.Departments(),
	})
	return svc, store
}

func seedUserAndDepartment(t *testing.T, store *memory.Store) (*domain.User, *domain.Department) {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{Email: "a@x.com", Name: "A", Role: domain.RoleUser}
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	dept := &domain.Department{Name: "IT"}
	if err := store.Departments().Create(ctx, dept); err != nil {
		t.Fatalf("seed department: %v", err)
	}
	return user, dept
}

func createRequest(t *testing.T, svc *service.RequestService, userID, deptID int64) *domain.ServiceRequest {
	t.Helper()
	req, err := svc.Create(context.Background(), userID, service.RequestCreateInput{
		Title:        "T",
		Description:  "D",
		DepartmentID: deptID,
	}, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestCreateAppliesDefaultsAndRecordsCreatedActivity(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)

	req := createRequest(t, svc, user.ID, dept.ID)

	if req.Priority != domain.PriorityNormal {
		t.Errorf("priority = %q, want %q", req.Priority, domain.PriorityNormal)
	}
	if req.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", req.Status, domain.StatusPending)
	}
	if req.User == nil || req.User.ID != user.ID {
		t.Errorf("user relation not resolved: %+v", req.User)
	}
	if req.Department == nil || req.Department.ID != dept.ID {
		t.Errorf("department relation not resolved: %+v", req.Department)
	}

	activities, err := svc.Activities(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("got %d activities, want 1", len(activities))
	}
	if activities[0].ActivityType != domain.ActivityCreated {
		t.Errorf("activity type = %q, want %q", activities[0].ActivityType, domain.ActivityCreated)
	}
	if activities[0].UserID != user.ID {
		t.Errorf("activity actor = %d, want %d", activities[0].UserID, user.ID)
	}
}

func TestCreateRejectsUnknownUserAndDepartment(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 999, service.RequestCreateInput{Title: "T", Description: "D", DepartmentID: dept.ID}, nil); !isNotFound(err) {
		t.Errorf("unknown user: got %v, want NOT_FOUND", err)
	}
	if _, err := svc.Create(ctx, user.ID, service.RequestCreateInput{Title: "T", Description: "D", DepartmentID: 999}, nil); !isNotFound(err) {
		t.Errorf("unknown department: got %v, want NOT_FOUND", err)
	}
}

func TestUpdateWritesOneActivityPerChangedField(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	req := createRequest(t, svc, user.ID, dept.ID)
	ctx := context.Background()

	status := domain.StatusInProgress
	samePriority := domain.PriorityNormal
	updated, err := svc.Update(ctx, req.ID, service.RequestPatch{
		Status:   &status,
		Priority: &samePriority, // equal to stored value, must not audit
	}, user.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}
	if !updated.UpdatedAt.After(req.CreatedAt) {
		t.Errorf("updated_at did not advance: %v", updated.UpdatedAt)
	}

	activities, err := svc.Activities(ctx, req.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(activities))
	}
	newest := activities[0]
	if newest.ActivityType != "status_update" {
		t.Errorf("newest activity type = %q, want status_update", newest.ActivityType)
	}
	if !strings.Contains(newest.Description, "pending") || !strings.Contains(newest.Description, "in_progress") {
		t.Errorf("description %q should mention both old and new value", newest.Description)
	}
}

func TestUpdateMultipleFieldsAuditsEach(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	other := &domain.Department{Name: "Facilities"}
	if err := store.Departments().Create(context.Background(), other); err != nil {
		t.Fatalf("seed department: %v", err)
	}
	req := createRequest(t, svc, user.ID, dept.ID)

	status := domain.StatusCompleted
	priority := domain.PriorityUrgent
	updated, err := svc.Update(context.Background(), req.ID, service.RequestPatch{
		Status:       &status,
		Priority:     &priority,
		DepartmentID: &other.ID,
	}, user.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DepartmentID != other.ID {
		t.Errorf("department = %d, want %d", updated.DepartmentID, other.ID)
	}
	if updated.Department == nil || updated.Department.Name != "Facilities" {
		t.Errorf("department relation not refreshed: %+v", updated.Department)
	}

	if got := store.ActivityCount(req.ID); got != 4 { // created + 3 field updates
		t.Errorf("got %d activities, want 4", got)
	}
}

func TestUpdateNoOpPatchIsIdempotent(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	req := createRequest(t, svc, user.ID, dept.ID)
	ctx := context.Background()

	priority := domain.PriorityNormal
	status := domain.StatusPending
	patch := service.RequestPatch{Priority: &priority, Status: &status, DepartmentID: &dept.ID}

	for i := 0; i < 2; i++ {
		updated, err := svc.Update(ctx, req.ID, patch, user.ID)
		if err != nil {
			t.Fatalf("no-op update %d: %v", i, err)
		}
		if !updated.UpdatedAt.Equal(req.UpdatedAt) {
			t.Errorf("no-op update %d advanced updated_at", i)
		}
	}
	if got := store.ActivityCount(req.ID); got != 1 {
		t.Errorf("got %d activities after no-op patches, want 1", got)
	}
}

func TestUpdateMissingRequestWritesNothing(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	createRequest(t, svc, user.ID, dept.ID)

	status := domain.StatusClosed
	_, err := svc.Update(context.Background(), 999, service.RequestPatch{Status: &status}, user.ID)
	if !isNotFound(err) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
	if got := store.ActivityCount(999); got != 0 {
		t.Errorf("activities written for missing request: %d", got)
	}
}

func TestUpdateRejectsUnknownDepartment(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	req := createRequest(t, svc, user.ID, dept.ID)

	missing := int64(42)
	_, err := svc.Update(context.Background(), req.ID, service.RequestPatch{DepartmentID: &missing}, user.ID)
	if !isNotFound(err) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
	if got := store.ActivityCount(req.ID); got != 1 {
		t.Errorf("got %d activities, want only the created entry", got)
	}
}

func TestActivitiesOrderedNewestFirst(t *testing.T) {
	svc, store := newRequestService(t)
	user, dept := seedUserAndDepartment(t, store)
	req := createRequest(t, svc, user.ID, dept.ID)
	ctx := context.Background()

	inProgress := domain.StatusInProgress
	if _, err := svc.Update(ctx, req.ID, service.RequestPatch{Status: &inProgress}, user.ID); err != nil {
		t.Fatalf("first update: %v", err)
	}
	urgent := domain.PriorityUrgent
	if _, err := svc.Update(ctx, req.ID, service.RequestPatch{Priority: &urgent}, user.ID); err != nil {
		t.Fatalf("second update: %v", err)
	}

	activities, err := svc.Activities(ctx, req.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 3 {
		t.Fatalf("got %d activities, want 3", len(activities))
	}
	for i := 1; i < len(activities); i++ {
		if activities[i].CreatedAt.After(activities[i-1].CreatedAt) {
			t.Fatalf("activities out of order at index %d", i)
		}
	}
	if activities[0].ActivityType != "priority_update" {
		t.Errorf("newest = %q, want priority_update", activities[0].ActivityType)
	}
	if activities[len(activities)-1].ActivityType != domain.ActivityCreated {
		t.Errorf("oldest = %q, want created", activities[len(activities)-1].ActivityType)
	}
}

func TestGetMissingRequest(t *testing.T) {
	svc, _ := newRequestService(t)
	_, err := svc.Get(context.Background(), 999)
	if !isNotFound(err) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}

func isNotFound(err error) bool {
	var domainErr *apperrors.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND"
}
