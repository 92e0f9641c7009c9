package service_test

import (
	"context"
	"testing"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository/memory"
	"github.com/spec-kit/request-service/internal/service"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

func newDirectoryService(t *testing.T) (*service.DirectoryService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:       store.Users(),
		DepartmentRepo: store.Departments(),
	})
	return svc, store
}

func TestCreateUserDefaultsRole(t *testing.T) {
	svc, _ := newDirectoryService(t)
	user, err := svc.CreateUser(context.Background(), service.UserCreateInput{
		Email: "a@x.com",
		Name:  "A",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, domain.RoleUser)
	}
	if user.ID == 0 {
		t.Error("id not assigned")
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newDirectoryService(t)
	_, err := svc.CreateUser(context.Background(), service.UserCreateInput{
		Email: "a@x.com",
		Name:  "A",
		Role:  "superadmin",
	})
	if code := apperrors.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
		t.Fatalf("got code %q, want VALIDATION_FAILED", code)
	}
}

func TestCreateDepartmentDuplicateName(t *testing.T) {
	svc, _ := newDirectoryService(t)
	ctx := context.Background()

	first, err := svc.CreateDepartment(ctx, service.DepartmentCreateInput{Name: "IT"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err = svc.CreateDepartment(ctx, service.DepartmentCreateInput{Name: "IT"})
	if err == nil {
		t.Fatal("duplicate create succeeded")
	}
	if code := apperrors.ToDomainError(err).Code; code != "CONFLICT" {
		t.Errorf("got code %q, want CONFLICT", code)
	}

	// first department must be unaffected
	departments, err := svc.ListDepartments(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(departments) != 1 || departments[0].ID != first.ID {
		t.Errorf("departments = %+v, want only the first", departments)
	}
}

func TestListUsersPagination(t *testing.T) {
	svc, _ := newDirectoryService(t)
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if _, err := svc.CreateUser(ctx, service.UserCreateInput{Email: email, Name: "N"}); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	users, err := svc.ListUsers(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Email != "b@x.com" {
		t.Errorf("first user = %q, want b@x.com", users[0].Email)
	}

	users, err = svc.ListUsers(ctx, 0, 2)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("got %d users with limit 2, want 2", len(users))
	}
}
