package service

import (
	"context"
	"strings"

	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/repository"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// DirectoryService manages the minimal user and department lifecycle:
// create and list, nothing else.
type DirectoryService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
}

// UserCreateInput describes the user creation payload.
type UserCreateInput struct {
	Email string
	Name  string
	Role  string
}

// DepartmentCreateInput describes the department creation payload.
type DepartmentCreateInput struct {
	Name        string
	Description string
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
	}
}

// CreateUser inserts a user, defaulting the role to "user".
func (s *DirectoryService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	role, err := domain.ParseUserRole(input.Role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	user := &domain.User{
		Email: strings.TrimSpace(input.Email),
		Name:  strings.TrimSpace(input.Name),
		Role:  role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns users paginated by offset/limit.
func (s *DirectoryService) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	skip, limit = normalizeRange(skip, limit)
	return s.users.List(ctx, limit, skip)
}

// CreateDepartment inserts a department; duplicate names surface as a
// constraint violation from the unique index.
func (s *DirectoryService) CreateDepartment(ctx context.Context, input DepartmentCreateInput) (*domain.Department, error) {
	dept := &domain.Department{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// ListDepartments returns departments paginated by offset/limit.
func (s *DirectoryService) ListDepartments(ctx context.Context, skip, limit int) ([]domain.Department, error) {
	skip, limit = normalizeRange(skip, limit)
	return s.departments.List(ctx, limit, skip)
}
