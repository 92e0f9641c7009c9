package domain

import (
	"fmt"
	"time"
)

// UserRole classifies what a user is allowed to do with service requests.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleDepartment UserRole = "department"
	RoleManagement UserRole = "management"
)

// ParseUserRole converts a wire value into the canonical role. An empty
// value falls back to RoleUser.
func ParseUserRole(value string) (UserRole, error) {
	switch UserRole(value) {
	case "":
		return RoleUser, nil
	case RoleUser, RoleDepartment, RoleManagement:
		return UserRole(value), nil
	default:
		return "", fmt.Errorf("unknown user role %q", value)
	}
}

// Storage returns the database representation of the role.
func (r UserRole) Storage() string {
	return string(r)
}

// Wire returns the JSON representation of the role.
func (r UserRole) Wire() string {
	return string(r)
}

// User is a person who files service requests or acts on them.
// Users are immutable after creation.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      UserRole
	CreatedAt time.Time
}
