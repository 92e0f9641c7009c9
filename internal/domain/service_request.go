package domain

import (
	"fmt"
	"time"
)

// Priority enumerates urgency levels for a service request.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityUrgent    Priority = "urgent"
)

// ParsePriority converts a wire value into the canonical priority.
func ParsePriority(value string) (Priority, error) {
	switch Priority(value) {
	case PriorityLow, PriorityNormal, PriorityImportant, PriorityUrgent:
		return Priority(value), nil
	default:
		return "", fmt.Errorf("unknown priority %q", value)
	}
}

// Storage returns the database representation of the priority.
func (p Priority) Storage() string {
	return string(p)
}

// Wire returns the JSON representation of the priority.
func (p Priority) Wire() string {
	return string(p)
}

// Status enumerates lifecycle states for a service request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
)

// ParseStatus converts a wire value into the canonical status.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusClosed:
		return Status(value), nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// Storage returns the database representation of the status.
func (s Status) Storage() string {
	return string(s)
}

// Wire returns the JSON representation of the status.
func (s Status) Wire() string {
	return string(s)
}

// ServiceRequest is the aggregate users file against departments. Besides
// updated_at it is the only mutable entity; every field mutation must leave
// a ServiceActivity behind in the same transaction.
type ServiceRequest struct {
	ID             int64
	Title          string
	Description    string
	ScreenshotPath *string
	Priority       Priority
	Status         Status
	UserID         int64
	DepartmentID   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User       *User
	Department *Department
}
