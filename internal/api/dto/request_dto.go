package dto

import "time"

// UpdateServiceRequestRequest carries the recognized mutable fields of a
// partial update; absent fields stay nil.
type UpdateServiceRequestRequest struct {
	Priority     *string `json:"priority"`
	Status       *string `json:"status"`
	DepartmentID *int64  `json:"department_id"`
}

// ServiceRequestResponse wire shape with relations resolved.
type ServiceRequestResponse struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	ScreenshotPath *string             `json:"screenshot_path"`
	Priority       string              `json:"priority"`
	Status         string              `json:"status"`
	UserID         int64               `json:"user_id"`
	DepartmentID   int64               `json:"department_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	User           *UserResponse       `json:"user,omitempty"`
	Department     *DepartmentResponse `json:"department,omitempty"`
}

// ServiceRequestDetailResponse adds the audit trail to the entity.
type ServiceRequestDetailResponse struct {
	ServiceRequestResponse
	Activities []ServiceActivityResponse `json:"activities"`
}

// ServiceActivityResponse wire shape.
type ServiceActivityResponse struct {
	ID               int64         `json:"id"`
	ServiceRequestID int64         `json:"service_request_id"`
	ActivityType     string        `json:"activity_type"`
	Description      string        `json:"description"`
	UserID           int64         `json:"user_id"`
	CreatedAt        time.Time     `json:"created_at"`
	User             *UserResponse `json:"user,omitempty"`
}
