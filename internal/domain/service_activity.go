package domain

import "time"

// ActivityCreated is the activity type recorded alongside request insertion.
const ActivityCreated = "created"

// ActivityTypeForField names the activity recorded when a request field
// changes, e.g. "status_update".
func ActivityTypeForField(field string) string {
	return field + "_update"
}

// ServiceActivity is an append-only audit entry describing one change event
// on a service request. Activities are never updated or deleted.
type ServiceActivity struct {
	ID               int64
	ServiceRequestID int64
	ActivityType     string
	Description      string
	UserID           int64
	CreatedAt        time.Time

	User *User
}
