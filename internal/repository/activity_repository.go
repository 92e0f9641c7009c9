package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
)

// ActivityRepository reads the append-only audit trail. Activities are only
// ever written through the service request transactions.
type ActivityRepository interface {
	ListByRequest(ctx context.Context, requestID int64) ([]domain.ServiceActivity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds the repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.ServiceActivity, error) {
	const query = `
        SELECT a.id, a.service_request_id, a.activity_type, a.description, a.user_id, a.created_at,
               u.id, u.email, u.name, u.role, u.created_at
        FROM service_activities a
        JOIN users u ON u.id = a.user_id
        WHERE a.service_request_id=$1
        ORDER BY a.created_at DESC, a.id DESC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceActivity
	for rows.Next() {
		var (
			activity domain.ServiceActivity
			user     domain.User
		)
		if err := rows.Scan(
			&activity.ID,
			&activity.ServiceRequestID,
			&activity.ActivityType,
			&activity.Description,
			&activity.UserID,
			&activity.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		activity.User = &user
		result = append(result, activity)
	}
	return result, rows.Err()
}
