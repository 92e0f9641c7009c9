package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-service/internal/domain"
)

// ServiceRequestRepository encapsulates service request persistence. The
// write paths pair the row mutation with its audit activities inside a
// single transaction so no partial commit is possible.
type ServiceRequestRepository interface {
	CreateWithActivity(ctx context.Context, req *domain.ServiceRequest, activity *domain.ServiceActivity) error
	ApplyUpdate(ctx context.Context, req *domain.ServiceRequest, activities []domain.ServiceActivity) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	List(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error)
}

type serviceRequestRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRequestRepository instantiates the repository.
func NewServiceRequestRepository(pool *pgxpool.Pool) ServiceRequestRepository {
	return &serviceRequestRepository{pool: pool}
}

func (r *serviceRequestRepository) CreateWithActivity(ctx context.Context, req *domain.ServiceRequest, activity *domain.ServiceActivity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertRequest = `
        INSERT INTO service_requests (title, description, screenshot_path, priority, status, user_id, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertRequest,
		req.Title,
		req.Description,
		req.ScreenshotPath,
		req.Priority.Storage(),
		req.Status.Storage(),
		req.UserID,
		req.DepartmentID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return err
	}

	activity.ServiceRequestID = req.ID
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *serviceRequestRepository) ApplyUpdate(ctx context.Context, req *domain.ServiceRequest, activities []domain.ServiceActivity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE service_requests SET priority=$1, status=$2, department_id=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	if err := tx.QueryRow(ctx, update,
		req.Priority.Storage(),
		req.Status.Storage(),
		req.DepartmentID,
		req.ID,
	).Scan(&req.UpdatedAt); err != nil {
		return err
	}

	for i := range activities {
		if err := insertActivity(ctx, tx, &activities[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertActivity(ctx context.Context, tx pgx.Tx, activity *domain.ServiceActivity) error {
	const query = `
        INSERT INTO service_activities (service_request_id, activity_type, description, user_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		activity.ServiceRequestID,
		activity.ActivityType,
		activity.Description,
		activity.UserID,
	).Scan(&activity.ID, &activity.CreatedAt)
}

const requestColumns = `
        sr.id, sr.title, sr.description, sr.screenshot_path, sr.priority, sr.status,
        sr.user_id, sr.department_id, sr.created_at, sr.updated_at,
        u.id, u.email, u.name, u.role, u.created_at,
        d.id, d.name, d.description`

func (r *serviceRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	query := `
        SELECT` + requestColumns + `
        FROM service_requests sr
        JOIN users u ON u.id = sr.user_id
        JOIN departments d ON d.id = sr.department_id
        WHERE sr.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanRequest(row)
}

func (r *serviceRequestRepository) List(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	query := `
        SELECT` + requestColumns + `
        FROM service_requests sr
        JOIN users u ON u.id = sr.user_id
        JOIN departments d ON d.id = sr.department_id
        ORDER BY sr.id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var (
		req  domain.ServiceRequest
		user domain.User
		dept domain.Department
	)
	if err := row.Scan(
		&req.ID,
		&req.Title,
		&req.Description,
		&req.ScreenshotPath,
		&req.Priority,
		&req.Status,
		&req.UserID,
		&req.DepartmentID,
		&req.CreatedAt,
		&req.UpdatedAt,
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&dept.ID,
		&dept.Name,
		&dept.Description,
	); err != nil {
		return nil, err
	}
	req.User = &user
	req.Department = &dept
	return &req, nil
}
