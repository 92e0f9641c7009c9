package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "no rows maps to not found",
			err:        pgx.ErrNoRows,
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrapped no rows maps to not found",
			err:        errors.Join(errors.New("get request"), pgx.ErrNoRows),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unique violation maps to conflict",
			err:        &pgconn.PgError{Code: "23505", ConstraintName: "departments_name_key"},
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "foreign key violation maps to conflict",
			err:        &pgconn.PgError{Code: "23503", ConstraintName: "service_requests_user_id_fkey"},
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "other pg error maps to internal",
			err:        &pgconn.PgError{Code: "42P01"},
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "plain error maps to internal",
			err:        errors.New("boom"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "domain error passes through",
			err:        NewValidationError("bad payload", nil),
			wantCode:   "VALIDATION_FAILED",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}

	if ToDomainError(nil) != nil {
		t.Error("nil error should map to nil")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Error("internal error should wrap its cause")
	}
}
