package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-portal/internal/domain"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// ErrStaleStatus reports a status update issued against a stale read; the
// record moved concurrently and the write did not apply.
var ErrStaleStatus = errors.New("request status changed concurrently")

// StatusUpdate describes a compare-and-swap status write.
type StatusUpdate struct {
	ID          string
	From        domain.RequestStatus
	To          domain.RequestStatus
	CancelledBy *string
}

// RequestRepository encapsulates service-request persistence. Records are
// never deleted; terminal requests are retained.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.ServiceRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceRequest, error)
	ListAll(ctx context.Context) ([]domain.ServiceRequest, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the Postgres-backed repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO requests (owner_id, name, email, phone_number, service, message, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		request.OwnerID,
		request.Name,
		request.Email,
		request.PhoneNumber,
		request.Service,
		request.Message,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	const query = `
        SELECT id, owner_id, name, email, phone_number, service, message,
               status, created_at, updated_at, cancelled_by, cancelled_at
        FROM requests WHERE id=$1`
	var request domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.OwnerID,
		&request.Name,
		&request.Email,
		&request.PhoneNumber,
		&request.Service,
		&request.Message,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.CancelledBy,
		&request.CancelledAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return &request, nil
}

// UpdateStatus writes the new status only when the stored status still
// matches update.From, closing the race between two actors transitioning
// the same record. Cancellation metadata is stamped alongside.
func (r *requestRepository) UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.ServiceRequest, error) {
	const query = `
        UPDATE requests SET status=$3, updated_at=NOW(),
            cancelled_by=CASE WHEN $3=$4 THEN $5 ELSE NULL END,
            cancelled_at=CASE WHEN $3=$4 THEN NOW() ELSE NULL END
        WHERE id=$1 AND status=$2
        RETURNING id, owner_id, name, email, phone_number, service, message,
                  status, created_at, updated_at, cancelled_by, cancelled_at`
	var request domain.ServiceRequest
	err := r.pool.QueryRow(ctx, query,
		update.ID,
		update.From,
		update.To,
		domain.RequestStatusCancelled,
		update.CancelledBy,
	).Scan(
		&request.ID,
		&request.OwnerID,
		&request.Name,
		&request.Email,
		&request.PhoneNumber,
		&request.Service,
		&request.Message,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.CancelledBy,
		&request.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleStatus
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return &request, nil
}

func (r *requestRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceRequest, error) {
	const query = `
        SELECT id, owner_id, name, email, phone_number, service, message,
               status, created_at, updated_at, cancelled_by, cancelled_at
        FROM requests WHERE owner_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) ListAll(ctx context.Context) ([]domain.ServiceRequest, error) {
	const query = `
        SELECT id, owner_id, name, email, phone_number, service, message,
               status, created_at, updated_at, cancelled_by, cancelled_at
        FROM requests ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var request domain.ServiceRequest
		if err := rows.Scan(
			&request.ID,
			&request.OwnerID,
			&request.Name,
			&request.Email,
			&request.PhoneNumber,
			&request.Service,
			&request.Message,
			&request.Status,
			&request.CreatedAt,
			&request.UpdatedAt,
			&request.CancelledBy,
			&request.CancelledAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return result, nil
}
