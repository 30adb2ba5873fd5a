package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-portal/internal/domain"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// ProfileRepository encapsulates user-profile persistence. Profiles are
// keyed by the identity-provider id.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates the Postgres-backed repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO users (id, name, email, mobile, education, college, role, onboarded)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Mobile,
		profile.Education,
		profile.College,
		profile.Role,
		profile.Onboarded,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	const query = `
        SELECT id, name, email, mobile, education, college, role, onboarded, created_at, updated_at
        FROM users WHERE id=$1`
	var profile domain.UserProfile
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Email,
		&profile.Mobile,
		&profile.Education,
		&profile.College,
		&profile.Role,
		&profile.Onboarded,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        UPDATE users SET name=$2, mobile=$3, education=$4, college=$5, role=$6, onboarded=$7, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Name,
		profile.Mobile,
		profile.Education,
		profile.College,
		profile.Role,
		profile.Onboarded,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}
