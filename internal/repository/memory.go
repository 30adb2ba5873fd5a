package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-portal/internal/domain"
)

// MemoryRequestRepository is an in-memory RequestRepository used in tests
// and local development. Timestamps are assigned by the store, never the
// caller, so ordering stays consistent across clients; a tick counter keeps
// creation times strictly increasing even within one clock granule.
type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]domain.ServiceRequest
	tick     int64
}

// NewMemoryRequestRepository constructs an empty in-memory store.
func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{requests: make(map[string]domain.ServiceRequest)}
}

func (r *MemoryRequestRepository) nextTime() time.Time {
	r.tick++
	return time.Now().Add(time.Duration(r.tick) * time.Nanosecond)
}

func (r *MemoryRequestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = uuid.NewString()
	now := r.nextTime()
	request.CreatedAt = now
	request.UpdatedAt = now
	r.requests[request.ID] = *request
	return nil
}

func (r *MemoryRequestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r *MemoryRequestRepository) UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[update.ID]
	if !ok || request.Status != update.From {
		return nil, ErrStaleStatus
	}
	now := r.nextTime()
	request.Status = update.To
	request.UpdatedAt = now
	if update.To == domain.RequestStatusCancelled {
		request.CancelledBy = update.CancelledBy
		request.CancelledAt = &now
	} else {
		request.CancelledBy = nil
		request.CancelledAt = nil
	}
	r.requests[update.ID] = request
	return &request, nil
}

func (r *MemoryRequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ServiceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ServiceRequest
	for _, request := range r.requests {
		if request.OwnerID == ownerID {
			result = append(result, request)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *MemoryRequestRepository) ListAll(ctx context.Context) ([]domain.ServiceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.ServiceRequest, 0, len(r.requests))
	for _, request := range r.requests {
		result = append(result, request)
	}
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(requests []domain.ServiceRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}

// MemoryProfileRepository is an in-memory ProfileRepository for tests.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

// NewMemoryProfileRepository constructs an empty in-memory store.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]domain.UserProfile)}
}

func (r *MemoryProfileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *MemoryProfileRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &profile, nil
}

func (r *MemoryProfileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	profile.UpdatedAt = time.Now()
	r.profiles[profile.ID] = *profile
	return nil
}
