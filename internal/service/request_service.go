package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-portal/internal/domain"
	"github.com/spec-kit/request-portal/internal/events"
	"github.com/spec-kit/request-portal/internal/live"
	"github.com/spec-kit/request-portal/internal/repository"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// Actor identifies the caller of a lifecycle operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// IsAdmin reports whether the actor holds the administrator role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// RequestService is the request lifecycle engine: it owns the transition
// table and is the only path through which a request status changes.
type RequestService struct {
	requests   repository.RequestRepository
	dispatcher events.Dispatcher
	hub        *live.Hub
}

// RequestDependencies bundles collaborators for the lifecycle engine.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Dispatcher  events.Dispatcher
	Hub         *live.Hub
}

// RequestCreateInput describes a request submission.
type RequestCreateInput struct {
	Name        string
	Email       string
	PhoneNumber *string
	Service     string
	Message     string
}

// NewRequestService constructs the engine.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
		hub:        deps.Hub,
	}
}

// CreateRequest validates and persists a new request in the Submitted
// state. The store assigns id and timestamps. Notification dispatch is
// best-effort and never fails the creation.
func (s *RequestService) CreateRequest(ctx context.Context, ownerID string, input RequestCreateInput) (*domain.ServiceRequest, error) {
	if ownerID == "" {
		return nil, apperrors.NewUnauthorized("owner identity required")
	}
	service := strings.TrimSpace(input.Service)
	message := strings.TrimSpace(input.Message)
	if service == "" || message == "" {
		return nil, apperrors.NewValidationError("service and message required", nil)
	}
	// catalog keys are stored as their display title; anything else passes
	// through as free text
	if offering, ok := domain.LookupOffering(service); ok {
		service = offering.Title
	}

	request := &domain.ServiceRequest{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		PhoneNumber: input.PhoneNumber,
		Service:     service,
		Message:     message,
		Status:      domain.RequestStatusSubmitted,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		OwnerID:   request.OwnerID,
		Actor:     events.Actor{Role: domain.RoleUser, IdentityID: ownerID},
		Payload: events.RequestCreatedPayload{
			Name:        request.Name,
			Email:       request.Email,
			PhoneNumber: request.PhoneNumber,
			Service:     request.Service,
			Message:     request.Message,
			CreatedAt:   request.CreatedAt,
		},
	})
	s.broadcast(ctx)
	return request, nil
}

// TransitionStatus moves a request to target on behalf of actor, enforcing
// the role-aware transition table. The write compares against the loaded
// status at the store, so a racing transition surfaces as a conflict
// instead of silently overwriting.
func (s *RequestService) TransitionStatus(ctx context.Context, requestID string, target domain.RequestStatus, actor Actor) (*domain.ServiceRequest, error) {
	if !target.IsValid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(target)})
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, err
	}

	if err := authorizeTransition(request, target, actor); err != nil {
		return nil, err
	}

	update := repository.StatusUpdate{
		ID:   request.ID,
		From: request.Status,
		To:   target,
	}
	if target == domain.RequestStatusCancelled {
		actorID := actor.ID
		update.CancelledBy = &actorID
	}

	updated, err := s.requests.UpdateStatus(ctx, update)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.NewConflict("request was modified concurrently", map[string]any{"id": request.ID})
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: updated.ID,
		OwnerID:   updated.OwnerID,
		Actor:     events.Actor{Role: actor.Role, IdentityID: actor.ID},
		Payload: events.RequestStatusChangedPayload{
			OldStatus: request.Status,
			NewStatus: updated.Status,
		},
	})
	s.broadcast(ctx)
	return updated, nil
}

func authorizeTransition(request *domain.ServiceRequest, target domain.RequestStatus, actor Actor) error {
	if actor.IsAdmin() {
		if !domain.CanAdminTransition(request.Status, target) {
			return apperrors.NewInvalidTransition("status transition not allowed", map[string]any{
				"from": string(request.Status),
				"to":   string(target),
			})
		}
		return nil
	}
	if actor.ID != request.OwnerID {
		return apperrors.NewAuthorizationError("not permitted to modify this request")
	}
	if target != domain.RequestStatusCancelled {
		return apperrors.NewAuthorizationError("owners may only cancel their requests")
	}
	if !domain.CanOwnerTransition(request.Status, target) {
		return apperrors.NewInvalidTransition("only submitted requests can be cancelled", map[string]any{
			"from": string(request.Status),
		})
	}
	return nil
}

// ListForOwner returns the owner's requests, newest first.
func (s *RequestService) ListForOwner(ctx context.Context, ownerID string) ([]domain.ServiceRequest, error) {
	return s.requests.ListByOwner(ctx, ownerID)
}

// ListAll returns every request, newest first. Administrator only.
func (s *RequestService) ListAll(ctx context.Context, actor Actor) ([]domain.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("administrator role required")
	}
	return s.requests.ListAll(ctx)
}

// Counts buckets every request for the admin dashboard summary.
func (s *RequestService) Counts(ctx context.Context, actor Actor) (domain.StatusCounts, error) {
	requests, err := s.ListAll(ctx, actor)
	if err != nil {
		return domain.StatusCounts{}, err
	}
	return domain.DeriveCounts(requests), nil
}

// WatchOwner opens a live subscription scoped to the owner's requests.
func (s *RequestService) WatchOwner(ctx context.Context, ownerID string) *live.Subscription {
	owner := ownerID
	return s.hub.Subscribe(ctx, &owner)
}

// WatchAll opens a live subscription over every request. Administrator only.
func (s *RequestService) WatchAll(ctx context.Context, actor Actor) (*live.Subscription, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("administrator role required")
	}
	return s.hub.Subscribe(ctx, nil), nil
}

func (s *RequestService) broadcast(ctx context.Context) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(ctx)
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
