// Package live implements the push side of the request read contract: a
// subscription re-delivers the full, reordered result set for its scope on
// every committed change, until explicitly disposed.
package live

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/request-portal/internal/domain"
)

const changeChannel = "requests:changed"

// Loader fetches the current result set for a scope. A nil owner selects
// every record.
type Loader func(ctx context.Context, owner *string) ([]domain.ServiceRequest, error)

// Subscription is a live query handle. Consumers read Updates until they
// call Unsubscribe; Unsubscribe is idempotent and closes both channels.
type Subscription struct {
	id      string
	owner   *string
	hub     *Hub
	updates chan []domain.ServiceRequest
	errs    chan error

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// Updates streams full result-set snapshots, newest change last. Delivery
// coalesces: a slow consumer observes the latest snapshot rather than every
// intermediate one.
func (s *Subscription) Updates() <-chan []domain.ServiceRequest {
	return s.updates
}

// Errs streams load failures without terminating the subscription.
func (s *Subscription) Errs() <-chan error {
	return s.errs
}

// Unsubscribe detaches the subscription. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		s.mu.Lock()
		s.closed = true
		close(s.updates)
		close(s.errs)
		s.mu.Unlock()
	})
}

func (s *Subscription) push(snapshot []domain.ServiceRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.updates <- snapshot:
			return
		default:
			// drop the stale snapshot so the latest one always lands
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func (s *Subscription) pushErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.errs <- err:
	default:
	}
}

// Hub fans committed changes out to live subscriptions. Each mutation
// triggers a scoped re-query per subscriber; a Redis signal carries the
// change notice to other instances.
type Hub struct {
	loader     Loader
	redis      *redis.Client
	logger     *zap.Logger
	instanceID string

	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewHub constructs a hub. redisClient may be nil for single-instance and
// test deployments; fan-out then stays in-process.
func NewHub(loader Loader, redisClient *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		loader:     loader,
		redis:      redisClient,
		logger:     logger,
		instanceID: uuid.NewString(),
		subs:       make(map[string]*Subscription),
	}
}

// Subscribe registers a live query scoped to owner (nil for all records)
// and delivers the initial snapshot before returning.
func (h *Hub) Subscribe(ctx context.Context, owner *string) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		owner:   owner,
		hub:     h,
		updates: make(chan []domain.ServiceRequest, 1),
		errs:    make(chan error, 1),
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	h.refresh(ctx, sub)
	return sub
}

// Broadcast refreshes local subscribers and signals other instances. Called
// by the lifecycle engine after every committed mutation.
func (h *Hub) Broadcast(ctx context.Context) {
	h.refreshAll(ctx)
	if h.redis == nil {
		return
	}
	if err := h.redis.Publish(ctx, changeChannel, h.instanceID).Err(); err != nil {
		h.logger.Warn("live fan-out publish failed", zap.Error(err))
	}
}

// Run listens for change signals from other instances until ctx ends. No-op
// without a Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		<-ctx.Done()
		return
	}
	pubsub := h.redis.Subscribe(ctx, changeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload == h.instanceID {
				continue
			}
			h.refreshAll(ctx)
		}
	}
}

func (h *Hub) refreshAll(ctx context.Context) {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.refresh(ctx, sub)
	}
}

func (h *Hub) refresh(ctx context.Context, sub *Subscription) {
	snapshot, err := h.loader(ctx, sub.owner)
	if err != nil {
		h.logger.Warn("live query refresh failed", zap.Error(err))
		sub.pushErr(err)
		return
	}
	sub.push(snapshot)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}
