package live

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/request-portal/internal/domain"
)

type fakeStore struct {
	requests []domain.ServiceRequest
	err      error
}

func (s *fakeStore) load(ctx context.Context, owner *string) ([]domain.ServiceRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	if owner == nil {
		return s.requests, nil
	}
	var scoped []domain.ServiceRequest
	for _, request := range s.requests {
		if request.OwnerID == *owner {
			scoped = append(scoped, request)
		}
	}
	return scoped, nil
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	store := &fakeStore{requests: []domain.ServiceRequest{
		{ID: "r1", OwnerID: "U1"},
		{ID: "r2", OwnerID: "U2"},
	}}
	hub := NewHub(store.load, nil, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Unsubscribe()

	snapshot := <-sub.Updates()
	assert.Len(t, snapshot, 2)
}

func TestSubscribeScopesToOwner(t *testing.T) {
	store := &fakeStore{requests: []domain.ServiceRequest{
		{ID: "r1", OwnerID: "U1"},
		{ID: "r2", OwnerID: "U2"},
	}}
	hub := NewHub(store.load, nil, zap.NewNop())

	ownerID := "U1"
	sub := hub.Subscribe(context.Background(), &ownerID)
	defer sub.Unsubscribe()

	snapshot := <-sub.Updates()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "r1", snapshot[0].ID)
}

func TestBroadcastRedeliversFullResultSet(t *testing.T) {
	store := &fakeStore{requests: []domain.ServiceRequest{{ID: "r1", OwnerID: "U1"}}}
	hub := NewHub(store.load, nil, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Unsubscribe()
	<-sub.Updates()

	store.requests = append(store.requests, domain.ServiceRequest{ID: "r2", OwnerID: "U1"})
	hub.Broadcast(context.Background())

	snapshot := <-sub.Updates()
	assert.Len(t, snapshot, 2)
}

func TestSlowConsumerSeesLatestSnapshot(t *testing.T) {
	store := &fakeStore{requests: []domain.ServiceRequest{{ID: "r1", OwnerID: "U1"}}}
	hub := NewHub(store.load, nil, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Unsubscribe()

	// two broadcasts without a read in between: only the newest snapshot
	// remains buffered
	store.requests = append(store.requests, domain.ServiceRequest{ID: "r2", OwnerID: "U1"})
	hub.Broadcast(context.Background())
	store.requests = append(store.requests, domain.ServiceRequest{ID: "r3", OwnerID: "U1"})
	hub.Broadcast(context.Background())

	snapshot := <-sub.Updates()
	assert.Len(t, snapshot, 3)
}

func TestLoaderErrorsSurfaceOnErrChannel(t *testing.T) {
	store := &fakeStore{err: errors.New("store offline")}
	hub := NewHub(store.load, nil, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Unsubscribe()

	err := <-sub.Errs()
	assert.EqualError(t, err, "store offline")
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	hub := NewHub(store.load, nil, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	<-sub.Updates()
	sub.Unsubscribe()
	assert.NotPanics(t, sub.Unsubscribe)

	_, open := <-sub.Updates()
	assert.False(t, open, "updates channel closed after unsubscribe")

	// detached subscribers are skipped on later broadcasts
	assert.NotPanics(t, func() { hub.Broadcast(context.Background()) })
}
