package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/request-portal/internal/config"
	"github.com/spec-kit/request-portal/internal/domain"
	"github.com/spec-kit/request-portal/internal/events"
	"github.com/spec-kit/request-portal/internal/live"
	"github.com/spec-kit/request-portal/internal/notify"
	"github.com/spec-kit/request-portal/internal/repository"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

type recordingMailer struct {
	sent []notify.RequestEmail
	err  error
}

func (m *recordingMailer) SendNewRequestEmail(to string, email notify.RequestEmail) error {
	m.sent = append(m.sent, email)
	return m.err
}

type engineFixture struct {
	service *RequestService
	repo    *repository.MemoryRequestRepository
	mailer  *recordingMailer
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()
	repo := repository.NewMemoryRequestRepository()
	hub := live.NewHub(func(ctx context.Context, owner *string) ([]domain.ServiceRequest, error) {
		if owner != nil {
			return repo.ListByOwner(ctx, *owner)
		}
		return repo.ListAll(ctx)
	}, nil, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	mailer := &recordingMailer{}
	notifications := NewNotificationService(dispatcher, mailer, zap.NewNop(), config.NotificationConfig{
		AdminEmail: "admin@example.com",
	})
	notifications.RegisterHandlers()

	svc := NewRequestService(RequestDependencies{
		RequestRepo: repo,
		Dispatcher:  dispatcher,
		Hub:         hub,
	})
	return &engineFixture{service: svc, repo: repo, mailer: mailer}
}

var (
	owner = Actor{ID: "U1", Role: domain.RoleUser}
	admin = Actor{ID: "A1", Role: domain.RoleAdmin}
)

func submit(t *testing.T, f *engineFixture, ownerID string) *domain.ServiceRequest {
	t.Helper()
	request, err := f.service.CreateRequest(context.Background(), ownerID, RequestCreateInput{
		Name:    "Asha",
		Email:   "asha@x.com",
		Service: "Resume Review",
		Message: "Please review my resume",
	})
	require.NoError(t, err)
	return request
}

func TestCreateRequest(t *testing.T) {
	f := newEngine(t)

	request := submit(t, f, "U1")

	assert.NotEmpty(t, request.ID)
	assert.Equal(t, domain.RequestStatusSubmitted, request.Status)
	assert.Equal(t, "U1", request.OwnerID)
	assert.False(t, request.CreatedAt.IsZero(), "store must assign created_at")

	second := submit(t, f, "U1")
	assert.True(t, second.CreatedAt.After(request.CreatedAt), "creation times strictly ordered")
}

func TestCreateRequestValidation(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	_, err := f.service.CreateRequest(ctx, "U1", RequestCreateInput{Service: " ", Message: "hello"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.CreateRequest(ctx, "U1", RequestCreateInput{Service: "x", Message: ""})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.CreateRequest(ctx, "", RequestCreateInput{Service: "x", Message: "y"})
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	// validation failures never reach the store
	all, err := f.repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRequestResolvesCatalogKey(t *testing.T) {
	f := newEngine(t)

	request, err := f.service.CreateRequest(context.Background(), "U1", RequestCreateInput{
		Name:    "Asha",
		Email:   "asha@x.com",
		Service: "resume_support",
		Message: "help",
	})
	require.NoError(t, err)
	assert.Equal(t, "Resume & Portfolio Support", request.Service)
}

func TestCreateRequestRoundTrip(t *testing.T) {
	f := newEngine(t)
	phone := "+100200300"

	created, err := f.service.CreateRequest(context.Background(), "U1", RequestCreateInput{
		Name:        "Asha",
		Email:       "asha@x.com",
		PhoneNumber: &phone,
		Service:     "Resume Review",
		Message:     "Please review my resume",
	})
	require.NoError(t, err)

	listed, err := f.service.ListForOwner(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Asha", listed[0].Name)
	assert.Equal(t, "asha@x.com", listed[0].Email)
	assert.Equal(t, &phone, listed[0].PhoneNumber)
	assert.Equal(t, "Resume Review", listed[0].Service)
	assert.Equal(t, "Please review my resume", listed[0].Message)
}

func TestCreateRequestNotifiesAdmin(t *testing.T) {
	f := newEngine(t)

	submit(t, f, "U1")

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Asha", f.mailer.sent[0].Name)
	assert.Equal(t, "Resume Review", f.mailer.sent[0].Service)
}

func TestNotificationFailureDoesNotFailCreation(t *testing.T) {
	f := newEngine(t)
	f.mailer.err = errors.New("smtp down")

	request, err := f.service.CreateRequest(context.Background(), "U1", RequestCreateInput{
		Name:    "Asha",
		Email:   "asha@x.com",
		Service: "Resume Review",
		Message: "Please review my resume",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusSubmitted, request.Status)
}

func TestOwnerCancelSucceedsExactlyOnce(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	request := submit(t, f, "U1")

	cancelled, err := f.service.TransitionStatus(ctx, request.ID, domain.RequestStatusCancelled, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, "U1", *cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.service.TransitionStatus(ctx, request.ID, domain.RequestStatusCancelled, owner)
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestOwnerCannotUseAdminTargets(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	request := submit(t, f, "U1")

	for _, target := range []domain.RequestStatus{
		domain.RequestStatusInProgress,
		domain.RequestStatusWillContact,
		domain.RequestStatusCompleted,
		domain.RequestStatusRejected,
	} {
		_, err := f.service.TransitionStatus(ctx, request.ID, target, owner)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "target %s", target)
	}

	reloaded, err := f.repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusSubmitted, reloaded.Status, "failed transitions must not mutate the store")
}

func TestStrangerCannotTouchRequest(t *testing.T) {
	f := newEngine(t)
	request := submit(t, f, "U1")

	stranger := Actor{ID: "U2", Role: domain.RoleUser}
	_, err := f.service.TransitionStatus(context.Background(), request.ID, domain.RequestStatusCancelled, stranger)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	for _, terminal := range []domain.RequestStatus{
		domain.RequestStatusCompleted,
		domain.RequestStatusRejected,
		domain.RequestStatusCancelled,
	} {
		request := submit(t, f, "U1")
		_, err := f.service.TransitionStatus(ctx, request.ID, terminal, admin)
		require.NoError(t, err)

		for _, target := range domain.AllStatuses {
			_, err := f.service.TransitionStatus(ctx, request.ID, target, admin)
			assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"), "%s -> %s", terminal, target)
		}

		reloaded, err := f.repo.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, terminal, reloaded.Status)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	f := newEngine(t)
	request := submit(t, f, "U1")

	_, err := f.service.TransitionStatus(context.Background(), request.ID, domain.RequestStatus("DONE"), admin)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestTransitionMissingRequest(t *testing.T) {
	f := newEngine(t)

	_, err := f.service.TransitionStatus(context.Background(), "missing", domain.RequestStatusCompleted, admin)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestConcurrentTransitionSurfacesConflict(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	request := submit(t, f, "U1")

	// admin moves the record after the owner's read but before their write
	_, err := f.service.TransitionStatus(ctx, request.ID, domain.RequestStatusInProgress, admin)
	require.NoError(t, err)

	// stale write straight at the repository: the CAS must reject it
	_, err = f.repo.UpdateStatus(ctx, repository.StatusUpdate{
		ID:   request.ID,
		From: domain.RequestStatusSubmitted,
		To:   domain.RequestStatusCancelled,
	})
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
}

func TestListAllRequiresAdmin(t *testing.T) {
	f := newEngine(t)
	submit(t, f, "U1")

	requests, err := f.service.ListAll(context.Background(), owner)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Nil(t, requests, "no partial data on authorization failure")

	requests, err = f.service.ListAll(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestListForOwnerIsScopedAndOrdered(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	first := submit(t, f, "U1")
	submit(t, f, "U2")
	second := submit(t, f, "U1")

	mine, err := f.service.ListForOwner(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestCounts(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	submit(t, f, "U1")
	inProgress := submit(t, f, "U1")
	willContact := submit(t, f, "U2")

	_, err := f.service.TransitionStatus(ctx, inProgress.ID, domain.RequestStatusInProgress, admin)
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, willContact.ID, domain.RequestStatusWillContact, admin)
	require.NoError(t, err)

	counts, err := f.service.Counts(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Total: 3, Pending: 2, InProgress: 1}, counts)

	_, err = f.service.Counts(ctx, owner)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestWatchAllRequiresAdmin(t *testing.T) {
	f := newEngine(t)

	_, err := f.service.WatchAll(context.Background(), owner)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

// Mirrors the end-to-end triage scenario: submit, admin picks it up, the
// owner's live view follows, and a late owner cancel is refused.
func TestLifecycleScenario(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	request := submit(t, f, "U1")
	assert.Equal(t, domain.RequestStatusSubmitted, request.Status)

	ownerSub := f.service.WatchOwner(ctx, "U1")
	defer ownerSub.Unsubscribe()
	adminSub, err := f.service.WatchAll(ctx, admin)
	require.NoError(t, err)
	defer adminSub.Unsubscribe()

	// initial snapshots
	initial := <-ownerSub.Updates()
	require.Len(t, initial, 1)
	assert.Equal(t, domain.RequestStatusSubmitted, initial[0].Status)
	<-adminSub.Updates()

	_, err = f.service.TransitionStatus(ctx, request.ID, domain.RequestStatusInProgress, admin)
	require.NoError(t, err)

	ownerView := <-ownerSub.Updates()
	require.Len(t, ownerView, 1)
	assert.Equal(t, domain.RequestStatusInProgress, ownerView[0].Status)

	adminView := <-adminSub.Updates()
	require.Len(t, adminView, 1)
	assert.Equal(t, domain.RequestStatusInProgress, adminView[0].Status)

	_, err = f.service.TransitionStatus(ctx, request.ID, domain.RequestStatusCancelled, owner)
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"),
		"owner cancel requires the Submitted source state")
}
