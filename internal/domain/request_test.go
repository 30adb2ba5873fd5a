package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValidity(t *testing.T) {
	for _, status := range AllStatuses {
		assert.True(t, status.IsValid(), "expected %s to be valid", status)
	}
	assert.False(t, RequestStatus("PENDING").IsValid())
	assert.False(t, RequestStatus("").IsValid())
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[RequestStatus]bool{
		RequestStatusCompleted: true,
		RequestStatusRejected:  true,
		RequestStatusCancelled: true,
	}
	for _, status := range AllStatuses {
		assert.Equal(t, terminal[status], status.IsTerminal(), "status %s", status)
	}
}

func TestAdminTransitions(t *testing.T) {
	// no edge out of a terminal state, for any target
	for _, from := range []RequestStatus{RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled} {
		for _, to := range AllStatuses {
			assert.False(t, CanAdminTransition(from, to), "%s -> %s", from, to)
		}
	}

	// every non-terminal source reaches every terminal target
	for _, from := range []RequestStatus{RequestStatusSubmitted, RequestStatusWillContact, RequestStatusInProgress} {
		for _, to := range []RequestStatus{RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled} {
			assert.True(t, CanAdminTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.True(t, CanAdminTransition(RequestStatusSubmitted, RequestStatusWillContact))
	assert.True(t, CanAdminTransition(RequestStatusSubmitted, RequestStatusInProgress))
	assert.True(t, CanAdminTransition(RequestStatusWillContact, RequestStatusInProgress))
	assert.True(t, CanAdminTransition(RequestStatusInProgress, RequestStatusWillContact))
	assert.False(t, CanAdminTransition(RequestStatusSubmitted, RequestStatusSubmitted))
}

func TestOwnerTransitions(t *testing.T) {
	assert.True(t, CanOwnerTransition(RequestStatusSubmitted, RequestStatusCancelled))

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if from == RequestStatusSubmitted && to == RequestStatusCancelled {
				continue
			}
			assert.False(t, CanOwnerTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestDeriveCounts(t *testing.T) {
	requests := []ServiceRequest{
		{Status: RequestStatusSubmitted},
		{Status: RequestStatusSubmitted},
		{Status: RequestStatusWillContact},
		{Status: RequestStatusInProgress},
		{Status: RequestStatusCompleted},
		{Status: RequestStatusCompleted},
		{Status: RequestStatusRejected},
		{Status: RequestStatusCancelled},
	}

	counts := DeriveCounts(requests)

	assert.Equal(t, 8, counts.Total)
	assert.Equal(t, 3, counts.Pending, "pending merges submitted and will-contact")
	assert.Equal(t, 1, counts.InProgress)
	assert.Equal(t, 2, counts.Completed)
	assert.Equal(t, 1, counts.Rejected)
	assert.Equal(t, 1, counts.Cancelled)

	// every record lands in exactly one bucket
	bucketed := counts.Pending + counts.InProgress + counts.Completed + counts.Rejected + counts.Cancelled
	assert.Equal(t, counts.Total, bucketed)
}

func TestDeriveCountsEmpty(t *testing.T) {
	assert.Equal(t, StatusCounts{}, DeriveCounts(nil))
}

func TestLookupOffering(t *testing.T) {
	offering, ok := LookupOffering("resume_support")
	assert.True(t, ok)
	assert.Equal(t, "Resume & Portfolio Support", offering.Title)

	_, ok = LookupOffering("unknown")
	assert.False(t, ok)
}
