package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusSubmitted   RequestStatus = "SUBMITTED"
	RequestStatusWillContact RequestStatus = "WILL_CONTACT"
	RequestStatusInProgress  RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted   RequestStatus = "COMPLETED"
	RequestStatusRejected    RequestStatus = "REJECTED"
	RequestStatusCancelled   RequestStatus = "CANCELLED"
)

// AllStatuses lists every valid status value.
var AllStatuses = []RequestStatus{
	RequestStatusSubmitted,
	RequestStatusWillContact,
	RequestStatusInProgress,
	RequestStatusCompleted,
	RequestStatusRejected,
	RequestStatusCancelled,
}

// IsValid reports whether the status is a known enum value.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range AllStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled:
		return true
	}
	return false
}

// ServiceRequest is the aggregate for submitted service requests.
type ServiceRequest struct {
	ID          string
	OwnerID     string
	Name        string
	Email       string
	PhoneNumber *string
	Service     string
	Message     string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledBy *string
	CancelledAt *time.Time
}

// adminTransitions maps each source status to the targets an administrator
// may move it to. Terminal sources have no entries.
var adminTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusSubmitted:   {RequestStatusWillContact, RequestStatusInProgress, RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled},
	RequestStatusWillContact: {RequestStatusInProgress, RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled},
	RequestStatusInProgress:  {RequestStatusWillContact, RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled},
	RequestStatusCompleted:   {},
	RequestStatusRejected:    {},
	RequestStatusCancelled:   {},
}

// CanAdminTransition reports whether an administrator may move a request
// from current to next.
func CanAdminTransition(current, next RequestStatus) bool {
	for _, candidate := range adminTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanOwnerTransition reports whether the owner may move a request from
// current to next. The only owner edge is Submitted -> Cancelled.
func CanOwnerTransition(current, next RequestStatus) bool {
	return current == RequestStatusSubmitted && next == RequestStatusCancelled
}

// StatusCounts buckets a set of requests for dashboard summaries. Pending
// merges Submitted and WillContact; the distinction is kept on the record
// itself.
type StatusCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Rejected   int `json:"rejected"`
	Cancelled  int `json:"cancelled"`
}

// DeriveCounts buckets requests by status.
func DeriveCounts(requests []ServiceRequest) StatusCounts {
	counts := StatusCounts{Total: len(requests)}
	for _, req := range requests {
		switch req.Status {
		case RequestStatusSubmitted, RequestStatusWillContact:
			counts.Pending++
		case RequestStatusInProgress:
			counts.InProgress++
		case RequestStatusCompleted:
			counts.Completed++
		case RequestStatusRejected:
			counts.Rejected++
		case RequestStatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}
