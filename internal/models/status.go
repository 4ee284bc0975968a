package models

// RequestStatus is the state of a TutorRequest.
type RequestStatus string

const (
	// RequestPending is the initial state of every request.
	RequestPending RequestStatus = "pending"
	// RequestAccepted is terminal; a session exists for the request.
	RequestAccepted RequestStatus = "accepted"
	// RequestDeclined is terminal and does not block a new request for the same pair.
	RequestDeclined RequestStatus = "declined"
)

// Active reports whether the request still occupies its (student, tutor) pair.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestAccepted
}

// CanTransitionTo reports whether a request may move from s to next.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestPending && (next == RequestAccepted || next == RequestDeclined)
}

// SessionStatus is the state of a Session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// CanTransitionTo reports whether a session may move from s to next.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	return s == SessionScheduled && (next == SessionCompleted || next == SessionCancelled)
}
