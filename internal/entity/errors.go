package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionCompleted     = errors.New("session is already completed")
	ErrSessionFailed        = errors.New("session is in error state")
	ErrSessionNotFinishable = errors.New("session is not ready to be finalized")
	ErrStreamClosed         = errors.New("question stream is closed")

	// Question/answer errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionPending  = errors.New("no question is currently active")

	// Plan errors
	ErrPlanNotFound = errors.New("plan not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
