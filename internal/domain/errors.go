package domain

import "errors"

// Domain errors
var (
	// Event errors
	ErrEventNotFound    = errors.New("event not found")
	ErrEventPassed      = errors.New("booking closed, event date has passed")
	ErrSoldOut          = errors.New("event is sold out")
	ErrCapacityExceeded = errors.New("capacity adjustment would drop below issued tickets")

	// Ticket errors
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketAlreadyUsed   = errors.New("ticket has already been used")
	ErrWrongEvent          = errors.New("ticket is not valid for this event")
	ErrBookingLimitReached = errors.New("maximum tickets per user reached for this event")

	// Validation errors
	ErrInvalidUserID   = errors.New("invalid user id")
	ErrInvalidEventID  = errors.New("invalid event id")
	ErrInvalidTicketID = errors.New("invalid ticket id")
	ErrInvalidDelta    = errors.New("capacity delta must not be zero")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("storage temporarily unavailable")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidTicketID) ||
		errors.Is(err, ErrInvalidDelta)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSoldOut) ||
		errors.Is(err, ErrBookingLimitReached) ||
		errors.Is(err, ErrTicketAlreadyUsed) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsTransientError checks if the error is a retryable infrastructure fault
func IsTransientError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
