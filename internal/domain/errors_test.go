package domain

import (
	"fmt"
	"testing"
)

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		validation bool
		conflict   bool
		transient  bool
	}{
		{"event not found", ErrEventNotFound, true, false, false, false},
		{"ticket not found", ErrTicketNotFound, true, false, false, false},
		{"sold out", ErrSoldOut, false, false, true, false},
		{"booking limit", ErrBookingLimitReached, false, false, true, false},
		{"already used", ErrTicketAlreadyUsed, false, false, true, false},
		{"capacity exceeded", ErrCapacityExceeded, false, false, true, false},
		{"invalid event id", ErrInvalidEventID, false, true, false, false},
		{"invalid delta", ErrInvalidDelta, false, true, false, false},
		{"storage unavailable", ErrStorageUnavailable, false, false, false, true},
		{"wrapped storage fault", fmt.Errorf("%w: dial tcp: connection refused", ErrStorageUnavailable), false, false, false, true},
		{"event passed is its own category", ErrEventPassed, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.notFound)
			}
			if got := IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.validation)
			}
			if got := IsConflictError(tt.err); got != tt.conflict {
				t.Errorf("IsConflictError() = %v, want %v", got, tt.conflict)
			}
			if got := IsTransientError(tt.err); got != tt.transient {
				t.Errorf("IsTransientError() = %v, want %v", got, tt.transient)
			}
		})
	}
}
