package repository

import (
	"context"
	"time"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
)

// EventRepository defines event catalog data access
type EventRepository interface {
	// GetByID retrieves an event by its ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// List retrieves events, optionally filtered by a search term,
	// ordered by start date ascending
	List(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error)

	// GetByOrganizer retrieves events created by an organizer
	GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error)

	// Create inserts a new event
	Create(ctx context.Context, event *domain.Event) error

	// Update updates mutable event fields
	Update(ctx context.Context, event *domain.Event) error

	// AdjustCapacity atomically changes total and available capacity by delta.
	// Fails when the reduction would drop available below zero.
	AdjustCapacity(ctx context.Context, eventID string, delta int) (*domain.Event, error)
}

// TicketRepository defines ticket inventory data access
type TicketRepository interface {
	// Reserve atomically issues a ticket: it locks the event row, verifies
	// the event exists, has availability, and has not started, then inserts
	// the ticket and decrements available capacity in one transaction.
	// The ticket's EventName and EventDate are filled from the event row.
	Reserve(ctx context.Context, ticket *domain.Ticket) error

	// GetByID retrieves a ticket by its ID
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)

	// GetByUserID retrieves all tickets booked by a user
	GetByUserID(ctx context.Context, userID string) ([]*domain.Ticket, error)

	// GetByEventID retrieves all tickets issued for an event
	GetByEventID(ctx context.Context, eventID string) ([]*domain.Ticket, error)

	// CountByUserAndEvent counts tickets a user holds for an event
	CountByUserAndEvent(ctx context.Context, userID, eventID string) (int, error)

	// MarkUsed atomically transitions a ticket from unused to used.
	// Returns the ticket with its original validation timestamp and
	// domain.ErrTicketAlreadyUsed when the ticket was already consumed.
	// When expectedEventID is non-empty and does not match the ticket,
	// returns domain.ErrWrongEvent.
	MarkUsed(ctx context.Context, ticketID, expectedEventID string, now time.Time) (*domain.Ticket, error)

	// StatsByEvent aggregates booking and validation stats for an event
	StatsByEvent(ctx context.Context, eventID string) (*domain.EventStats, error)
}
