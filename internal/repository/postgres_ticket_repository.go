package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/pkg/telemetry"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `
	id, event_id, user_id, event_name, event_date,
	attendee_name, attendee_email, booking_date, validated, validated_at
`

// Reserve atomically issues a ticket against event inventory.
// The event row is locked for the duration of the transaction so two
// concurrent bookings of the last ticket cannot both succeed.
func (r *PostgresTicketRepository) Reserve(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.String("event_id", ticket.EventID),
		attribute.String("user_id", ticket.UserID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		eventName        string
		startsAt         time.Time
		availableTickets int
	)
	err = tx.QueryRow(ctx, `
		SELECT name, starts_at, available_tickets
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, ticket.EventID).Scan(&eventName, &startsAt, &availableTickets)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			span.SetStatus(codes.Error, "event not found")
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock event: %w", err)
	}

	if availableTickets <= 0 {
		span.SetStatus(codes.Error, "sold out")
		return domain.ErrSoldOut
	}

	if !ticket.BookingDate.Before(startsAt) {
		span.SetStatus(codes.Error, "event date passed")
		return domain.ErrEventPassed
	}

	ticket.EventName = eventName
	ticket.EventDate = startsAt

	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (
			id, event_id, user_id, event_name, event_date,
			attendee_name, attendee_email, booking_date, validated, validated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, false, NULL
		)
	`,
		ticket.ID,
		ticket.EventID,
		ticket.UserID,
		ticket.EventName,
		ticket.EventDate,
		ticket.AttendeeName,
		ticket.AttendeeEmail,
		ticket.BookingDate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE events SET
			available_tickets = available_tickets - 1,
			updated_at = $2
		WHERE id = $1
	`, ticket.EventID, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to decrement availability: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a ticket by its ID
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicketRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// GetByUserID retrieves all tickets booked by a user, newest first
func (r *PostgresTicketRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_user_id")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE user_id = $1
		ORDER BY booking_date DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get tickets by user: %w", err)
	}
	defer rows.Close()

	tickets, err := collectTickets(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// GetByEventID retrieves all tickets issued for an event
func (r *PostgresTicketRepository) GetByEventID(ctx context.Context, eventID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_event_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1
		ORDER BY booking_date ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			span.SetStatus(codes.Error, "event not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get tickets by event: %w", err)
	}
	defer rows.Close()

	tickets, err := collectTickets(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// CountByUserAndEvent counts tickets a user holds for an event
func (r *PostgresTicketRepository) CountByUserAndEvent(ctx context.Context, userID, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.count_by_user_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
	)

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets
		WHERE user_id = $1 AND event_id = $2
	`, userID, eventID).Scan(&count)
	if err != nil {
		if isInvalidUUID(err) {
			span.SetStatus(codes.Error, "event not found")
			return 0, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// MarkUsed atomically transitions a ticket from unused to used. The ticket
// row is locked so exactly one of two concurrent scans wins; the loser sees
// the ticket already validated with the winner's timestamp.
func (r *PostgresTicketRepository) MarkUsed(ctx context.Context, ticketID, expectedEventID string, now time.Time) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.mark_used")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 FOR UPDATE`

	ticket, err := scanTicketRow(tx.QueryRow(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}

	if expectedEventID != "" && ticket.EventID != expectedEventID {
		span.SetStatus(codes.Error, "wrong event")
		return ticket, domain.ErrWrongEvent
	}

	if ticket.Validated {
		span.SetStatus(codes.Error, "already used")
		return ticket, domain.ErrTicketAlreadyUsed
	}

	_, err = tx.Exec(ctx, `
		UPDATE tickets SET
			validated = true,
			validated_at = $2
		WHERE id = $1
	`, ticketID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to mark ticket used: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit validation: %w", err)
	}

	ticket.Validated = true
	ticket.ValidatedAt = &now

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// StatsByEvent aggregates booking and validation stats for an event
func (r *PostgresTicketRepository) StatsByEvent(ctx context.Context, eventID string) (*domain.EventStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.stats_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	stats := &domain.EventStats{EventID: eventID}
	var ticketPrice float64

	err := r.pool.QueryRow(ctx, `
		SELECT
			e.available_tickets,
			e.ticket_price,
			COUNT(t.id),
			COUNT(t.id) FILTER (WHERE t.validated)
		FROM events e
		LEFT JOIN tickets t ON t.event_id = e.id
		WHERE e.id = $1
		GROUP BY e.available_tickets, e.ticket_price
	`, eventID).Scan(
		&stats.TotalAvailable,
		&ticketPrice,
		&stats.TotalBooked,
		&stats.ValidatedCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}

	stats.Revenue = float64(stats.TotalBooked) * ticketPrice

	span.SetStatus(codes.Ok, "")
	return stats, nil
}

// scanTicketRow scans a single row into a Ticket struct
func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var validatedAt *time.Time

	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.UserID,
		&ticket.EventName,
		&ticket.EventDate,
		&ticket.AttendeeName,
		&ticket.AttendeeEmail,
		&ticket.BookingDate,
		&ticket.Validated,
		&validatedAt,
	)
	if err != nil {
		return nil, err
	}

	ticket.ValidatedAt = validatedAt
	return ticket, nil
}

func collectTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
