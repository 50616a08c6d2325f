package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	id, name, description, location, image_url, starts_at,
	total_tickets, available_tickets, ticket_price, organizer_id,
	tags, created_at, updated_at
`

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEventRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// List retrieves events ordered by start date, optionally filtered by
// a case-insensitive search on name and location
func (r *PostgresEventRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	span.SetAttributes(
		attribute.String("search", search),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')
		ORDER BY starts_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, search, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// GetByOrganizer retrieves events created by an organizer
func (r *PostgresEventRepository) GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_organizer")
	defer span.End()

	span.SetAttributes(attribute.String("organizer_id", organizerID))

	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY starts_at ASC
	`

	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get events by organizer: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// Create inserts a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("name", event.Name),
	)

	query := `
		INSERT INTO events (
			id, name, description, location, image_url, starts_at,
			total_tickets, available_tickets, ticket_price, organizer_id,
			tags, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		nullString(event.Description),
		nullString(event.Location),
		nullString(event.ImageURL),
		event.StartsAt,
		event.TotalTickets,
		event.AvailableTickets,
		event.TicketPrice,
		nullString(event.OrganizerID),
		event.Tags,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update updates mutable event fields
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		UPDATE events SET
			name = $2,
			description = $3,
			location = $4,
			image_url = $5,
			starts_at = $6,
			ticket_price = $7,
			tags = $8,
			updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		nullString(event.Description),
		nullString(event.Location),
		nullString(event.ImageURL),
		event.StartsAt,
		event.TicketPrice,
		event.Tags,
		time.Now(),
	)

	if err != nil {
		if isInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// AdjustCapacity atomically changes total and available capacity by delta.
// The event row is locked so the adjustment cannot race a concurrent booking.
func (r *PostgresEventRepository) AdjustCapacity(ctx context.Context, eventID string, delta int) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.adjust_capacity")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("delta", delta),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	event, err := scanEventRow(tx.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	newTotal := event.TotalTickets + delta
	newAvailable := event.AvailableTickets + delta
	if newAvailable < 0 || newTotal < event.IssuedCount() {
		span.SetStatus(codes.Error, "capacity exceeded")
		return nil, domain.ErrCapacityExceeded
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		UPDATE events SET
			total_tickets = $2,
			available_tickets = $3,
			updated_at = $4
		WHERE id = $1
	`, eventID, newTotal, newAvailable, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to adjust capacity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit capacity adjustment: %w", err)
	}

	event.TotalTickets = newTotal
	event.AvailableTickets = newAvailable
	event.UpdatedAt = now

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// scanEventRow scans a single row into an Event struct
func scanEventRow(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		description *string
		location    *string
		imageURL    *string
		organizerID *string
	)

	err := row.Scan(
		&event.ID,
		&event.Name,
		&description,
		&location,
		&imageURL,
		&event.StartsAt,
		&event.TotalTickets,
		&event.AvailableTickets,
		&event.TicketPrice,
		&organizerID,
		&event.Tags,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		event.Description = *description
	}
	if location != nil {
		event.Location = *location
	}
	if imageURL != nil {
		event.ImageURL = *imageURL
	}
	if organizerID != nil {
		event.OrganizerID = *organizerID
	}

	return event, nil
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// isInvalidUUID reports whether Postgres rejected a malformed UUID literal
// (22P02). The id columns are UUID typed, so a garbage identifier (a forged
// or corrupted QR payload) fails the cast before any row lookup; callers
// treat it the same as a missing row.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// Helper function to convert empty string to nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
