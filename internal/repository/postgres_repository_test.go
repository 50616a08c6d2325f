package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/migrations"
	"github.com/Anas63666/Event-ticketing-system/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupTestDB(t *testing.T) *database.PostgresDB {
	ctx := context.Background()

	cfg := &database.PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            5432,
		User:            getEnv("POSTGRES_USER", "postgres"),
		Password:        getEnv("POSTGRES_PASSWORD", ""),
		Database:        getEnv("POSTGRES_DB", "ticketing_test"),
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	}

	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return db
}

// seedEvent inserts an event and registers cleanup of the event and its tickets
func seedEvent(t *testing.T, db *database.PostgresDB, capacity int, startsAt time.Time) *domain.Event {
	ctx := context.Background()
	now := time.Now()

	event := &domain.Event{
		ID:               uuid.New().String(),
		Name:             "Integration Test Concert",
		Location:         "Test Arena",
		StartsAt:         startsAt,
		TotalTickets:     capacity,
		AvailableTickets: capacity,
		TicketPrice:      50.00,
		OrganizerID:      "test-organizer",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	repo := NewPostgresEventRepository(db.Pool())
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}

	t.Cleanup(func() {
		db.Pool().Exec(ctx, "DELETE FROM tickets WHERE event_id = $1", event.ID)
		db.Pool().Exec(ctx, "DELETE FROM events WHERE id = $1", event.ID)
	})

	return event
}

func newTestTicket(eventID, userID string) *domain.Ticket {
	return &domain.Ticket{
		ID:            uuid.New().String(),
		EventID:       eventID,
		UserID:        userID,
		AttendeeName:  "Alice Tester",
		AttendeeEmail: "alice@example.com",
		BookingDate:   time.Now(),
	}
}

// A scanned id that is not a UUID fails the cast in Postgres (22P02)
// before any row lookup; that is a missing ticket, not a storage fault.
func TestIsInvalidUUID(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"uuid cast failure", &pgconn.PgError{Code: "22P02"}, true},
		{"wrapped cast failure", fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInvalidUUID(tt.err); got != tt.want {
				t.Errorf("isInvalidUUID(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPostgresTicketRepository_Reserve(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 5, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	ticket := newTestTicket(event.ID, "test-user-1")
	if err := repo.Reserve(ctx, ticket); err != nil {
		t.Fatalf("Reserve() failed: %v", err)
	}

	if ticket.EventName != event.Name {
		t.Errorf("EventName snapshot = %q, want %q", ticket.EventName, event.Name)
	}

	found, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.Validated {
		t.Error("freshly issued ticket must not be validated")
	}

	eventRepo := NewPostgresEventRepository(db.Pool())
	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID(event) failed: %v", err)
	}
	if updated.AvailableTickets != 4 {
		t.Errorf("available = %d, want 4", updated.AvailableTickets)
	}
}

func TestPostgresTicketRepository_Reserve_SoldOut(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 1, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	if err := repo.Reserve(ctx, newTestTicket(event.ID, "test-user-1")); err != nil {
		t.Fatalf("first Reserve() failed: %v", err)
	}

	err := repo.Reserve(ctx, newTestTicket(event.ID, "test-user-2"))
	if !errors.Is(err, domain.ErrSoldOut) {
		t.Errorf("Reserve() error = %v, want ErrSoldOut", err)
	}
}

func TestPostgresTicketRepository_Reserve_EventPassed(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 5, time.Now().Add(-time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())

	err := repo.Reserve(context.Background(), newTestTicket(event.ID, "test-user-1"))
	if !errors.Is(err, domain.ErrEventPassed) {
		t.Errorf("Reserve() error = %v, want ErrEventPassed", err)
	}
}

func TestPostgresTicketRepository_Reserve_EventNotFound(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	repo := NewPostgresTicketRepository(db.Pool())

	err := repo.Reserve(context.Background(), newTestTicket(uuid.New().String(), "test-user-1"))
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("Reserve() error = %v, want ErrEventNotFound", err)
	}
}

// The core inventory invariant: N concurrent bookings against a capacity of
// C admit exactly C tickets and never drive availability negative.
func TestPostgresTicketRepository_Reserve_ConcurrentNoOversell(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	const capacity = 10
	const attempts = 50

	event := seedEvent(t, db, capacity, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.Reserve(ctx, newTestTicket(event.ID, uuid.New().String()))
		}(i)
	}
	wg.Wait()

	issued := 0
	for _, err := range results {
		switch {
		case err == nil:
			issued++
		case errors.Is(err, domain.ErrSoldOut):
		default:
			t.Errorf("unexpected Reserve() error: %v", err)
		}
	}
	if issued != capacity {
		t.Errorf("issued %d tickets, want exactly %d", issued, capacity)
	}

	eventRepo := NewPostgresEventRepository(db.Pool())
	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID(event) failed: %v", err)
	}
	if updated.AvailableTickets != 0 {
		t.Errorf("available = %d, want 0", updated.AvailableTickets)
	}

	tickets, err := repo.GetByEventID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByEventID() failed: %v", err)
	}
	if len(tickets) != capacity {
		t.Errorf("%d ticket rows, want %d", len(tickets), capacity)
	}
}

func TestPostgresRepositories_MalformedIDsAreNotFound(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	ticketRepo := NewPostgresTicketRepository(db.Pool())
	eventRepo := NewPostgresEventRepository(db.Pool())
	ctx := context.Background()

	if _, err := ticketRepo.GetByID(ctx, "unknown-id"); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("GetByID(unknown-id) error = %v, want ErrTicketNotFound", err)
	}
	if _, err := ticketRepo.MarkUsed(ctx, "unknown-id", "", time.Now()); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("MarkUsed(unknown-id) error = %v, want ErrTicketNotFound", err)
	}
	if _, err := eventRepo.GetByID(ctx, "unknown-id"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("GetByID(event unknown-id) error = %v, want ErrEventNotFound", err)
	}
	if err := ticketRepo.Reserve(ctx, newTestTicket("unknown-id", "test-user-1")); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("Reserve(event unknown-id) error = %v, want ErrEventNotFound", err)
	}
	if _, err := ticketRepo.CountByUserAndEvent(ctx, "test-user-1", "unknown-id"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("CountByUserAndEvent(unknown-id) error = %v, want ErrEventNotFound", err)
	}
	if _, err := ticketRepo.StatsByEvent(ctx, "unknown-id"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("StatsByEvent(unknown-id) error = %v, want ErrEventNotFound", err)
	}
	if _, err := eventRepo.AdjustCapacity(ctx, "unknown-id", 5); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("AdjustCapacity(unknown-id) error = %v, want ErrEventNotFound", err)
	}

	// A well-formed but unknown UUID behaves identically
	if _, err := ticketRepo.GetByID(ctx, uuid.New().String()); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("GetByID(random uuid) error = %v, want ErrTicketNotFound", err)
	}
}

func TestPostgresTicketRepository_CountByUserAndEvent(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 5, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.Reserve(ctx, newTestTicket(event.ID, "test-user-1")); err != nil {
			t.Fatalf("Reserve() failed: %v", err)
		}
	}
	if err := repo.Reserve(ctx, newTestTicket(event.ID, "test-user-2")); err != nil {
		t.Fatalf("Reserve() failed: %v", err)
	}

	count, err := repo.CountByUserAndEvent(ctx, "test-user-1", event.ID)
	if err != nil {
		t.Fatalf("CountByUserAndEvent() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestPostgresTicketRepository_MarkUsed(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 5, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	ticket := newTestTicket(event.ID, "test-user-1")
	if err := repo.Reserve(ctx, ticket); err != nil {
		t.Fatalf("Reserve() failed: %v", err)
	}

	firstScan := time.Now()
	used, err := repo.MarkUsed(ctx, ticket.ID, "", firstScan)
	if err != nil {
		t.Fatalf("MarkUsed() failed: %v", err)
	}
	if !used.Validated || used.ValidatedAt == nil {
		t.Fatal("MarkUsed() did not mark the ticket validated")
	}

	// Second scan must be rejected and report the first scan's timestamp
	again, err := repo.MarkUsed(ctx, ticket.ID, "", time.Now())
	if !errors.Is(err, domain.ErrTicketAlreadyUsed) {
		t.Fatalf("second MarkUsed() error = %v, want ErrTicketAlreadyUsed", err)
	}
	if again == nil || again.ValidatedAt == nil {
		t.Fatal("rejected scan must still return the ticket")
	}
	if again.ValidatedAt.Sub(firstScan).Abs() > time.Second {
		t.Errorf("ValidatedAt = %v, want the first scan's %v", again.ValidatedAt, firstScan)
	}
}

func TestPostgresTicketRepository_MarkUsed_WrongEvent(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 5, time.Now().Add(24*time.Hour))
	other := seedEvent(t, db, 5, time.Now().Add(48*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	ticket := newTestTicket(event.ID, "test-user-1")
	if err := repo.Reserve(ctx, ticket); err != nil {
		t.Fatalf("Reserve() failed: %v", err)
	}

	_, err := repo.MarkUsed(ctx, ticket.ID, other.ID, time.Now())
	if !errors.Is(err, domain.ErrWrongEvent) {
		t.Fatalf("MarkUsed() error = %v, want ErrWrongEvent", err)
	}

	// Rejection must not consume the ticket
	found, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.Validated {
		t.Error("wrong-event rejection must leave the ticket unused")
	}
}

func TestPostgresTicketRepository_MarkUsed_ConcurrentSingleWinner(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 5, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	ticket := newTestTicket(event.ID, "test-user-1")
	if err := repo.Reserve(ctx, ticket); err != nil {
		t.Fatalf("Reserve() failed: %v", err)
	}

	const scans = 8
	var wg sync.WaitGroup
	results := make([]error, scans)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = repo.MarkUsed(ctx, ticket.ID, "", time.Now())
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domain.ErrTicketAlreadyUsed):
		default:
			t.Errorf("unexpected MarkUsed() error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("%d scans won, want exactly 1", winners)
	}
}

func TestPostgresEventRepository_AdjustCapacity(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 10, time.Now().Add(24*time.Hour))
	eventRepo := NewPostgresEventRepository(db.Pool())
	ticketRepo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	// Issue 3 tickets, then try to shrink below the issued count
	for i := 0; i < 3; i++ {
		if err := ticketRepo.Reserve(ctx, newTestTicket(event.ID, uuid.New().String())); err != nil {
			t.Fatalf("Reserve() failed: %v", err)
		}
	}

	updated, err := eventRepo.AdjustCapacity(ctx, event.ID, 5)
	if err != nil {
		t.Fatalf("AdjustCapacity(+5) failed: %v", err)
	}
	if updated.TotalTickets != 15 || updated.AvailableTickets != 12 {
		t.Errorf("after +5: total=%d available=%d, want 15/12", updated.TotalTickets, updated.AvailableTickets)
	}

	_, err = eventRepo.AdjustCapacity(ctx, event.ID, -13)
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Errorf("AdjustCapacity(-13) error = %v, want ErrCapacityExceeded", err)
	}
}

func TestPostgresTicketRepository_StatsByEvent(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	event := seedEvent(t, db, 10, time.Now().Add(24*time.Hour))
	repo := NewPostgresTicketRepository(db.Pool())
	ctx := context.Background()

	var tickets []*domain.Ticket
	for i := 0; i < 4; i++ {
		ticket := newTestTicket(event.ID, uuid.New().String())
		if err := repo.Reserve(ctx, ticket); err != nil {
			t.Fatalf("Reserve() failed: %v", err)
		}
		tickets = append(tickets, ticket)
	}
	if _, err := repo.MarkUsed(ctx, tickets[0].ID, "", time.Now()); err != nil {
		t.Fatalf("MarkUsed() failed: %v", err)
	}

	stats, err := repo.StatsByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("StatsByEvent() failed: %v", err)
	}
	if stats.TotalBooked != 4 {
		t.Errorf("TotalBooked = %d, want 4", stats.TotalBooked)
	}
	if stats.TotalAvailable != 6 {
		t.Errorf("TotalAvailable = %d, want 6", stats.TotalAvailable)
	}
	if stats.ValidatedCount != 1 {
		t.Errorf("ValidatedCount = %d, want 1", stats.ValidatedCount)
	}
	if stats.Revenue != 200.00 {
		t.Errorf("Revenue = %.2f, want 200.00", stats.Revenue)
	}
}
