package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/pkg/redis"
)

// countingEventRepository wraps an in-memory event set and counts reads so
// tests can tell a cache hit from a pass-through.
type countingEventRepository struct {
	events       map[string]*domain.Event
	getByIDCalls int
	listCalls    int
}

func newCountingEventRepository() *countingEventRepository {
	return &countingEventRepository{events: make(map[string]*domain.Event)}
}

func (r *countingEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.getByIDCalls++
	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *countingEventRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error) {
	r.listCalls++
	out := make([]*domain.Event, 0, len(r.events))
	for _, event := range r.events {
		copied := *event
		out = append(out, &copied)
	}
	return out, nil
}

func (r *countingEventRepository) GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	return nil, nil
}

func (r *countingEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.events[event.ID] = event
	return nil
}

func (r *countingEventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.events[event.ID] = event
	return nil
}

func (r *countingEventRepository) AdjustCapacity(ctx context.Context, eventID string, delta int) (*domain.Event, error) {
	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	event.TotalTickets += delta
	event.AvailableTickets += delta
	copied := *event
	return &copied, nil
}

func setupTestRedis(t *testing.T) *redis.Client {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	ctx := context.Background()
	client, err := redis.NewClient(ctx, &redis.Config{
		Host:          getEnv("REDIS_HOST", "localhost"),
		Port:          6379,
		Password:      os.Getenv("REDIS_PASSWORD"),
		DB:            1,
		PoolSize:      10,
		MinIdleConns:  1,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		t.Skipf("Skipping integration test, Redis not available: %v", err)
	}

	return client
}

func testEvent(name string) *domain.Event {
	now := time.Now()
	return &domain.Event{
		ID:               uuid.New().String(),
		Name:             name,
		StartsAt:         now.Add(24 * time.Hour),
		TotalTickets:     100,
		AvailableTickets: 100,
		TicketPrice:      25.00,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestCachedEventRepository_GetByID_ServesFromCache(t *testing.T) {
	redisClient := setupTestRedis(t)
	defer redisClient.Close()

	inner := newCountingEventRepository()
	cached := NewCachedEventRepository(inner, redisClient)
	ctx := context.Background()

	event := testEvent("Cached Concert")
	if err := cached.Create(ctx, event); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	defer redisClient.Del(ctx, eventDetailKeyPrefix+event.ID)

	if _, err := cached.GetByID(ctx, event.ID); err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if inner.getByIDCalls != 1 {
		t.Fatalf("first read: %d store reads, want 1", inner.getByIDCalls)
	}

	found, err := cached.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if inner.getByIDCalls != 1 {
		t.Errorf("second read: %d store reads, want cache hit", inner.getByIDCalls)
	}
	if found.Name != event.Name {
		t.Errorf("cached name = %q, want %q", found.Name, event.Name)
	}
}

func TestCachedEventRepository_InvalidateEvent_ForcesReread(t *testing.T) {
	redisClient := setupTestRedis(t)
	defer redisClient.Close()

	inner := newCountingEventRepository()
	cached := NewCachedEventRepository(inner, redisClient)
	ctx := context.Background()

	event := testEvent("Invalidated Concert")
	if err := cached.Create(ctx, event); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	defer redisClient.Del(ctx, eventDetailKeyPrefix+event.ID)

	if _, err := cached.GetByID(ctx, event.ID); err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}

	// Simulate a booking decrementing availability behind the cache
	inner.events[event.ID].AvailableTickets = 99
	cached.InvalidateEvent(ctx, event.ID)

	found, err := cached.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.AvailableTickets != 99 {
		t.Errorf("available = %d after invalidation, want 99", found.AvailableTickets)
	}
	if inner.getByIDCalls != 2 {
		t.Errorf("%d store reads, want 2", inner.getByIDCalls)
	}
}

// A failed SCAN during invalidation must degrade to a warning, not take
// down the write that triggered it.
func TestCachedEventRepository_InvalidationSurvivesCacheFailure(t *testing.T) {
	redisClient := setupTestRedis(t)

	inner := newCountingEventRepository()
	cached := NewCachedEventRepository(inner, redisClient)
	ctx := context.Background()

	event := testEvent("Orphaned Concert")
	if err := inner.Create(ctx, event); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	redisClient.Close()

	// Both Del and the list SCAN now fail; the invalidation must return
	cached.InvalidateEvent(ctx, event.ID)

	if err := cached.Update(ctx, event); err != nil {
		t.Fatalf("Update() must succeed despite the dead cache: %v", err)
	}
	if _, ok := inner.events[event.ID]; !ok {
		t.Error("store write lost")
	}
}

func TestCachedEventRepository_List_SearchBypassesCache(t *testing.T) {
	redisClient := setupTestRedis(t)
	defer redisClient.Close()

	inner := newCountingEventRepository()
	cached := NewCachedEventRepository(inner, redisClient)
	ctx := context.Background()

	if err := cached.Create(ctx, testEvent("Searchable Concert")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := cached.List(ctx, "concert", 20, 0); err != nil {
			t.Fatalf("List() failed: %v", err)
		}
	}
	if inner.listCalls != 3 {
		t.Errorf("%d store reads for search queries, want 3 (no caching)", inner.listCalls)
	}
}
