package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/pkg/logger"
	"github.com/Anas63666/Event-ticketing-system/pkg/redis"
)

const (
	eventDetailKeyPrefix = "event:detail:"
	eventListKeyPrefix   = "event:list:"

	// Short TTL so catalog reads stay close to live availability.
	// Booking never reads through this cache.
	eventCacheTTL = 30 * time.Second
)

// CachedEventRepository wraps EventRepository with Redis caching for
// catalog reads. Writes pass through and invalidate affected keys.
type CachedEventRepository struct {
	repo  EventRepository
	cache *redis.Client
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache *redis.Client) *CachedEventRepository {
	return &CachedEventRepository{
		repo:  repo,
		cache: cache,
	}
}

// GetByID retrieves an event by ID with caching
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	cacheKey := eventDetailKeyPrefix + id
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var event domain.Event
		if err := json.Unmarshal([]byte(cached), &event); err == nil {
			return &event, nil
		}
	}

	event, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheEvent(ctx, cacheKey, event)
	return event, nil
}

// List lists events with caching for unfiltered queries
func (r *CachedEventRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error) {
	// Search queries bypass cache
	if search != "" {
		return r.repo.List(ctx, search, limit, offset)
	}

	cacheKey := fmt.Sprintf("%sall:%d:%d", eventListKeyPrefix, limit, offset)
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var events []*domain.Event
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
	}

	events, err := r.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	r.cacheEventList(ctx, cacheKey, events)
	return events, nil
}

// GetByOrganizer retrieves events by organizer (bypass cache)
func (r *CachedEventRepository) GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	return r.repo.GetByOrganizer(ctx, organizerID)
}

// Create creates a new event and invalidates list caches
func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Create(ctx, event); err != nil {
		return err
	}
	r.invalidateListCaches(ctx)
	return nil
}

// Update updates an event and invalidates its caches
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Update(ctx, event); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, event.ID)
	return nil
}

// AdjustCapacity adjusts capacity and invalidates the event's caches
func (r *CachedEventRepository) AdjustCapacity(ctx context.Context, eventID string, delta int) (*domain.Event, error) {
	event, err := r.repo.AdjustCapacity(ctx, eventID, delta)
	if err != nil {
		return nil, err
	}
	r.invalidateEventCaches(ctx, eventID)
	return event, nil
}

// InvalidateEvent drops cached entries for a single event. Called after
// bookings change availability so catalog reads do not serve stale counts
// for the full TTL.
func (r *CachedEventRepository) InvalidateEvent(ctx context.Context, eventID string) {
	r.invalidateEventCaches(ctx, eventID)
}

func (r *CachedEventRepository) cacheEvent(ctx context.Context, key string, event *domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), eventCacheTTL)
}

func (r *CachedEventRepository) cacheEventList(ctx context.Context, key string, events []*domain.Event) {
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), eventCacheTTL)
}

func (r *CachedEventRepository) invalidateEventCaches(ctx context.Context, id string) {
	r.cache.Del(ctx, eventDetailKeyPrefix+id)
	r.invalidateListCaches(ctx)
}

func (r *CachedEventRepository) invalidateListCaches(ctx context.Context) {
	// KEYS is unsafe in production, use SCAN with a bounded batch size
	iter := r.cache.Client().Scan(ctx, 0, eventListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.cache.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		// Stale list keys stay served until the TTL expires
		logger.Get().Warn("Event list cache invalidation incomplete",
			zap.Error(err),
		)
	}
}

// Ensure CachedEventRepository implements EventRepository
var _ EventRepository = (*CachedEventRepository)(nil)
