package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/internal/dto"
	"github.com/Anas63666/Event-ticketing-system/internal/repository"
	"github.com/Anas63666/Event-ticketing-system/pkg/telemetry"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// EventService defines the interface for event catalog and organizer operations
type EventService interface {
	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ListEvents lists events with optional search and pagination
	ListEvents(ctx context.Context, search string, limit, offset int) (*dto.EventListResponse, error)

	// GetEventTickets retrieves the attendee list for an event
	GetEventTickets(ctx context.Context, eventID string) (*dto.TicketListResponse, error)

	// GetEventStats retrieves aggregate stats for an event
	GetEventStats(ctx context.Context, eventID string) (*dto.EventStatsResponse, error)

	// AdjustCapacity changes event capacity by delta
	AdjustCapacity(ctx context.Context, eventID string, delta int) (*dto.EventResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo  repository.EventRepository
	ticketRepo repository.TicketRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository, ticketRepo repository.TicketRepository) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
	}
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_event")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListEvents lists events with optional search and pagination
func (s *eventService) ListEvents(ctx context.Context, search string, limit, offset int) (*dto.EventListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_events")
	defer span.End()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	span.SetAttributes(
		attribute.String("search", search),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	events, err := s.eventRepo.List(ctx, search, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return dto.EventListFromDomain(events, limit, offset), nil
}

// GetEventTickets retrieves the attendee list for an event
func (s *eventService) GetEventTickets(ctx context.Context, eventID string) (*dto.TicketListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_event_tickets")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	// Verify the event exists so an unknown ID is a 404, not an empty list
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tickets, err := s.ticketRepo.GetByEventID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return dto.TicketListFromDomain(tickets), nil
}

// GetEventStats retrieves aggregate stats for an event
func (s *eventService) GetEventStats(ctx context.Context, eventID string) (*dto.EventStatsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_event_stats")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	stats, err := s.ticketRepo.StatsByEvent(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.StatsFromDomain(stats), nil
}

// AdjustCapacity changes event capacity by delta
func (s *eventService) AdjustCapacity(ctx context.Context, eventID string, delta int) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.adjust_capacity")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if delta == 0 {
		span.SetStatus(codes.Error, "zero delta")
		return nil, domain.ErrInvalidDelta
	}

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("delta", delta),
	)

	event, err := s.eventRepo.AdjustCapacity(ctx, eventID, delta)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}
