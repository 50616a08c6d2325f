package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/internal/dto"
	"github.com/Anas63666/Event-ticketing-system/internal/metrics"
	"github.com/Anas63666/Event-ticketing-system/internal/repository"
	"github.com/Anas63666/Event-ticketing-system/pkg/logger"
	"github.com/Anas63666/Event-ticketing-system/pkg/telemetry"
)

// BookingService defines the interface for ticket booking business logic
type BookingService interface {
	// BookTicket books a single ticket for the user on an event
	BookTicket(ctx context.Context, userID string, req *dto.BookTicketRequest) (*dto.TicketResponse, error)

	// GetTicket retrieves a ticket by ID
	GetTicket(ctx context.Context, ticketID string) (*dto.TicketResponse, error)

	// GetUserTickets retrieves all tickets booked by a user
	GetUserTickets(ctx context.Context, userID string) (*dto.TicketListResponse, error)
}

// EventCacheInvalidator drops cached catalog entries for an event
type EventCacheInvalidator interface {
	InvalidateEvent(ctx context.Context, eventID string)
}

// bookingService implements BookingService
type bookingService struct {
	ticketRepo     repository.TicketRepository
	eventPublisher TicketEventPublisher
	cache          EventCacheInvalidator
	maxPerUser     int
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	MaxTicketsPerUser int
}

// NewBookingService creates a new booking service
func NewBookingService(
	ticketRepo repository.TicketRepository,
	eventPublisher TicketEventPublisher,
	cache EventCacheInvalidator,
	cfg *BookingServiceConfig,
) BookingService {
	maxPerUser := 2
	if cfg != nil && cfg.MaxTicketsPerUser > 0 {
		maxPerUser = cfg.MaxTicketsPerUser
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpTicketEventPublisher()
	}
	return &bookingService{
		ticketRepo:     ticketRepo,
		eventPublisher: eventPublisher,
		cache:          cache,
		maxPerUser:     maxPerUser,
	}
}

// BookTicket books a single ticket for the user on an event.
//
// The per-user cap is checked before the reservation transaction, so two
// concurrent requests sitting one below the cap can both pass. The capacity
// check inside Reserve still holds; only the cap is best-effort.
func (s *bookingService) BookTicket(ctx context.Context, userID string, req *dto.BookTicketRequest) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.book_ticket")
	defer span.End()

	start := time.Now()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
	)

	held, err := s.ticketRepo.CountByUserAndEvent(ctx, userID, req.EventID)
	if err != nil {
		// A malformed event id surfaces here as not-found; only real
		// storage faults are retryable
		if domain.IsNotFoundError(err) {
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordBookingRejected(ctx, req.EventID, "not_found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if held >= s.maxPerUser {
		span.SetStatus(codes.Error, "booking limit reached")
		metrics.RecordBookingRejected(ctx, req.EventID, "limit_reached")
		return nil, domain.ErrBookingLimitReached
	}

	ticket := &domain.Ticket{
		ID:            uuid.New().String(),
		EventID:       req.EventID,
		UserID:        userID,
		AttendeeName:  strings.TrimSpace(req.AttendeeName),
		AttendeeEmail: strings.TrimSpace(req.AttendeeEmail),
		BookingDate:   time.Now(),
	}

	if err := s.ticketRepo.Reserve(ctx, ticket); err != nil {
		span.SetStatus(codes.Error, err.Error())
		switch {
		case domain.IsNotFoundError(err):
			metrics.RecordBookingRejected(ctx, req.EventID, "not_found")
			return nil, err
		case domain.IsConflictError(err):
			metrics.RecordBookingRejected(ctx, req.EventID, "sold_out")
			return nil, err
		case errors.Is(err, domain.ErrEventPassed):
			metrics.RecordBookingRejected(ctx, req.EventID, "expired")
			return nil, err
		default:
			span.RecordError(err)
			metrics.RecordBookingRejected(ctx, req.EventID, "transient")
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
	}

	// Availability changed; drop cached catalog entries
	if s.cache != nil {
		s.cache.InvalidateEvent(ctx, ticket.EventID)
	}

	// Fire-and-forget; a lost event never fails the booking
	if err := s.eventPublisher.PublishTicketIssued(ctx, ticket); err != nil {
		logger.Get().Warn("failed to publish ticket issued event",
			zap.String("ticket_id", ticket.ID),
			zap.String("event_id", ticket.EventID),
			zap.Error(err),
		)
	}

	metrics.RecordTicketIssued(ctx, ticket.EventID, time.Since(start).Seconds())

	span.SetAttributes(attribute.String("ticket_id", ticket.ID))
	span.SetStatus(codes.Ok, "")
	return dto.TicketFromDomain(ticket), nil
}

// GetTicket retrieves a ticket by ID
func (s *bookingService) GetTicket(ctx context.Context, ticketID string) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_ticket")
	defer span.End()

	if ticketID == "" {
		span.SetStatus(codes.Error, "invalid ticket_id")
		return nil, domain.ErrInvalidTicketID
	}

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.TicketFromDomain(ticket), nil
}

// GetUserTickets retrieves all tickets booked by a user
func (s *bookingService) GetUserTickets(ctx context.Context, userID string) (*dto.TicketListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_user_tickets")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(attribute.String("user_id", userID))

	tickets, err := s.ticketRepo.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return dto.TicketListFromDomain(tickets), nil
}
