package service

import (
	"context"
	"errors"
	"strings"
	"time"

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

// Messages shown to gate staff. Scanners display these verbatim.
const (
	msgValidTicket      = "Valid ticket. Entry granted."
	msgAlreadyUsed      = "Warning: This ticket has already been used."
	msgWrongEvent       = "This ticket is not valid for this event."
	msgTicketNotFound   = "Invalid ticket. Ticket ID not found."
	msgValidationFailed = "Validation failed. Please try again."

	msgStatusNotFound = "Ticket not found."
	msgStatusUsed     = "This ticket has already been used."
	msgStatusValid    = "Ticket is valid and ready to use."
	msgStatusFailed   = "Failed to check ticket status."
)

// ValidationService defines the interface for entry validation.
// Its methods never return a Go error: gate scanners always get a
// structured result they can display, even when storage is down.
type ValidationService interface {
	// ValidateTicket consumes a ticket's one-time use. When eventID is
	// non-empty the ticket must belong to that event.
	ValidateTicket(ctx context.Context, ticketID, eventID string) *dto.ValidationResponse

	// CheckTicketStatus reports whether a ticket is usable without
	// consuming it
	CheckTicketStatus(ctx context.Context, ticketID string) *dto.TicketStatusResponse
}

// validationService implements ValidationService
type validationService struct {
	ticketRepo     repository.TicketRepository
	eventPublisher TicketEventPublisher
}

// NewValidationService creates a new validation service
func NewValidationService(ticketRepo repository.TicketRepository, eventPublisher TicketEventPublisher) ValidationService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpTicketEventPublisher()
	}
	return &validationService{
		ticketRepo:     ticketRepo,
		eventPublisher: eventPublisher,
	}
}

// ValidateTicket consumes a ticket's one-time use. Exactly one of two
// concurrent scans of the same ticket wins; the loser sees AlreadyUsed
// with the winner's validation timestamp.
func (s *validationService) ValidateTicket(ctx context.Context, ticketID, eventID string) *dto.ValidationResponse {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.validate_ticket")
	defer span.End()

	start := time.Now()

	// Scanned identifiers arrive with stray whitespace
	ticketID = strings.TrimSpace(ticketID)

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	if ticketID == "" {
		span.SetStatus(codes.Error, "empty ticket id")
		metrics.RecordInvalidScan(ctx, "empty_id")
		return &dto.ValidationResponse{
			Valid:   false,
			Message: msgTicketNotFound,
		}
	}

	ticket, err := s.ticketRepo.MarkUsed(ctx, ticketID, eventID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			span.SetStatus(codes.Error, "not found")
			metrics.RecordInvalidScan(ctx, "not_found")
			return &dto.ValidationResponse{
				Valid:   false,
				Message: msgTicketNotFound,
			}
		case errors.Is(err, domain.ErrWrongEvent):
			span.SetStatus(codes.Error, "wrong event")
			metrics.RecordInvalidScan(ctx, "wrong_event")
			resp := &dto.ValidationResponse{
				Valid:   false,
				Message: msgWrongEvent,
			}
			if ticket != nil {
				resp.Ticket = dto.TicketFromDomain(ticket)
			}
			return resp
		case errors.Is(err, domain.ErrTicketAlreadyUsed):
			span.SetStatus(codes.Error, "already used")
			metrics.RecordDuplicateScan(ctx, ticket.EventID)
			return &dto.ValidationResponse{
				Valid:       false,
				AlreadyUsed: true,
				Message:     msgAlreadyUsed,
				Ticket:      dto.TicketFromDomain(ticket),
			}
		default:
			// Storage fault: fail closed, gate staff retries
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Get().Error("ticket validation failed",
				zap.String("ticket_id", ticketID),
				zap.Error(err),
			)
			metrics.RecordInvalidScan(ctx, "storage_fault")
			return &dto.ValidationResponse{
				Valid:   false,
				Message: msgValidationFailed,
			}
		}
	}

	if err := s.eventPublisher.PublishTicketValidated(ctx, ticket); err != nil {
		logger.Get().Warn("failed to publish ticket validated event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	metrics.RecordTicketValidated(ctx, ticket.EventID, time.Since(start).Seconds())

	span.SetStatus(codes.Ok, "")
	return &dto.ValidationResponse{
		Valid:   true,
		Message: msgValidTicket,
		Ticket:  dto.TicketFromDomain(ticket),
	}
}

// CheckTicketStatus reports whether a ticket is usable without consuming it
func (s *validationService) CheckTicketStatus(ctx context.Context, ticketID string) *dto.TicketStatusResponse {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.check_status")
	defer span.End()

	ticketID = strings.TrimSpace(ticketID)

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	if ticketID == "" {
		span.SetStatus(codes.Error, "empty ticket id")
		return &dto.TicketStatusResponse{
			Exists:  false,
			Message: msgStatusNotFound,
		}
	}

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			span.SetStatus(codes.Error, "not found")
			return &dto.TicketStatusResponse{
				Exists:  false,
				Message: msgStatusNotFound,
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Get().Error("ticket status check failed",
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
		return &dto.TicketStatusResponse{
			Exists:  false,
			Message: msgStatusFailed,
		}
	}

	span.SetStatus(codes.Ok, "")
	if ticket.Validated {
		return &dto.TicketStatusResponse{
			Exists:  true,
			Used:    true,
			Message: msgStatusUsed,
			Ticket:  dto.TicketFromDomain(ticket),
		}
	}
	return &dto.TicketStatusResponse{
		Exists:  true,
		Used:    false,
		Message: msgStatusValid,
		Ticket:  dto.TicketFromDomain(ticket),
	}
}
