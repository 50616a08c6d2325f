package dto

import (
	"time"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
)

// BookTicketRequest represents a request to book a ticket for an event
type BookTicketRequest struct {
	EventID       string `json:"event_id" binding:"required"`
	AttendeeName  string `json:"attendee_name" binding:"required"`
	AttendeeEmail string `json:"attendee_email" binding:"required,email"`
}

// TicketResponse represents a ticket in API responses
type TicketResponse struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	UserID        string     `json:"user_id"`
	EventName     string     `json:"event_name"`
	EventDate     time.Time  `json:"event_date"`
	AttendeeName  string     `json:"attendee_name"`
	AttendeeEmail string     `json:"attendee_email"`
	BookingDate   time.Time  `json:"booking_date"`
	Validated     bool       `json:"validated"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
	QRPayload     string     `json:"qr_payload"`
}

// TicketFromDomain converts a domain Ticket to TicketResponse
func TicketFromDomain(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:            t.ID,
		EventID:       t.EventID,
		UserID:        t.UserID,
		EventName:     t.EventName,
		EventDate:     t.EventDate,
		AttendeeName:  t.AttendeeName,
		AttendeeEmail: t.AttendeeEmail,
		BookingDate:   t.BookingDate,
		Validated:     t.Validated,
		ValidatedAt:   t.ValidatedAt,
		QRPayload:     t.QRPayload(),
	}
}

// TicketListResponse represents a list of tickets
type TicketListResponse struct {
	Tickets []*TicketResponse `json:"tickets"`
	Total   int               `json:"total"`
}

// TicketListFromDomain converts domain tickets to a list response
func TicketListFromDomain(tickets []*domain.Ticket) *TicketListResponse {
	out := make([]*TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketFromDomain(t))
	}
	return &TicketListResponse{
		Tickets: out,
		Total:   len(out),
	}
}
