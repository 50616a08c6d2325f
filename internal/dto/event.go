package dto

import (
	"time"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
)

// EventResponse represents an event in API responses
type EventResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	StartsAt         time.Time `json:"starts_at"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	TicketPrice      float64   `json:"ticket_price"`
	OrganizerID      string    `json:"organizer_id,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	SoldOut          bool      `json:"sold_out"`
}

// EventFromDomain converts a domain Event to EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Location:         e.Location,
		ImageURL:         e.ImageURL,
		StartsAt:         e.StartsAt,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.AvailableTickets,
		TicketPrice:      e.TicketPrice,
		OrganizerID:      e.OrganizerID,
		Tags:             e.Tags,
		SoldOut:          e.IsSoldOut(),
	}
}

// EventListResponse represents a paginated list of events
type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// EventListFromDomain converts domain events to a list response
func EventListFromDomain(events []*domain.Event, limit, offset int) *EventListResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventFromDomain(e))
	}
	return &EventListResponse{
		Events: out,
		Total:  len(out),
		Limit:  limit,
		Offset: offset,
	}
}

// EventStatsResponse represents aggregate stats for an event
type EventStatsResponse struct {
	EventID        string  `json:"event_id"`
	TotalBooked    int     `json:"total_booked"`
	TotalAvailable int     `json:"total_available"`
	ValidatedCount int     `json:"validated_count"`
	Revenue        float64 `json:"revenue"`
}

// StatsFromDomain converts domain EventStats to EventStatsResponse
func StatsFromDomain(s *domain.EventStats) *EventStatsResponse {
	return &EventStatsResponse{
		EventID:        s.EventID,
		TotalBooked:    s.TotalBooked,
		TotalAvailable: s.TotalAvailable,
		ValidatedCount: s.ValidatedCount,
		Revenue:        s.Revenue,
	}
}

// AdjustCapacityRequest represents a request to change event capacity
type AdjustCapacityRequest struct {
	Delta int `json:"delta" binding:"required"`
}
