package domain

import "time"

// Event represents an event in the catalog with its ticket inventory.
// TotalTickets and AvailableTickets are mutated only inside store
// transactions (reserve decrements, organizer resize adjusts both).
type Event struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	ImageURL         string    `json:"image_url"`
	StartsAt         time.Time `json:"starts_at"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	TicketPrice      float64   `json:"ticket_price"`
	OrganizerID      string    `json:"organizer_id"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsSoldOut reports whether no tickets remain.
func (e *Event) IsSoldOut() bool {
	return e.AvailableTickets <= 0
}

// BookingClosed reports whether booking is no longer allowed at the given
// instant. Booking closes the moment the event starts: startsAt itself is
// already too late.
func (e *Event) BookingClosed(now time.Time) bool {
	return !now.Before(e.StartsAt)
}

// IssuedCount returns the number of tickets issued so far.
func (e *Event) IssuedCount() int {
	return e.TotalTickets - e.AvailableTickets
}

// EventStats summarises an event's inventory for the organizer dashboard.
type EventStats struct {
	EventID        string  `json:"event_id"`
	TotalBooked    int     `json:"total_booked"`
	TotalAvailable int     `json:"total_available"`
	ValidatedCount int     `json:"validated_count"`
	Revenue        float64 `json:"revenue"`
}
