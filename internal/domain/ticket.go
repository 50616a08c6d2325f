package domain

import "time"

// Ticket is a single admission credential for an event. The ticket ID is
// the payload encoded into the QR code; there is no signature on top of it.
//
// EventName and EventDate are snapshots taken at issue time for display.
// They do not follow later edits to the event.
type Ticket struct {
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
}

// QRPayload returns the data encoded into the ticket's QR code.
func (t *Ticket) QRPayload() string {
	return t.ID
}

// BelongsToUser reports whether the ticket is held by the given user.
func (t *Ticket) BelongsToUser(userID string) bool {
	return t.UserID == userID
}
