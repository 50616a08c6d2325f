package domain

import "time"

// TicketEventType identifies a ticket lifecycle event
type TicketEventType string

const (
	// TicketEventIssued is published when a ticket is booked
	TicketEventIssued TicketEventType = "ticket.issued"

	// TicketEventValidated is published when a ticket is consumed at entry
	TicketEventValidated TicketEventType = "ticket.validated"
)

// TicketEvent is the message published to Kafka on ticket lifecycle changes
type TicketEvent struct {
	EventID    string          `json:"event_id"`
	Type       TicketEventType `json:"type"`
	Ticket     *Ticket         `json:"ticket"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewTicketEvent creates a TicketEvent for the given ticket
func NewTicketEvent(eventType TicketEventType, ticket *Ticket, eventID string) *TicketEvent {
	return &TicketEvent{
		EventID:    eventID,
		Type:       eventType,
		Ticket:     ticket,
		OccurredAt: time.Now(),
	}
}

// Key returns the partition key. Events for the same concert partition
// together so consumers see its ticket stream in order.
func (e *TicketEvent) Key() string {
	if e.Ticket != nil {
		return e.Ticket.EventID
	}
	return e.EventID
}
