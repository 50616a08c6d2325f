package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
)

func TestNewKafkaTicketEventPublisher_ConfigValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewKafkaTicketEventPublisher(ctx, nil)
	assert.Error(t, err)

	_, err = NewKafkaTicketEventPublisher(ctx, &TicketEventPublisherConfig{})
	assert.Error(t, err)
}

func TestTicketEvent_Key_PartitionsByConcert(t *testing.T) {
	ticket := &domain.Ticket{ID: "ticket-1", EventID: "event-001"}
	event := domain.NewTicketEvent(domain.TicketEventIssued, ticket, "msg-1")

	// Events for one concert must land on one partition so consumers see
	// its ticket stream in order
	assert.Equal(t, "event-001", event.Key())

	empty := domain.NewTicketEvent(domain.TicketEventIssued, nil, "msg-2")
	assert.Equal(t, "msg-2", empty.Key())
}

func TestTicketEvent_JSONPayload(t *testing.T) {
	validatedAt := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		ID:          "ticket-1",
		EventID:     "event-001",
		UserID:      "user-123",
		Validated:   true,
		ValidatedAt: &validatedAt,
	}
	event := domain.NewTicketEvent(domain.TicketEventValidated, ticket, "msg-1")

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded domain.TicketEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, domain.TicketEventValidated, decoded.Type)
	assert.Equal(t, "msg-1", decoded.EventID)
	require.NotNil(t, decoded.Ticket)
	assert.Equal(t, "ticket-1", decoded.Ticket.ID)
	assert.True(t, decoded.Ticket.Validated)
}

func TestNoOpTicketEventPublisher(t *testing.T) {
	publisher := NewNoOpTicketEventPublisher()
	ctx := context.Background()
	ticket := &domain.Ticket{ID: "ticket-1", EventID: "event-001"}

	assert.NoError(t, publisher.PublishTicketIssued(ctx, ticket))
	assert.NoError(t, publisher.PublishTicketValidated(ctx, ticket))
	assert.NoError(t, publisher.Close())
}
