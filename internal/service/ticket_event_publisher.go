package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
	"github.com/Anas63666/Event-ticketing-system/pkg/kafka"
)

// TicketEventPublisher defines the interface for publishing ticket lifecycle events
type TicketEventPublisher interface {
	// PublishTicketIssued publishes a ticket issued event
	PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error

	// PublishTicketValidated publishes a ticket validated event
	PublishTicketValidated(ctx context.Context, ticket *domain.Ticket) error

	// Close closes the publisher
	Close() error
}

// KafkaTicketEventPublisher implements TicketEventPublisher using Kafka
type KafkaTicketEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// TicketEventPublisherConfig contains configuration for the publisher
type TicketEventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaTicketEventPublisher creates a new Kafka ticket event publisher
func NewKafkaTicketEventPublisher(ctx context.Context, cfg *TicketEventPublisherConfig) (*KafkaTicketEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ticket event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ticket-events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "event-ticketing"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "event-ticketing-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaTicketEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishTicketIssued publishes a ticket issued event
func (p *KafkaTicketEventPublisher) PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishEvent(ctx, domain.TicketEventIssued, ticket)
}

// PublishTicketValidated publishes a ticket validated event
func (p *KafkaTicketEventPublisher) PublishTicketValidated(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishEvent(ctx, domain.TicketEventValidated, ticket)
}

// Close closes the publisher
func (p *KafkaTicketEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaTicketEventPublisher) publishEvent(ctx context.Context, eventType domain.TicketEventType, ticket *domain.Ticket) error {
	eventID := uuid.New().String()
	event := domain.NewTicketEvent(eventType, ticket, eventID)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       event.Key(),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpTicketEventPublisher is a no-op implementation used when Kafka is
// unreachable and in tests
type NoOpTicketEventPublisher struct{}

// NewNoOpTicketEventPublisher creates a new no-op publisher
func NewNoOpTicketEventPublisher() *NoOpTicketEventPublisher {
	return &NoOpTicketEventPublisher{}
}

// PublishTicketIssued is a no-op
func (p *NoOpTicketEventPublisher) PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// PublishTicketValidated is a no-op
func (p *NoOpTicketEventPublisher) PublishTicketValidated(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// Close is a no-op
func (p *NoOpTicketEventPublisher) Close() error {
	return nil
}
