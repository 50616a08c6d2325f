package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Anas63666/Event-ticketing-system/internal/domain"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Event, error)
	ListFunc           func(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error)
	GetByOrganizerFunc func(ctx context.Context, organizerID string) ([]*domain.Event, error)
	CreateFunc         func(ctx context.Context, event *domain.Event) error
	UpdateFunc         func(ctx context.Context, event *domain.Event) error
	AdjustCapacityFunc func(ctx context.Context, eventID string, delta int) (*domain.Event, error)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, search, limit, offset)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if m.GetByOrganizerFunc != nil {
		return m.GetByOrganizerFunc(ctx, organizerID)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) AdjustCapacity(ctx context.Context, eventID string, delta int) (*domain.Event, error) {
	if m.AdjustCapacityFunc != nil {
		return m.AdjustCapacityFunc(ctx, eventID, delta)
	}
	return nil, domain.ErrEventNotFound
}

func TestEventService_GetEvent(t *testing.T) {
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			if id == "event-001" {
				return &domain.Event{
					ID:               "event-001",
					Name:             "Summer Concert",
					StartsAt:         time.Now().Add(24 * time.Hour),
					TotalTickets:     100,
					AvailableTickets: 0,
				}, nil
			}
			return nil, domain.ErrEventNotFound
		},
	}
	svc := NewEventService(eventRepo, &MockTicketRepository{})

	event, err := svc.GetEvent(context.Background(), "event-001")
	if err != nil {
		t.Fatalf("GetEvent() unexpected error: %v", err)
	}
	if !event.SoldOut {
		t.Error("GetEvent() zero availability must report sold out")
	}

	if _, err := svc.GetEvent(context.Background(), "missing"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("GetEvent(missing) error = %v, want ErrEventNotFound", err)
	}
	if _, err := svc.GetEvent(context.Background(), ""); !errors.Is(err, domain.ErrInvalidEventID) {
		t.Errorf("GetEvent(\"\") error = %v, want ErrInvalidEventID", err)
	}
}

func TestEventService_ListEvents_ClampsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	eventRepo := &MockEventRepository{
		ListFunc: func(ctx context.Context, search string, limit, offset int) ([]*domain.Event, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.Event{}, nil
		},
	}
	svc := NewEventService(eventRepo, &MockTicketRepository{})

	if _, err := svc.ListEvents(context.Background(), "", 0, -5); err != nil {
		t.Fatalf("ListEvents() unexpected error: %v", err)
	}
	if gotLimit != 20 || gotOffset != 0 {
		t.Errorf("defaults: limit=%d offset=%d, want 20/0", gotLimit, gotOffset)
	}

	if _, err := svc.ListEvents(context.Background(), "", 500, 10); err != nil {
		t.Fatalf("ListEvents() unexpected error: %v", err)
	}
	if gotLimit != 100 {
		t.Errorf("oversized limit clamped to %d, want 100", gotLimit)
	}
}

func TestEventService_GetEventTickets_UnknownEventIs404(t *testing.T) {
	svc := NewEventService(&MockEventRepository{}, &MockTicketRepository{})

	_, err := svc.GetEventTickets(context.Background(), "missing")
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("GetEventTickets(missing) error = %v, want ErrEventNotFound", err)
	}
}

func TestEventService_GetEventStats(t *testing.T) {
	ticketRepo := &MockTicketRepository{
		StatsByEventFunc: func(ctx context.Context, eventID string) (*domain.EventStats, error) {
			return &domain.EventStats{
				EventID:        eventID,
				TotalBooked:    40,
				TotalAvailable: 60,
				ValidatedCount: 12,
				Revenue:        2000,
			}, nil
		},
	}
	svc := NewEventService(&MockEventRepository{}, ticketRepo)

	stats, err := svc.GetEventStats(context.Background(), "event-001")
	if err != nil {
		t.Fatalf("GetEventStats() unexpected error: %v", err)
	}
	if stats.TotalBooked != 40 || stats.ValidatedCount != 12 {
		t.Errorf("stats = %+v, want booked 40 validated 12", stats)
	}
}

func TestEventService_AdjustCapacity(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		delta   int
		setup   func(*MockEventRepository)
		wantErr error
	}{
		{
			name:    "grow capacity",
			eventID: "event-001",
			delta:   50,
			setup: func(er *MockEventRepository) {
				er.AdjustCapacityFunc = func(ctx context.Context, eventID string, delta int) (*domain.Event, error) {
					return &domain.Event{ID: eventID, TotalTickets: 150, AvailableTickets: 80}, nil
				}
			},
		},
		{
			name:    "shrink below issued rejected",
			eventID: "event-001",
			delta:   -90,
			setup: func(er *MockEventRepository) {
				er.AdjustCapacityFunc = func(ctx context.Context, eventID string, delta int) (*domain.Event, error) {
					return nil, domain.ErrCapacityExceeded
				}
			},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name:    "zero delta rejected",
			eventID: "event-001",
			delta:   0,
			wantErr: domain.ErrInvalidDelta,
		},
		{
			name:    "missing event id",
			eventID: "",
			delta:   5,
			wantErr: domain.ErrInvalidEventID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &MockEventRepository{}
			if tt.setup != nil {
				tt.setup(eventRepo)
			}
			svc := NewEventService(eventRepo, &MockTicketRepository{})

			event, err := svc.AdjustCapacity(context.Background(), tt.eventID, tt.delta)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AdjustCapacity() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AdjustCapacity() unexpected error: %v", err)
			}
			if event.TotalTickets != 150 {
				t.Errorf("total = %d, want 150", event.TotalTickets)
			}
		})
	}
}
