package di

import (
	"github.com/Anas63666/Event-ticketing-system/internal/handler"
	"github.com/Anas63666/Event-ticketing-system/internal/repository"
	"github.com/Anas63666/Event-ticketing-system/internal/service"
	"github.com/Anas63666/Event-ticketing-system/pkg/database"
	"github.com/Anas63666/Event-ticketing-system/pkg/redis"
)

// Container holds all dependencies for the ticketing service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo  repository.EventRepository
	TicketRepo repository.TicketRepository

	// Publishers
	EventPublisher service.TicketEventPublisher

	// Services
	BookingService    service.BookingService
	ValidationService service.ValidationService
	EventService      service.EventService

	// Handlers
	HealthHandler     *handler.HealthHandler
	TicketHandler     *handler.TicketHandler
	ValidationHandler *handler.ValidationHandler
	EventHandler      *handler.EventHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.TicketEventPublisher
	ServiceConfig  *service.BookingServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize repositories
	c.TicketRepo = repository.NewPostgresTicketRepository(cfg.DB.Pool())

	pgEventRepo := repository.NewPostgresEventRepository(cfg.DB.Pool())
	var cachedEventRepo *repository.CachedEventRepository
	if cfg.Redis != nil {
		cachedEventRepo = repository.NewCachedEventRepository(pgEventRepo, cfg.Redis)
		c.EventRepo = cachedEventRepo
	} else {
		c.EventRepo = pgEventRepo
	}

	// Initialize services
	var invalidator service.EventCacheInvalidator
	if cachedEventRepo != nil {
		invalidator = cachedEventRepo
	}
	c.BookingService = service.NewBookingService(
		c.TicketRepo,
		c.EventPublisher,
		invalidator,
		cfg.ServiceConfig,
	)
	c.ValidationService = service.NewValidationService(c.TicketRepo, c.EventPublisher)
	c.EventService = service.NewEventService(c.EventRepo, c.TicketRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.TicketHandler = handler.NewTicketHandler(c.BookingService)
	c.ValidationHandler = handler.NewValidationHandler(c.ValidationService)
	c.EventHandler = handler.NewEventHandler(c.EventService)

	return c
}
