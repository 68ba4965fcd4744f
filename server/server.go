package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/analytics"
	"github.com/NextMind-AI/inbox-analytics/aws"
	"github.com/NextMind-AI/inbox-analytics/delivery"
	"github.com/NextMind-AI/inbox-analytics/metrics"
	"github.com/NextMind-AI/inbox-analytics/processor"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

// Archive stores dashboard snapshots.
type Archive interface {
	UploadDashboard(ctx context.Context, body []byte, generatedAt time.Time) (aws.Snapshot, error)
}

type Config struct {
	CORSOrigins      []string
	StoreBackend     string
	LiveSegmentation string
}

// Deps are the components the HTTP API reads from and writes to. Archive,
// Dispatcher and Metrics may be nil.
type Deps struct {
	Processor     *processor.MessageProcessor
	Analytics     *analytics.Aggregator
	Conversations store.ConversationStore
	Events        store.EventStore
	Zone          *zone.Zone
	Dispatcher    *delivery.Dispatcher
	Archive       Archive
	Metrics       *metrics.Metrics
	Now           func() time.Time
}

type Server struct {
	app              *fiber.App
	config           Config
	messageProcessor *processor.MessageProcessor
	analytics        *analytics.Aggregator
	conversations    store.ConversationStore
	events           store.EventStore
	zone             *zone.Zone
	dispatcher       *delivery.Dispatcher
	archive          Archive
	metrics          *metrics.Metrics
	now              func() time.Time
}

func New(cfg Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "inbox-analytics",
		ErrorHandler: errorHandler,
	})

	s := &Server{
		app:              app,
		config:           cfg,
		messageProcessor: deps.Processor,
		analytics:        deps.Analytics,
		conversations:    deps.Conversations,
		events:           deps.Events,
		zone:             deps.Zone,
		dispatcher:       deps.Dispatcher,
		archive:          deps.Archive,
		metrics:          deps.Metrics,
		now:              deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.zone == nil {
		s.zone = zone.Load(zone.DefaultName)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving on port until the app is shut down.
func (s *Server) Start(port string) error {
	log.Info().Str("port", port).Msg("Starting inbox server")

	return s.app.Listen(":"+port, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
