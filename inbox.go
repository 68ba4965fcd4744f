// Package inbox assembles the unified inbox backend: conversation tracking,
// analytics, channel delivery and the HTTP API.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/analytics"
	"github.com/NextMind-AI/inbox-analytics/aws"
	"github.com/NextMind-AI/inbox-analytics/config"
	"github.com/NextMind-AI/inbox-analytics/delivery"
	"github.com/NextMind-AI/inbox-analytics/execution"
	"github.com/NextMind-AI/inbox-analytics/metrics"
	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/openai"
	"github.com/NextMind-AI/inbox-analytics/processor"
	"github.com/NextMind-AI/inbox-analytics/redis"
	"github.com/NextMind-AI/inbox-analytics/seed"
	"github.com/NextMind-AI/inbox-analytics/server"
	"github.com/NextMind-AI/inbox-analytics/sqlstore"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/tracker"
	"github.com/NextMind-AI/inbox-analytics/vonage"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

// Inbox is a fully wired backend instance.
type Inbox struct {
	config        *config.Config
	conversations store.ConversationStore
	events        store.EventStore
	tracker       *tracker.Tracker
	analytics     *analytics.Aggregator
	processor     *processor.MessageProcessor
	server        *server.Server
	closers       []io.Closer
}

// New builds every component selected by cfg. Optional integrations
// (Vonage, OpenAI tagging, S3 archive) are enabled by their settings.
func New(ctx context.Context, cfg *config.Config) (*Inbox, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	in := &Inbox{config: cfg}
	if err := in.openStores(ctx); err != nil {
		return nil, err
	}

	z := zone.Load(cfg.ReferenceTimezone)
	rule, err := tracker.ParseRule(cfg.LiveSegmentation)
	if err != nil {
		in.Close()
		return nil, err
	}

	in.tracker = tracker.New(
		in.conversations,
		in.events,
		z,
		tracker.WithLiveRule(rule),
		tracker.WithLocks(execution.NewManager()),
	)
	in.analytics = analytics.New(in.conversations, in.events, z)

	m := metrics.NewMetrics()
	dispatcher := delivery.NewDispatcher()
	opts := []processor.Option{processor.WithMetrics(m)}

	if cfg.VonageJWT != "" {
		vonageClient := vonage.NewClient(
			cfg.VonageJWT,
			cfg.GeospecificMessagesAPIURL,
			cfg.MessagesAPIURL,
			cfg.WhatsAppSenderID,
			httpClient,
		)
		dispatcher.Register(model.ChannelWhatsApp, vonageClient)
		opts = append(opts, processor.WithReadMarker(vonageClient))
	}
	for _, ch := range model.Channels() {
		if dispatcher.Configured(ch) {
			continue
		}
		if url := cfg.ServiceURL(ch); url != "" {
			dispatcher.Register(ch, delivery.NewHTTPForwarder(url, httpClient))
		}
	}

	if cfg.TaggingEnabled() {
		tagger, err := openai.NewTagger(openai.NewClient(cfg.OpenAIKey, httpClient), cfg.Tags())
		if err != nil {
			in.Close()
			return nil, err
		}
		opts = append(opts, processor.WithTagger(tagger))
		log.Info().Strs("tags", tagger.Tags()).Msg("Message tagging enabled")
	}

	in.processor = processor.NewMessageProcessor(in.tracker, dispatcher, opts...)

	deps := server.Deps{
		Processor:     in.processor,
		Analytics:     in.analytics,
		Conversations: in.conversations,
		Events:        in.events,
		Zone:          z,
		Dispatcher:    dispatcher,
		Metrics:       m,
	}
	if cfg.ArchiveEnabled() {
		archive, err := aws.NewClient(cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			in.Close()
			return nil, err
		}
		deps.Archive = archive
	}

	in.server = server.New(server.Config{
		CORSOrigins:      cfg.CORSOrigins,
		StoreBackend:     cfg.StoreBackend,
		LiveSegmentation: rule.String(),
	}, deps)

	if cfg.SeedOnStart {
		if err := in.seed(ctx); err != nil {
			in.Close()
			return nil, err
		}
	}

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("zone", z.Name()).
		Str("live_rule", rule.String()).
		Msg("Inbox initialised")

	return in, nil
}

func (in *Inbox) openStores(ctx context.Context) error {
	switch in.config.StoreBackend {
	case config.BackendRedis:
		client, err := redis.NewClient(ctx, in.config.RedisAddr, in.config.RedisPassword, in.config.RedisDB)
		if err != nil {
			return err
		}
		in.conversations = client.Conversations()
		in.events = client.Events()
		in.closers = append(in.closers, client)
	case config.BackendSQLite:
		db, err := sqlstore.Open(ctx, in.config.SQLitePath)
		if err != nil {
			return err
		}
		in.conversations = db.Conversations()
		in.events = db.Events()
		in.closers = append(in.closers, db)
	default:
		in.conversations = store.NewMemoryConversationStore()
		in.events = store.NewMemoryEventStore()
	}
	return nil
}

// seed loads the demo dataset unless the event store already has data.
func (in *Inbox) seed(ctx context.Context) error {
	existing, err := in.events.All(ctx)
	if err != nil {
		return fmt.Errorf("checking store before seeding: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("messages", len(existing)).Msg("Store not empty, skipping seed")
		return nil
	}
	_, err = seed.Load(ctx, in.tracker, seed.Events)
	return err
}

func (in *Inbox) Processor() *processor.MessageProcessor {
	return in.processor
}

func (in *Inbox) Analytics() *analytics.Aggregator {
	return in.analytics
}

func (in *Inbox) Tracker() *tracker.Tracker {
	return in.tracker
}

func (in *Inbox) Server() *server.Server {
	return in.server
}

// Start serves the HTTP API on the configured port until Shutdown.
func (in *Inbox) Start() error {
	port := in.config.Port
	if port == "" {
		port = "8080"
	}
	return in.server.Start(port)
}

func (in *Inbox) Shutdown(ctx context.Context) error {
	err := in.server.Shutdown(ctx)
	return errors.Join(err, in.Close())
}

// Close releases the store connections.
func (in *Inbox) Close() error {
	var errs []error
	for _, c := range in.closers {
		errs = append(errs, c.Close())
	}
	in.closers = nil
	return errors.Join(errs...)
}
