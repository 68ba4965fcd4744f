package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/analytics"
	"github.com/NextMind-AI/inbox-analytics/processor"
	"github.com/NextMind-AI/inbox-analytics/seed"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/tracker"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

// Builds an in-memory inbox, replays the demo traffic plus a live message
// and prints the dashboard as seen on Saturday 1 Nov 2025.
func main() {
	ctx := context.Background()

	conversations := store.NewMemoryConversationStore()
	events := store.NewMemoryEventStore()
	z := zone.Load(zone.DefaultName)

	tr := tracker.New(conversations, events, z)
	if _, err := seed.Load(ctx, tr, seed.Events); err != nil {
		log.Fatal().Err(err).Msg("Failed to load seed")
	}

	mp := processor.NewMessageProcessor(tr, nil)
	ack, err := mp.Ingest(ctx, processor.InboundMessage{
		Channel:   "instagram",
		Sender:    "ig_user_05",
		Message:   "¿Hacen cambios?",
		Timestamp: "2025-11-01T13:00:00Z",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to ingest message")
	}
	log.Info().Str("conversation_id", ack.ConversationID).Bool("opened", ack.Opened).Msg("Live message recorded")

	now := time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC)
	dashboard, err := analytics.New(conversations, events, z).DashboardAt(ctx, now)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute dashboard")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dashboard); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode dashboard")
	}
}
