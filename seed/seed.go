// Package seed holds the demo inbox used to populate an empty store: two
// weeks of traffic, 27 Oct to 2 Nov 2025 and the week before.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/tracker"
)

// Event is a raw seed entry in ingestion shape.
type Event struct {
	Channel   string `json:"channel"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Outgoing  bool   `json:"outgoing"`
	AgentID   string `json:"agent_id,omitempty"`
}

var Events = []Event{
	{"gmail", "cliente3@gmail.com", "¿Hay pick-up en local?", "2025-10-20T15:00:00Z", false, ""},
	{"gmail", "cliente3@gmail.com", "Sí, de 10 a 19 hs", "2025-10-20T15:04:00Z", true, ""},
	{"instagram", "ig_user_03", "¿Medios de pago?", "2025-10-22T18:30:00Z", false, ""},
	{"whatsapp", "+54911-BBB", "¿Horario de atención?", "2025-10-23T13:00:00Z", false, ""},
	{"whatsapp", "+54911-BBB", "De 10 a 19 hs.", "2025-10-25T11:06:00Z", true, ""},

	{"whatsapp", "+54911-AAA", "Vuelvo por el tema del talle", "2025-10-27T14:00:00Z", false, ""},
	{"whatsapp", "+54911-AAA", "Te guardo M y L", "2025-10-27T14:06:00Z", true, ""},
	{"gmail", "cliente1@gmail.com", "Quiero info de envíos", "2025-10-28T15:00:00Z", false, ""},
	{"gmail", "cliente1@gmail.com", "Hacemos a todo el país por OCA", "2025-10-28T15:05:00Z", true, ""},
	{"instagram", "ig_user_01", "Precio del combo?", "2025-10-29T14:10:00Z", false, ""},
	{"instagram", "ig_user_01", "Sale $25.000. ¿Te sirve?", "2025-10-29T14:14:00Z", true, ""},
	{"whatsapp", "+54911...", "Hola", "2025-10-30T12:00:00Z", false, ""},
	{"whatsapp", "+54911...", "¡Hola! ¿En qué puedo ayudarte?", "2025-10-30T12:03:00Z", true, ""},
	{"whatsapp", "+54911-CCC", "Consulta por envío a CABA", "2025-10-31T13:00:00Z", false, ""},
	{"whatsapp", "+54911-CCC", "En CABA llega en 24/48 hs.", "2025-10-31T13:06:00Z", true, ""},
	{"gmail", "cliente4@gmail.com", "¿Cuánto tarda a Rosario?", "2025-11-01T12:20:00Z", false, ""},
	{"gmail", "cliente4@gmail.com", "Entre 3 y 5 días hábiles", "2025-11-01T12:26:00Z", true, ""},
	{"instagram", "ig_user_04", "¿Tienen talla S negra?", "2025-11-02T14:00:00Z", false, ""},
	{"whatsapp", "+54911-AAA", "¿Puedo pasar hoy a retirar?", "2025-11-02T16:00:00Z", false, ""},
	{"whatsapp", "+54911-AAA", "Sí, hoy de 16 a 19", "2025-11-02T16:05:00Z", true, ""},
}

// Messages converts events to messages. A malformed channel or timestamp
// fails the whole conversion.
func Messages(events []Event) ([]model.Message, error) {
	out := make([]model.Message, 0, len(events))
	for i, ev := range events {
		ch, err := model.ParseChannel(ev.Channel)
		if err != nil {
			return nil, fmt.Errorf("seed event %d: %w", i, err)
		}
		ts, err := model.ParseTimestamp(ev.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("seed event %d: %w", i, err)
		}
		msg := model.Message{
			Channel:   ch,
			Sender:    ev.Sender,
			Text:      ev.Message,
			Timestamp: ts,
			Outgoing:  ev.Outgoing,
		}
		if ev.AgentID != "" {
			agent := ev.AgentID
			msg.AgentID = &agent
		}
		out = append(out, msg)
	}
	return out, nil
}

// Load records events through the tracker's bulk path.
func Load(ctx context.Context, t *tracker.Tracker, events []Event) ([]tracker.Outcome, error) {
	msgs, err := Messages(events)
	if err != nil {
		return nil, err
	}

	outcomes, err := t.Load(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("loading seed: %w", err)
	}

	opened := 0
	for _, o := range outcomes {
		if o.Opened {
			opened++
		}
	}
	log.Info().
		Int("messages", len(outcomes)).
		Int("conversations", opened).
		Msg("Seed loaded")
	return outcomes, nil
}
