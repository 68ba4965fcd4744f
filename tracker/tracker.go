// Package tracker decides when a message opens a new conversation and keeps
// the conversation timestamps current.
//
// Two segmentation rules exist. RuleOpenConversation opens a conversation
// only when the customer has none open in the conversation store.
// RuleDayBoundary opens one whenever the local calendar date of the event
// differs from that of the sender's last opened conversation in the same
// Session, and is the rule used for bulk loads.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/execution"
	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

type Rule int

const (
	RuleOpenConversation Rule = iota
	RuleDayBoundary
)

func (r Rule) String() string {
	switch r {
	case RuleOpenConversation:
		return "open"
	case RuleDayBoundary:
		return "day"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// ParseRule accepts the names printed by Rule.String.
func ParseRule(s string) (Rule, error) {
	switch s {
	case "open":
		return RuleOpenConversation, nil
	case "day":
		return RuleDayBoundary, nil
	default:
		return 0, fmt.Errorf("unknown segmentation rule %q", s)
	}
}

// Outcome reports which conversation a message was attributed to.
type Outcome struct {
	ConversationID string `json:"conversation_id"`
	Opened         bool   `json:"opened"`
}

type Tracker struct {
	conversations store.ConversationStore
	events        store.EventStore
	zone          *zone.Zone
	locks         *execution.Manager
	live          *Session
}

type Option func(*Tracker)

// WithLiveRule selects the rule used by Record. The default is
// RuleOpenConversation.
func WithLiveRule(rule Rule) Option {
	return func(t *Tracker) {
		t.live = t.NewSession(rule)
	}
}

// WithLocks shares a lock manager with other components. A private one is
// created otherwise.
func WithLocks(m *execution.Manager) Option {
	return func(t *Tracker) {
		t.locks = m
	}
}

func New(conversations store.ConversationStore, events store.EventStore, z *zone.Zone, opts ...Option) *Tracker {
	t := &Tracker{
		conversations: conversations,
		events:        events,
		zone:          z,
		locks:         execution.NewManager(),
	}
	t.live = t.NewSession(RuleOpenConversation)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) LiveRule() Rule {
	return t.live.rule
}

func (t *Tracker) Zone() *zone.Zone {
	return t.zone
}

// Record applies the live rule to a single message.
func (t *Tracker) Record(ctx context.Context, msg model.Message) (Outcome, error) {
	return t.live.Record(ctx, msg)
}

// Load sorts msgs by timestamp, keeping the relative order of equal
// timestamps, and records them with RuleDayBoundary in a fresh session.
func (t *Tracker) Load(ctx context.Context, msgs []model.Message) ([]Outcome, error) {
	ordered := make([]model.Message, len(msgs))
	copy(ordered, msgs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	session := t.NewSession(RuleDayBoundary)
	outcomes := make([]Outcome, 0, len(ordered))
	for _, msg := range ordered {
		out, err := session.Record(ctx, msg)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}

	log.Info().
		Int("messages", len(ordered)).
		Int("senders", session.Senders()).
		Msg("Bulk load completed")
	return outcomes, nil
}

// NewSession starts a segmentation session. Day boundary state is kept per
// session, so independent bulk sources do not affect each other.
func (t *Tracker) NewSession(rule Rule) *Session {
	return &Session{
		tracker: t,
		rule:    rule,
		senders: make(map[string]senderState),
	}
}

type senderState struct {
	conversationID string
	lastDate       zone.Date
}

type Session struct {
	tracker *Tracker
	rule    Rule

	mu      sync.Mutex
	senders map[string]senderState
}

func (s *Session) Rule() Rule {
	return s.rule
}

// Senders returns how many senders the session has seen.
func (s *Session) Senders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.senders)
}

// Record attributes msg to a conversation, opening one when the session's
// rule says so, updates the set-once timestamps and appends msg to the
// event log. All of it runs under the sender's lock.
func (s *Session) Record(ctx context.Context, msg model.Message) (Outcome, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Timestamp = msg.Timestamp.UTC()

	var out Outcome
	err := s.tracker.locks.Do(ctx, msg.Sender, func(ctx context.Context) error {
		var err error
		out, err = s.record(ctx, msg)
		return err
	})
	return out, err
}

func (s *Session) record(ctx context.Context, msg model.Message) (Outcome, error) {
	t := s.tracker
	conversations := t.conversations

	id, open, err := s.resolve(ctx, msg)
	if err != nil {
		return Outcome{}, err
	}

	if open {
		id, err = s.open(ctx, msg)
		if err != nil {
			return Outcome{}, err
		}
		s.remember(msg.Sender, id, t.zone.Date(msg.Timestamp))

		log.Debug().
			Str("conversation_id", id).
			Str("sender", msg.Sender).
			Str("channel", msg.Channel.String()).
			Str("rule", s.rule.String()).
			Msg("Conversation opened")
	}

	// An outbound message may have opened the conversation, so inbound
	// messages always try to fill first_received_at.
	if msg.Outgoing {
		err = conversations.UpsertFirstResponse(ctx, id, msg.Timestamp)
	} else {
		err = conversations.UpsertFirstReceived(ctx, id, msg.Timestamp)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("updating conversation %s: %w", id, err)
	}

	if err := t.events.Add(ctx, msg); err != nil {
		return Outcome{}, fmt.Errorf("logging message %s: %w", msg.ID, err)
	}

	return Outcome{ConversationID: id, Opened: open}, nil
}

// maxIDSuffix bounds the search for a free id when several conversations of
// one sender open within the same second.
const maxIDSuffix = 100

// open creates the conversation msg starts. Ids have one-second resolution,
// so a taken id gets a numeric suffix rather than replacing the stored
// conversation.
func (s *Session) open(ctx context.Context, msg model.Message) (string, error) {
	base := model.ConversationID(msg.Sender, msg.Timestamp)
	conv := model.Conversation{
		ID:              base,
		CustomerID:      msg.Sender,
		OpenedAt:        msg.Timestamp,
		Channel:         msg.Channel,
		AssignedAgentID: msg.AgentID,
		MainTag:         msg.Tag,
	}

	for n := 2; ; n++ {
		err := s.tracker.conversations.Open(ctx, conv)
		if err == nil {
			return conv.ID, nil
		}
		if !errors.Is(err, model.ErrConversationExists) || n > maxIDSuffix {
			return "", fmt.Errorf("opening conversation for %s: %w", msg.Sender, err)
		}
		conv.ID = fmt.Sprintf("%s-%d", base, n)
	}
}

// resolve returns the sender's current conversation id, or open=true when a
// new conversation is due.
func (s *Session) resolve(ctx context.Context, msg model.Message) (string, bool, error) {
	switch s.rule {
	case RuleDayBoundary:
		s.mu.Lock()
		state, ok := s.senders[msg.Sender]
		s.mu.Unlock()
		if !ok || state.lastDate != s.tracker.zone.Date(msg.Timestamp) {
			return "", true, nil
		}
		return state.conversationID, false, nil

	case RuleOpenConversation:
		conv, err := s.tracker.conversations.FindOpenByCustomer(ctx, msg.Sender)
		if err != nil {
			return "", false, fmt.Errorf("looking up open conversation for %s: %w", msg.Sender, err)
		}
		if conv == nil {
			return "", true, nil
		}
		return conv.ID, false, nil

	default:
		return "", false, fmt.Errorf("unsupported segmentation rule %s", s.rule)
	}
}

func (s *Session) remember(sender, conversationID string, date zone.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.senders[sender] = senderState{conversationID: conversationID, lastDate: date}
}
