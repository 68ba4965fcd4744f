package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/NextMind-AI/inbox-analytics/model"
)

// MemoryEventStore keeps messages sorted by timestamp so Range is a binary
// search instead of a scan.
type MemoryEventStore struct {
	mu       sync.RWMutex
	messages []model.Message
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) Add(_ context.Context, msg model.Message) error {
	msg.Timestamp = msg.Timestamp.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.messages), func(i int) bool {
		return s.messages[i].Timestamp.After(msg.Timestamp)
	})
	s.messages = append(s.messages, model.Message{})
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = msg
	return nil
}

func (s *MemoryEventStore) All(_ context.Context) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *MemoryEventStore) Range(_ context.Context, from, to time.Time) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.messages), func(i int) bool {
		return !s.messages[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(s.messages), func(i int) bool {
		return !s.messages[i].Timestamp.Before(to)
	})
	if hi <= lo {
		return []model.Message{}, nil
	}
	out := make([]model.Message, hi-lo)
	copy(out, s.messages[lo:hi])
	return out, nil
}

// MemoryConversationStore is a mutex guarded map of conversations plus the
// customer to open conversation index.
type MemoryConversationStore struct {
	mu             sync.RWMutex
	conversations  map[string]*model.Conversation
	openByCustomer map[string]string
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		conversations:  make(map[string]*model.Conversation),
		openByCustomer: make(map[string]string),
	}
}

func (s *MemoryConversationStore) Open(_ context.Context, conv model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conv.ID]; ok {
		return fmt.Errorf("open %s: %w", conv.ID, model.ErrConversationExists)
	}
	c := cloneConversation(conv)
	s.conversations[conv.ID] = &c
	s.openByCustomer[conv.CustomerID] = conv.ID
	return nil
}

func (s *MemoryConversationStore) Get(_ context.Context, id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	out := cloneConversation(*c)
	return &out, nil
}

func (s *MemoryConversationStore) FindOpenByCustomer(_ context.Context, customerID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.openByCustomer[customerID]
	if !ok {
		return nil, nil
	}
	c, ok := s.conversations[id]
	if !ok || c.ClosedAt != nil {
		return nil, nil
	}
	out := cloneConversation(*c)
	return &out, nil
}

func (s *MemoryConversationStore) UpsertFirstReceived(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conversations[id]; ok && c.FirstReceivedAt == nil {
		t := at.UTC()
		c.FirstReceivedAt = &t
	}
	return nil
}

func (s *MemoryConversationStore) UpsertFirstResponse(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conversations[id]; ok && c.FirstResponseAt == nil {
		t := at.UTC()
		c.FirstResponseAt = &t
	}
	return nil
}

func (s *MemoryConversationStore) Close(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok || c.ClosedAt != nil {
		return nil
	}
	t := at.UTC()
	c.ClosedAt = &t
	if s.openByCustomer[c.CustomerID] == id {
		delete(s.openByCustomer, c.CustomerID)
	}
	return nil
}

func (s *MemoryConversationStore) All(_ context.Context) ([]model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, cloneConversation(*c))
	}
	return out, nil
}

func cloneConversation(c model.Conversation) model.Conversation {
	c.OpenedAt = c.OpenedAt.UTC()
	c.FirstReceivedAt = cloneTime(c.FirstReceivedAt)
	c.FirstResponseAt = cloneTime(c.FirstResponseAt)
	c.ClosedAt = cloneTime(c.ClosedAt)
	c.AssignedAgentID = cloneString(c.AssignedAgentID)
	c.MainTag = cloneString(c.MainTag)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
