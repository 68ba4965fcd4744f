// Package execution serialises work per customer.
package execution

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type customerLock struct {
	ch   chan struct{}
	refs int
}

// Manager hands out one lock per customer id. Entries are dropped once no
// caller holds or waits on them.
type Manager struct {
	locks map[string]*customerLock
	mutex sync.Mutex
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[string]*customerLock),
	}
}

// Acquire blocks until the customer's lock is held or ctx is done. The
// returned release func must be called exactly once.
func (m *Manager) Acquire(ctx context.Context, customerID string) (func(), error) {
	m.mutex.Lock()
	l, ok := m.locks[customerID]
	if !ok {
		l = &customerLock{ch: make(chan struct{}, 1)}
		m.locks[customerID] = l
	}
	l.refs++
	m.mutex.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			m.unref(customerID, l)
		}, nil
	case <-ctx.Done():
		log.Debug().Str("customer_id", customerID).Msg("Gave up waiting for customer lock")
		m.unref(customerID, l)
		return nil, ctx.Err()
	}
}

// Do runs fn while holding the customer's lock.
func (m *Manager) Do(ctx context.Context, customerID string, fn func(context.Context) error) error {
	release, err := m.Acquire(ctx, customerID)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

func (m *Manager) unref(customerID string, l *customerLock) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	l.refs--
	if l.refs == 0 && m.locks[customerID] == l {
		delete(m.locks, customerID)
	}
}

// Len reports how many customers currently have a lock entry.
func (m *Manager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.locks)
}
