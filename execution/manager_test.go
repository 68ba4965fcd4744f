package execution

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSerialisesSameCustomer(t *testing.T) {
	m := NewManager()
	var active, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Do(context.Background(), "A", func(context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
	assert.Equal(t, 0, m.Len())
}

func TestDifferentCustomersDoNotBlock(t *testing.T) {
	m := NewManager()
	releaseA, err := m.Acquire(context.Background(), "A")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := m.Acquire(ctx, "B")
	require.NoError(t, err)
	releaseB()
}

func TestAcquireHonoursContext(t *testing.T) {
	m := NewManager()
	release, err := m.Acquire(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = m.Acquire(ctx, "A")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	assert.Equal(t, 0, m.Len())
}

func TestDoPropagatesError(t *testing.T) {
	m := NewManager()
	want := assert.AnError
	err := m.Do(context.Background(), "A", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}
