package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_AdmitsUpToCap(t *testing.T) {
	q := NewQueue(1, 10*time.Millisecond)
	defer q.Close()

	var mu sync.Mutex
	var order []string
	release := make(chan struct{})

	q.Submit(PriorityNormal, func() error {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
		<-release
		return nil
	})
	q.Submit(PriorityNormal, func() error {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		return nil
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_HigherPriorityRunsFirst(t *testing.T) {
	q := NewQueue(1, 10*time.Millisecond)
	defer q.Close()

	var mu sync.Mutex
	var order []string
	started := make(chan struct{})
	release := make(chan struct{})

	q.Submit(PriorityNormal, func() error {
		close(started)
		<-release
		mu.Lock()
		order = append(order, "blocker")
		mu.Unlock()
		return nil
	})
	<-started

	q.Submit(PriorityLow, func() error {
		mu.Lock()
		order = append(order, "low")
		mu.Unlock()
		return nil
	})
	q.Submit(PriorityUrgent, func() error {
		mu.Lock()
		order = append(order, "urgent")
		mu.Unlock()
		return nil
	})
	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"blocker", "urgent", "low"}, order)
}

func TestQueue_LenReflectsPending(t *testing.T) {
	q := NewQueue(0, 10*time.Millisecond)
	defer q.Close()
	q.Submit(PriorityNormal, func() error { return nil })
	assert.Equal(t, 1, q.Len())
}
