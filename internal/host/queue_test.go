package host

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[int]()
	for i := 1; i <= 3; i++ {
		require.True(t, q.Enqueue(i))
	}

	for i := 1; i <= 3; i++ {
		v, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestQueue_DrainTakesSnapshot(t *testing.T) {
	q := newQueue[string]()
	q.Enqueue("a")
	q.Enqueue("b")

	got := q.Drain()
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())

	// Items added after a drain are not part of it
	q.Enqueue("c")
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_CloseRejectsAndWakes(t *testing.T) {
	q := newQueue[int]()

	woke := make(chan struct{})
	go func() {
		<-q.Wait()
		close(woke)
	}()

	q.Close()
	q.Close() // idempotent
	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(1))

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Close")
	}
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newQueue[int]()
	const n = 500

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			q.Enqueue(i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, q.Drain(), n)
}
