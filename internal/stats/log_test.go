package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/testutil"
)

func TestLog_AppendPreservesOrder(t *testing.T) {
	log := NewLog()
	for i := 1; i <= 3; i++ {
		log.Append(probe.Sample{Seq: int64(i), Latency: time.Duration(i) * time.Millisecond})
	}

	require.Equal(t, 3, log.Len())
	samples := log.Samples()
	for i, s := range samples {
		assert.Equal(t, int64(i+1), s.Seq)
	}
	assert.Equal(t, ms(1, 2, 3), log.Latencies())
	assert.Equal(t, 2*time.Millisecond, log.Summary().Median)
}

func TestLog_SamplesReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Append(probe.Sample{Seq: 1})

	samples := log.Samples()
	samples[0].Seq = 99

	assert.Equal(t, int64(1), log.Samples()[0].Seq)
}

func TestLog_RecordsFromProbe(t *testing.T) {
	clock := testutil.NewManualClock()
	var pending []func()
	presenter := probe.PresenterFunc(func(fn func()) { pending = append(pending, fn) })

	log := NewLog()
	p := probe.New(presenter, probe.WithClock(clock), probe.WithRecorder(log))

	for i := 0; i < 4; i++ {
		p.Arm()
		clock.Advance(time.Duration(10+i) * time.Millisecond)
		for _, fn := range pending {
			fn()
		}
		pending = nil
	}

	// One sample per resolved arm, in arm order.
	assert.Equal(t, 4, log.Len())
	assert.Equal(t, ms(10, 11, 12, 13), log.Latencies())
	assert.Equal(t, 11500*time.Microsecond, log.Summary().Median)
}

func TestLog_ConcurrentAppend(t *testing.T) {
	log := NewLog()
	const n = 200

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			log.Append(probe.Sample{Seq: int64(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, log.Len())
}
