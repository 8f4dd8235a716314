package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersStartAtZero(t *testing.T) {
	m := New()
	assert.Zero(t, m.GetFramesSent())
	assert.Zero(t, m.GetBytesReceived())
	assert.Zero(t, m.GetTasksCompleted())
}

func TestIncrementIsConcurrencySafe(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementFramesSent()
			m.IncrementBytesSent(10)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), m.GetFramesSent())
	assert.Equal(t, int64(1000), m.GetBytesSent())
}

func TestTaskOutcomeCounters(t *testing.T) {
	m := New()
	m.IncrementTasksStarted()
	m.IncrementTasksStarted()
	m.IncrementTasksCompleted()
	m.IncrementTasksCancelled()

	assert.Equal(t, int64(2), m.GetTasksStarted())
	assert.Equal(t, int64(1), m.GetTasksCompleted())
	assert.Equal(t, int64(1), m.GetTasksCancelled())
}
