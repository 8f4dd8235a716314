package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailu123/x30ctl/protocol"
)

func TestFIFOOrder(t *testing.T) {
	q := New()
	a := &protocol.CancelTaskRequest{}
	b := &protocol.QueryStatusRequest{}
	c := &protocol.GetRealTimeStatusRequest{}

	q.Push(a)
	q.Push(b)
	q.Push(c)

	for _, want := range []protocol.Message{a, b, c} {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Same(t, want, got)
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New()
	done := make(chan protocol.Message, 1)

	go func() {
		msg, ok := q.Pop()
		if ok {
			done <- msg
		}
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Pop returned before any Push")
	default:
	}

	want := &protocol.QueryStatusRequest{}
	q.Push(want)

	select {
	case got := <-done:
		assert.Same(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("Pop never returned after Push")
	}
}

func TestCloseUnblocksPendingPop(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	results := make([]bool, 4)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := q.Pop()
			results[i] = ok
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()
	wg.Wait()

	for _, ok := range results {
		assert.False(t, ok)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := New()
	q.Close()
	assert.NotPanics(t, func() { q.Close() })

	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestClearDropsPending(t *testing.T) {
	q := New()
	q.Push(&protocol.QueryStatusRequest{})
	q.Push(&protocol.CancelTaskRequest{})
	q.Clear()
	q.Push(&protocol.GetRealTimeStatusRequest{})

	msg, ok := q.Pop()
	require.True(t, ok)
	_, isStatus := msg.(*protocol.GetRealTimeStatusRequest)
	assert.True(t, isStatus)
}

func TestPushAfterCloseIsNoop(t *testing.T) {
	q := New()
	q.Close()
	q.Push(&protocol.QueryStatusRequest{})

	_, ok := q.Pop()
	assert.False(t, ok)
}
