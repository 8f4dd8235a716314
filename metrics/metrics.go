// Package metrics tracks counters for frames and navigation task
// outcomes, modeled directly on the counter/accessor shape used
// elsewhere in the wider transport corpus this controller's transport
// layer is patterned on.
package metrics

import "sync/atomic"

// Metrics is implemented by anything that wants to observe transport
// and navigation activity. Increment* is called by producers
// (transport, session controller); Get* is called by collectors.
type Metrics interface {
	IncrementFramesSent()
	IncrementFramesReceived()
	IncrementBytesSent(n int64)
	IncrementBytesReceived(n int64)
	IncrementTasksStarted()
	IncrementTasksCompleted()
	IncrementTasksCancelled()

	GetFramesSent() int64
	GetFramesReceived() int64
	GetBytesSent() int64
	GetBytesReceived() int64
	GetTasksStarted() int64
	GetTasksCompleted() int64
	GetTasksCancelled() int64
}

// DefaultMetrics implements Metrics with atomic counters.
type DefaultMetrics struct {
	framesSent     int64
	framesReceived int64
	bytesSent      int64
	bytesReceived  int64
	tasksStarted   int64
	tasksCompleted int64
	tasksCancelled int64
}

// New creates an empty DefaultMetrics.
func New() *DefaultMetrics { return &DefaultMetrics{} }

func (m *DefaultMetrics) IncrementFramesSent()         { atomic.AddInt64(&m.framesSent, 1) }
func (m *DefaultMetrics) IncrementFramesReceived()     { atomic.AddInt64(&m.framesReceived, 1) }
func (m *DefaultMetrics) IncrementBytesSent(n int64)   { atomic.AddInt64(&m.bytesSent, n) }
func (m *DefaultMetrics) IncrementBytesReceived(n int64) { atomic.AddInt64(&m.bytesReceived, n) }
func (m *DefaultMetrics) IncrementTasksStarted()       { atomic.AddInt64(&m.tasksStarted, 1) }
func (m *DefaultMetrics) IncrementTasksCompleted()     { atomic.AddInt64(&m.tasksCompleted, 1) }
func (m *DefaultMetrics) IncrementTasksCancelled()     { atomic.AddInt64(&m.tasksCancelled, 1) }

func (m *DefaultMetrics) GetFramesSent() int64     { return atomic.LoadInt64(&m.framesSent) }
func (m *DefaultMetrics) GetFramesReceived() int64 { return atomic.LoadInt64(&m.framesReceived) }
func (m *DefaultMetrics) GetBytesSent() int64      { return atomic.LoadInt64(&m.bytesSent) }
func (m *DefaultMetrics) GetBytesReceived() int64  { return atomic.LoadInt64(&m.bytesReceived) }
func (m *DefaultMetrics) GetTasksStarted() int64   { return atomic.LoadInt64(&m.tasksStarted) }
func (m *DefaultMetrics) GetTasksCompleted() int64 { return atomic.LoadInt64(&m.tasksCompleted) }
func (m *DefaultMetrics) GetTasksCancelled() int64 { return atomic.LoadInt64(&m.tasksCancelled) }
