// Package x30ctl wires the protocol, transport, queue, event bus, and
// navigation packages into the session controller described in spec
// §4.7: one TCP session to the robot, one message pump, one
// navigation procedure at a time.
package x30ctl

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tailu123/x30ctl/eventbus"
	"github.com/tailu123/x30ctl/metrics"
	"github.com/tailu123/x30ctl/navigation"
	"github.com/tailu123/x30ctl/protocol"
	"github.com/tailu123/x30ctl/queue"
	"github.com/tailu123/x30ctl/transport"
)

type sessionConfig struct {
	waypoints []protocol.NavigationPoint
	bus       *eventbus.Bus
	metrics   metrics.Metrics
}

// SessionOption configures a Session at construction time (same
// functional-options shape as transport.Option).
type SessionOption interface{ apply(*sessionConfig) }

type waypointsOpt []protocol.NavigationPoint

func (o waypointsOpt) apply(c *sessionConfig) { c.waypoints = []protocol.NavigationPoint(o) }

// WithWaypoints sets the preloaded waypoint list a "start" command
// sends (spec §3: "loaded once at session setup; read-only thereafter").
func WithWaypoints(points []protocol.NavigationPoint) SessionOption { return waypointsOpt(points) }

type busOpt struct{ b *eventbus.Bus }

func (o busOpt) apply(c *sessionConfig) { c.bus = o.b }

// WithBus overrides the event bus, mainly for test isolation (spec
// §9: "inject a bus handle" is an acceptable reading of the singleton
// note).
func WithBus(b *eventbus.Bus) SessionOption { return busOpt{b} }

type metricsOpt struct{ m metrics.Metrics }

func (o metricsOpt) apply(c *sessionConfig) { c.metrics = o.m }

// WithMetrics wires a metrics.Metrics sink that tracks navigation task
// outcomes (started/completed/cancelled). Without this option the
// session tracks nothing at this level; pair it with
// transport.WithMetrics on the same sink for frame/byte counters too.
func WithMetrics(m metrics.Metrics) SessionOption { return metricsOpt{m} }

// Session is the root controller (spec §4.7). It owns the message
// queue and the one live navigation procedure; the transport and
// event bus are injected so tests can substitute doubles.
type Session struct {
	cfg   sessionConfig
	queue *queue.Queue
	tr    transport.Transport

	mu              sync.Mutex
	procedure       *navigation.Procedure
	cancelRequested bool

	group        *errgroup.Group
	shutdownOnce sync.Once
}

// New builds a Session around q and tr. q must be the same queue the
// transport was constructed with (transport.New(q, ...)) — the
// transport's receive loop and the session's pump must drain the same
// FIFO. Initialize must be called before any command is handled.
func New(q *queue.Queue, tr transport.Transport, opts ...SessionOption) *Session {
	cfg := sessionConfig{bus: eventbus.Default()}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Session{cfg: cfg, tr: tr, queue: q}
}

// Initialize subscribes the NetworkError handler, connects the
// transport, and spawns the message pump (spec §4.7).
func (s *Session) Initialize(host string, port int) error {
	eventbus.Subscribe(s.cfg.bus, s.handleNetworkError)

	if err := s.tr.Connect(host, port); err != nil {
		return errors.Wrap(err, "x30ctl: initialize")
	}

	s.group = &errgroup.Group{}
	s.group.Go(s.pump)

	return nil
}

// IsConnected reports whether the transport's connection is live.
func (s *Session) IsConnected() bool { return s.tr.IsConnected() }

// Shutdown resets the procedure, disconnects the transport, closes
// the queue, and joins the pump. Idempotent (spec §8 law: "calling
// shutdown twice is equivalent to calling it once").
func (s *Session) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.resetProcedure()
		_ = s.tr.Disconnect()
		s.queue.Close()
		if s.group != nil {
			_ = s.group.Wait()
		}
	})
}

// HandleCommand maps a CLI line onto a synthetic queue message (spec
// §4.7, §6.1). Unknown verbs publish an Error event immediately
// rather than reaching the pump.
func (s *Session) HandleCommand(text string) {
	now := time.Now()
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "start":
		s.queue.Push(&protocol.NavigationTaskRequest{Timestamp: now})
	case "cancel":
		s.queue.Push(&protocol.CancelTaskRequest{Timestamp: now})
	case "status":
		s.queue.Push(&protocol.QueryStatusRequest{Timestamp: now})
	default:
		s.publishError(errors.Wrapf(ErrUnknownCommand, "%q", text).Error())
	}
}

// handleNetworkError tears the connection down and resets the
// procedure, per the subscription Initialize installs (spec §4.7,
// §7: "Terminal for the session").
func (s *Session) handleNetworkError(eventbus.NetworkError) {
	_ = s.tr.Disconnect()
	s.resetProcedure()
}

func (s *Session) resetProcedure() {
	s.mu.Lock()
	proc := s.procedure
	s.procedure = nil
	s.mu.Unlock()

	if proc != nil {
		proc.Stop()
	}
}

// pump is the single message-pump worker (spec §4.7, §5: "exactly
// one worker consuming the queue"). It exits only when the queue is
// closed during Shutdown.
func (s *Session) pump() error {
	for {
		msg, ok := s.queue.Pop()
		if !ok {
			return nil
		}
		s.dispatch(msg)
	}
}

func (s *Session) dispatch(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.NavigationTaskRequest:
		s.onStartRequested()
	case *protocol.CancelTaskRequest:
		s.onCancelRequested(m)
	case *protocol.QueryStatusRequest:
		s.onStatusRequested(m)
	case protocol.ProcedureResetMessage:
		s.onProcedureReset()
	case *protocol.NavigationTaskResponse:
		s.forwardToProcedure(m)
	case *protocol.CancelTaskResponse:
		s.forwardToProcedure(m)
	case *protocol.QueryStatusResponse:
		s.onQueryStatusResponse(m)
	case *protocol.GetRealTimeStatusResponse:
		s.onGetRealTimeStatusResponse(m)
	default:
		s.publishError("unexpected message")
	}
}

// onStartRequested handles synthetic NAV_TASK_REQ (spec §4.7 table).
func (s *Session) onStartRequested() {
	s.mu.Lock()
	if s.procedure != nil {
		s.mu.Unlock()
		s.publishError("navigation task already running")
		return
	}

	navCtx := &navigation.Context{Queue: s.queue, Transport: s.tr, Waypoints: s.cfg.waypoints}
	proc := navigation.NewProcedure(navCtx, nil)
	s.procedure = proc
	s.cancelRequested = false
	s.mu.Unlock()

	if err := proc.Start(); err != nil {
		s.mu.Lock()
		s.procedure = nil
		s.mu.Unlock()
		s.publishError(err.Error())
		return
	}

	if s.cfg.metrics != nil {
		s.cfg.metrics.IncrementTasksStarted()
	}
	s.cfg.bus.Publish(eventbus.NavigationTask{Status: "started"})
}

// onCancelRequested handles synthetic CANCEL_TASK_REQ.
func (s *Session) onCancelRequested(m *protocol.CancelTaskRequest) {
	s.mu.Lock()
	active := s.procedure != nil
	s.mu.Unlock()

	if !active {
		s.publishError("no active navigation task")
		return
	}
	if err := s.tr.Send(m); err != nil {
		s.publishError(err.Error())
		return
	}

	s.mu.Lock()
	s.cancelRequested = true
	s.mu.Unlock()
}

// onStatusRequested handles synthetic QUERY_STATUS_REQ.
func (s *Session) onStatusRequested(m *protocol.QueryStatusRequest) {
	s.mu.Lock()
	active := s.procedure != nil
	s.mu.Unlock()

	if !active {
		s.publishError("no active navigation task")
		return
	}
	if err := s.tr.Send(m); err != nil {
		s.publishError(err.Error())
	}
}

// onProcedureReset handles the machine's Done-entry handshake message
// (spec §9 "Termination handshake"): destruction happens here, on the
// pump, single-threaded.
func (s *Session) onProcedureReset() {
	s.mu.Lock()
	proc := s.procedure
	s.procedure = nil
	cancelled := s.cancelRequested
	s.cancelRequested = false
	s.mu.Unlock()

	if proc != nil {
		proc.Stop()
	}

	if s.cfg.metrics != nil {
		if cancelled {
			s.cfg.metrics.IncrementTasksCancelled()
		} else {
			s.cfg.metrics.IncrementTasksCompleted()
		}
	}
	s.cfg.bus.Publish(eventbus.NavigationTask{Status: "completed"})
}

// onQueryStatusResponse publishes the observer-facing QueryStatus
// event before forwarding to the procedure (spec §8: "for one inbound
// QueryStatusResponse, the QueryStatus event is published before the
// state machine observes the response").
func (s *Session) onQueryStatusResponse(m *protocol.QueryStatusResponse) {
	s.cfg.bus.Publish(eventbus.QueryStatus{
		Status:    m.Status,
		Value:     m.Value,
		Timestamp: m.Timestamp,
		ErrorCode: m.ErrorCode,
	})
	s.forwardToProcedure(m)
}

func (s *Session) onGetRealTimeStatusResponse(m *protocol.GetRealTimeStatusResponse) {
	s.cfg.bus.Publish(eventbus.GetRealTimeStatus{
		Timestamp: m.Timestamp,
		PosX:      m.PosX,
		PosY:      m.PosY,
		PosZ:      m.PosZ,
		SumOdom:   m.SumOdom,
		Location:  m.Location,
	})
}

func (s *Session) forwardToProcedure(msg protocol.Message) {
	s.mu.Lock()
	proc := s.procedure
	s.mu.Unlock()

	if proc == nil {
		return
	}
	if err := proc.ProcessEvent(msg); err != nil {
		s.publishError(err.Error())
	}
}

func (s *Session) publishError(message string) {
	s.cfg.bus.Publish(eventbus.Error{Code: errorEventCode, Message: message})
}
