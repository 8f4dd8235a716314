package transport

import (
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/tailu123/x30ctl/eventbus"
	"github.com/tailu123/x30ctl/metrics"
	"github.com/tailu123/x30ctl/protocol"
	"github.com/tailu123/x30ctl/queue"
)

type config struct {
	syncBytes   [4]byte
	dialTimeout time.Duration
	metrics     metrics.Metrics
}

// Option configures a TCPTransport at construction time, following
// the same functional-options shape as the session controller's own
// options.
type Option interface{ apply(*config) }

type syncBytesOpt [4]byte

func (o syncBytesOpt) apply(c *config) { c.syncBytes = [4]byte(o) }

// WithSyncBytes overrides the header sync-byte constant the receive
// loop validates against (spec §9 open question: "agree with the
// peer or make it configurable").
func WithSyncBytes(b [4]byte) Option { return syncBytesOpt(b) }

type dialTimeoutOpt time.Duration

func (o dialTimeoutOpt) apply(c *config) { c.dialTimeout = time.Duration(o) }

// WithDialTimeout overrides the default 10s connect timeout.
func WithDialTimeout(d time.Duration) Option { return dialTimeoutOpt(d) }

type metricsOpt struct{ m metrics.Metrics }

func (o metricsOpt) apply(c *config) { c.metrics = o.m }

// WithMetrics wires a metrics.Metrics sink that every sent and
// received frame is counted against. Without this option the
// transport tracks nothing.
func WithMetrics(m metrics.Metrics) Option { return metricsOpt{m} }

// TCPTransport is the production Transport: one net.Conn, a
// single-in-flight write lane, and a receive loop pushing parsed
// messages onto a queue.Queue (spec §4.2).
type TCPTransport struct {
	cfg   config
	queue *queue.Queue
	bus   *eventbus.Bus

	mu        sync.Mutex
	conn      net.Conn
	connected atomic.Bool
	writeCh   chan []byte
	done      chan struct{}
	closeOnce *sync.Once
	failOnce  *sync.Once
}

// New builds a TCPTransport that pushes received messages onto q and
// publishes NetworkError events on bus.
func New(q *queue.Queue, bus *eventbus.Bus, opts ...Option) *TCPTransport {
	cfg := config{syncBytes: protocol.DefaultSyncBytes, dialTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &TCPTransport{cfg: cfg, queue: q, bus: bus}
}

// Connect dials host:port and starts the receive and write-lane
// goroutines (spec §4.2: "resolves and connects; after success
// begins reading").
func (t *TCPTransport) Connect(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, t.cfg.dialTimeout)
	if err != nil {
		return errors.Wrap(err, "transport: connect")
	}

	t.mu.Lock()
	t.conn = conn
	t.writeCh = make(chan []byte, 256)
	t.done = make(chan struct{})
	t.closeOnce = &sync.Once{}
	t.failOnce = &sync.Once{}
	t.mu.Unlock()

	t.connected.Store(true)

	go t.recvLoop(conn)
	go t.writeLoop(conn)

	return nil
}

// Disconnect closes the socket idempotently (spec §4.2).
func (t *TCPTransport) Disconnect() error {
	t.mu.Lock()
	conn, once, done := t.conn, t.closeOnce, t.done
	t.mu.Unlock()

	if conn == nil {
		return nil
	}

	var err error
	once.Do(func() {
		t.connected.Store(false)
		close(done)
		err = conn.Close()
	})
	return err
}

func (t *TCPTransport) IsConnected() bool { return t.connected.Load() }

// Send serializes msg and hands it to the write lane, enforcing
// at-most-one-write-in-flight by construction: writeLoop is the only
// reader of writeCh (spec §4.2, grounded on the single-writer
// guarantee nemith-netconf's Framer enforces with activeWriter).
func (t *TCPTransport) Send(msg protocol.Message) error {
	if !t.connected.Load() {
		return errors.New("transport: send while disconnected")
	}

	frame, err := protocol.Serialize(msg)
	if err != nil {
		return errors.Wrap(err, "transport: serialize")
	}

	t.mu.Lock()
	writeCh, done := t.writeCh, t.done
	t.mu.Unlock()

	select {
	case writeCh <- frame:
		return nil
	case <-done:
		return errors.New("transport: send after disconnect")
	}
}

func (t *TCPTransport) writeLoop(conn net.Conn) {
	t.mu.Lock()
	writeCh, done := t.writeCh, t.done
	t.mu.Unlock()

	for {
		select {
		case <-done:
			return
		case frame := <-writeCh:
			if _, err := conn.Write(frame); err != nil {
				t.fail(errors.Wrap(err, "transport: write"))
				return
			}
			if t.cfg.metrics != nil {
				t.cfg.metrics.IncrementFramesSent()
				t.cfg.metrics.IncrementBytesSent(int64(len(frame)))
			}
		}
	}
}

// recvLoop implements the receive loop of spec §4.2: read header,
// validate sync bytes, read body, parse, push onto the queue; any
// failure is fatal to the session.
func (t *TCPTransport) recvLoop(conn net.Conn) {
	header := make([]byte, protocol.HeaderSize)

	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			if t.shuttingDown() {
				return
			}
			t.fail(errors.Wrap(err, "transport: read header"))
			return
		}

		var hdr protocol.Header
		if err := hdr.UnmarshalBinary(header); err != nil {
			t.fail(errors.Wrap(err, "transport: decode header"))
			return
		}
		if !hdr.Valid(t.cfg.syncBytes) {
			t.fail(errors.Wrap(protocol.ErrBadSyncBytes, "transport"))
			return
		}

		body := make([]byte, hdr.Length)
		if _, err := io.ReadFull(conn, body); err != nil {
			if t.shuttingDown() {
				return
			}
			t.fail(errors.Wrap(err, "transport: read body"))
			return
		}

		msg, err := protocol.Parse(body)
		if err != nil {
			t.fail(errors.Wrap(err, "transport: parse"))
			return
		}

		if t.cfg.metrics != nil {
			t.cfg.metrics.IncrementFramesReceived()
			t.cfg.metrics.IncrementBytesReceived(int64(len(header) + len(body)))
		}

		t.queue.Push(msg)
	}
}

func (t *TCPTransport) shuttingDown() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// fail publishes one NetworkError for the connection's lifetime and
// tears the connection down (spec §4.2, §7: "Terminal for the
// session; published as an event, followed by transport close").
func (t *TCPTransport) fail(err error) {
	t.mu.Lock()
	once := t.failOnce
	t.mu.Unlock()

	once.Do(func() {
		t.bus.Publish(eventbus.NetworkError{Message: err.Error()})
		_ = t.Disconnect()
	})
}
