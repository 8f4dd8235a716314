// Package navigation implements the guarded state machine and
// periodic status-poll task that drive one navigation task from
// request to completion or cancellation (spec §4.5, §4.6).
package navigation

import (
	"log"
	"time"

	"github.com/tailu123/x30ctl/protocol"
	"github.com/tailu123/x30ctl/queue"
)

// State is one node of the navigation state machine (spec §4.5).
type State string

const (
	StateInit            State = "Init"
	StatePrepareEnterNav State = "PrepareEnterNav"
	StateNav             State = "Nav"
	StateDone            State = "Done"
)

// Event tags index the transition table. eventStart is the
// anonymous trigger fired by Start; the rest name the response
// message type that drives the transition.
const (
	eventStart               = "start"
	eventNavTaskResponse     = "NavigationTaskResponse"
	eventCancelTaskResponse  = "CancelTaskResponse"
	eventQueryStatusResponse = "QueryStatusResponse"
)

// Transport is the minimal send capability the state machine's
// actions need. transport.Transport satisfies this structurally.
type Transport interface {
	Send(msg protocol.Message) error
}

// Context is the borrowed handle set the machine's actions and
// Done-entry handshake operate on (spec §4.5, §9 "Cyclic ownership").
// The queue and transport outlive any one Context; the machine never
// takes ownership of either.
type Context struct {
	Queue     *queue.Queue
	Transport Transport
	Waypoints []protocol.NavigationPoint
}

// Guard is a pure predicate over the triggering response message. A
// nil Guard always matches.
type Guard func(msg protocol.Message) bool

// Action runs a transition's side effect against the shared context.
type Action func(ctx *Context) error

type transition struct {
	from   State
	event  string
	guard  Guard
	action Action
	to     State
}

func guardCancelSucceeded(msg protocol.Message) bool {
	resp, ok := msg.(*protocol.CancelTaskResponse)
	return ok && resp.ErrorCode == protocol.ErrorCodeSuccess
}

func guardStatusCompleted(msg protocol.Message) bool {
	resp, ok := msg.(*protocol.QueryStatusResponse)
	return ok && resp.Status == protocol.TaskCompleted
}

func guardStatusExecuting(msg protocol.Message) bool {
	resp, ok := msg.(*protocol.QueryStatusResponse)
	return ok && resp.Status == protocol.TaskExecuting
}

// SendNavRequest builds a NavigationTaskRequest from the context's
// preloaded waypoints and sends it (spec §4.5 actions).
func SendNavRequest(ctx *Context) error {
	return ctx.Transport.Send(&protocol.NavigationTaskRequest{
		Points:    ctx.Waypoints,
		Timestamp: time.Now(),
	})
}

// SendGetRealTimeStatusRequest sends an immediate pose query as the
// side effect of the Nav self-loop (spec §4.5 actions).
func SendGetRealTimeStatusRequest(ctx *Context) error {
	return ctx.Transport.Send(&protocol.GetRealTimeStatusRequest{Timestamp: time.Now()})
}

// table is the data-driven (state, event) -> (state, action, guard)
// transition table (spec §4.5, §9: replaces the source's FSM
// template library with an explicit table). Rows are tried in order;
// the first row whose from/event match and whose guard passes (or is
// nil) wins.
var table = []transition{
	{from: StateInit, event: eventStart, action: SendNavRequest, to: StatePrepareEnterNav},

	{from: StatePrepareEnterNav, event: eventNavTaskResponse, to: StateDone},
	{from: StatePrepareEnterNav, event: eventCancelTaskResponse, guard: guardCancelSucceeded, to: StateDone},
	{from: StatePrepareEnterNav, event: eventQueryStatusResponse, guard: guardStatusCompleted, to: StateDone},
	{from: StatePrepareEnterNav, event: eventQueryStatusResponse, guard: guardStatusExecuting, to: StateNav},

	{from: StateNav, event: eventCancelTaskResponse, guard: guardCancelSucceeded, to: StateDone},
	{from: StateNav, event: eventNavTaskResponse, to: StateDone},
	{from: StateNav, event: eventQueryStatusResponse, guard: guardStatusExecuting, action: SendGetRealTimeStatusRequest, to: StateNav},
	{from: StateNav, event: eventQueryStatusResponse, guard: guardStatusCompleted, to: StateDone},
}

// Machine is the navigation procedure's guarded state machine. It is
// not safe for concurrent use; the session pump is its sole caller
// (spec §5: "Procedure handle in the session is mutated only by the
// pump task").
type Machine struct {
	state  State
	ctx    *Context
	onDone func()
}

// NewMachine builds a Machine in its initial Init state.
func NewMachine(ctx *Context, onDone func()) *Machine {
	return &Machine{state: StateInit, ctx: ctx, onDone: onDone}
}

// State returns the machine's current state.
func (m *Machine) State() State { return m.state }

// Start fires the anonymous start trigger, moving Init -> PrepareEnterNav
// and sending the initial NavigationTaskRequest.
func (m *Machine) Start() error {
	return m.fire(eventStart, nil)
}

// fire looks up the first matching row for (m.state, event) whose
// guard passes, runs its action, and moves to its target state. A
// miss is dropped with a warning, per spec §4.5: "not an error."
func (m *Machine) fire(event string, msg protocol.Message) error {
	if m.state == StateDone {
		return nil
	}

	for _, row := range table {
		if row.from != m.state || row.event != event {
			continue
		}
		if row.guard != nil && !row.guard(msg) {
			continue
		}

		if row.action != nil {
			if err := row.action(m.ctx); err != nil {
				return err
			}
		}

		m.state = row.to
		if m.state == StateDone {
			m.enterDone()
		}
		return nil
	}

	log.Printf("navigation: no transition for state=%s event=%s, dropped", m.state, event)
	return nil
}

// enterDone runs the Done-entry handshake (spec §4.5): empty the
// queue, enqueue PROCEDURE_RESET, and invoke the terminate callback.
// It does not destroy the procedure itself (spec §9 "Termination
// handshake") — that happens single-threaded on the pump when it
// dequeues PROCEDURE_RESET.
func (m *Machine) enterDone() {
	m.ctx.Queue.Clear()
	m.ctx.Queue.Push(protocol.ProcedureResetMessage{})
	if m.onDone != nil {
		m.onDone()
	}
}

// Dispatch routes an inbound response message into the machine,
// translating it to the matching event tag (spec §4.6
// process_event). Any other message type is ignored here and never
// reaches the table.
func (m *Machine) Dispatch(msg protocol.Message) error {
	switch msg.(type) {
	case *protocol.NavigationTaskResponse:
		return m.fire(eventNavTaskResponse, msg)
	case *protocol.CancelTaskResponse:
		return m.fire(eventCancelTaskResponse, msg)
	case *protocol.QueryStatusResponse:
		return m.fire(eventQueryStatusResponse, msg)
	default:
		return nil
	}
}
