package navigation

import (
	"context"
	"log"
	"time"

	"github.com/tailu123/x30ctl/protocol"
)

// pollInterval is the status-poll cadence (spec §4.6: "every 1000
// ms"). A var, not a const, so tests can shrink it.
var pollInterval = 1000 * time.Millisecond

// Procedure owns one navigation task's state machine plus the
// periodic status-poll task that keeps probing progress until Stop is
// called; reaching Done does not stop the poll by itself (spec §4.6).
type Procedure struct {
	machine *Machine
	ctx     *Context

	cancel context.CancelFunc
	done   chan struct{}
}

// NewProcedure builds a Procedure in its initial state. onDone is the
// terminate callback the machine invokes on entry to Done (spec
// §4.5); it does not stop the ticker itself — Stop/the destructor do.
func NewProcedure(navCtx *Context, onDone func()) *Procedure {
	p := &Procedure{ctx: navCtx}
	p.machine = NewMachine(navCtx, onDone)
	return p
}

// State returns the procedure's current state machine state.
func (p *Procedure) State() State { return p.machine.State() }

// Start fires Init -> PrepareEnterNav (sending the initial
// NavigationTaskRequest) and spawns the status-poll ticker (spec
// §4.6, steps 1-2).
func (p *Procedure) Start() error {
	if err := p.machine.Start(); err != nil {
		return err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.pollLoop(pollCtx)

	return nil
}

// pollLoop sends a QueryStatusRequest every pollInterval until
// cancelled (spec §5: "Ticker sleeps on a timer").
func (p *Procedure) pollLoop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ctx.Transport.Send(&protocol.QueryStatusRequest{Timestamp: time.Now()}); err != nil {
				log.Printf("navigation: status poll send failed: %v", err)
			}
		}
	}
}

// ProcessEvent dispatches a response message into the state machine
// (spec §4.6: "dispatches response messages... other message types
// are ignored by the procedure"). Non-response types are no-ops here.
func (p *Procedure) ProcessEvent(msg protocol.Message) error {
	switch msg.Type() {
	case protocol.NavTaskResp, protocol.CancelTaskResp, protocol.QueryStatusResp:
		return p.machine.Dispatch(msg)
	default:
		return nil
	}
}

// Stop halts the status-poll task and waits for it to exit, mirroring
// the spec's procedure destructor (§4.6: "stops the ticker and joins
// it before returning"). Safe to call on a Procedure whose poll task
// was never spawned (Start not called, or Start returned an error).
func (p *Procedure) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}
