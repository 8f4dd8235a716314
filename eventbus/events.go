package eventbus

import (
	"time"

	"github.com/tailu123/x30ctl/protocol"
)

// Event is implemented by every event variant the bus can carry. Type
// returns the stable string tag subscribers key off of (spec §4.4).
type Event interface {
	Type() string
}

// NetworkError is published when the transport hits a fatal I/O or
// framing failure (spec §4.2, §7).
type NetworkError struct {
	Message string
}

func (NetworkError) Type() string { return "NetworkError" }

// QueryStatus is published for every inbound QueryStatusResponse, so
// observers outside the navigation procedure can see task progress
// (spec §4.7).
type QueryStatus struct {
	Status    protocol.TaskStatus
	Value     int
	Timestamp time.Time
	ErrorCode protocol.ErrorCode
}

func (QueryStatus) Type() string { return "QueryStatus" }

// GetRealTimeStatus is published for every inbound
// GetRealTimeStatusResponse.
type GetRealTimeStatus struct {
	Timestamp time.Time
	PosX      float64
	PosY      float64
	PosZ      float64
	SumOdom   float64
	Location  protocol.LocationStatus
}

func (GetRealTimeStatus) Type() string { return "GetRealTimeStatus" }

// NavigationTask reports the coarse lifecycle of a navigation
// procedure: "started" when one is created, "completed" when
// PROCEDURE_RESET is processed (spec §4.7).
type NavigationTask struct {
	Status string
}

func (NavigationTask) Type() string { return "NavigationTask" }

// Error reports a user-visible command or protocol failure that
// doesn't end the session (spec §7): an unknown command, a command
// invalid in the current state, or an unexpected message type.
type Error struct {
	Code    int
	Message string
}

func (Error) Type() string { return "Error" }
