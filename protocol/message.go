package protocol

import (
	"time"

	"github.com/pkg/errors"
)

// TimestampLayout is the ISO-like wire format used by the <Time>
// field of every message (spec §6.2).
const TimestampLayout = "2006-01-02 15:04:05"

// MessageType is the numeric tag carried in both the frame header and
// the XML body's <Type> element (spec §3).
type MessageType uint16

const (
	// ProcedureReset is an internal sentinel, never sent on the wire,
	// used to hand procedure destruction back to the session pump
	// (spec §3, §4.5, §4.7).
	ProcedureReset MessageType = 0

	NavTask               MessageType = 1003
	CancelTask            MessageType = 1004
	QueryStatus           MessageType = 1007
	GetRealTimeStatus     MessageType = 1002
	NavTaskResp           MessageType = 2003
	CancelTaskResp        MessageType = 2004
	QueryStatusResp       MessageType = 2007
	GetRealTimeStatusResp MessageType = 2002
)

func (t MessageType) String() string {
	switch t {
	case ProcedureReset:
		return "PROCEDURE_RESET"
	case NavTask:
		return "NAV_TASK"
	case CancelTask:
		return "CANCEL_TASK"
	case QueryStatus:
		return "QUERY_STATUS"
	case GetRealTimeStatus:
		return "GET_REAL_TIME_STATUS"
	case NavTaskResp:
		return "NAV_TASK_RESP"
	case CancelTaskResp:
		return "CANCEL_TASK_RESP"
	case QueryStatusResp:
		return "QUERY_STATUS_RESP"
	case GetRealTimeStatusResp:
		return "GET_REAL_TIME_STATUS_RESP"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode is the outcome reported by NavigationTaskResponse and
// CancelTaskResponse (spec §3).
type ErrorCode int

const (
	ErrorCodeSuccess   ErrorCode = 0
	ErrorCodeFailure   ErrorCode = 1
	ErrorCodeCancelled ErrorCode = 2
)

// TaskStatus is the navigation task state reported by
// QueryStatusResponse (spec §3).
type TaskStatus int

const (
	TaskCompleted TaskStatus = 0
	TaskExecuting TaskStatus = 1
	TaskFailed    TaskStatus = -1
)

// LocationStatus reports whether the robot considers itself localized
// (spec §3).
type LocationStatus int

const (
	LocationLocalized LocationStatus = 0
	LocationLost      LocationStatus = 1
)

// ErrorStatus is the numeric status-code vocabulary carried in
// NavigationTaskResponse.ErrorStatus (spec §6.2).
type ErrorStatus int

const (
	ErrorStatusNone          ErrorStatus = 0
	ErrorStatusTaskCompleted ErrorStatus = 8960
	ErrorStatusTaskCancelled ErrorStatus = 8962
	ErrorStatusMotionError   ErrorStatus = 41729
	ErrorStatusLowBattery    ErrorStatus = 41730
	ErrorStatusMotorOverheat ErrorStatus = 41731
	ErrorStatusCharging      ErrorStatus = 41732
)

// NavigationPoint is a single immutable waypoint (spec §3). The xml
// tags double as the <Items> child element names on the wire and the
// json tags double as the default_params.json field names (spec
// §6.2, §6.3 use the same PascalCase field set).
type NavigationPoint struct {
	MapID     int     `xml:"MapID" json:"MapID"`
	Value     int     `xml:"Value" json:"Value"`
	PosX      float64 `xml:"PosX" json:"PosX"`
	PosY      float64 `xml:"PosY" json:"PosY"`
	PosZ      float64 `xml:"PosZ" json:"PosZ"`
	AngleYaw  float64 `xml:"AngleYaw" json:"AngleYaw"`
	PointInfo int     `xml:"PointInfo" json:"PointInfo"`
	Gait      int     `xml:"Gait" json:"Gait"`
	Speed     int     `xml:"Speed" json:"Speed"`
	Manner    int     `xml:"Manner" json:"Manner"`
	ObsMode   int     `xml:"ObsMode" json:"ObsMode"`
	NavMode   int     `xml:"NavMode" json:"NavMode"`
	Terrain   int     `xml:"Terrain" json:"Terrain"`
	Posture   int     `xml:"Posture" json:"Posture"`
}

// Message is the closed sum type over every wire message variant
// (spec §9: "prefer a closed sum type" over virtual dispatch). The
// unexported marshalBody method keeps the set closed to this package;
// Parse's switch over MessageType is the only factory.
type Message interface {
	Type() MessageType
	marshalBody() ([]byte, error)
}

// NavigationTaskRequest carries the waypoint list for a new
// navigation task (spec §3, §6.2).
type NavigationTaskRequest struct {
	Points    []NavigationPoint
	Timestamp time.Time
}

func (m *NavigationTaskRequest) Type() MessageType { return NavTask }

// CancelTaskRequest asks the robot to cancel the in-flight task.
type CancelTaskRequest struct {
	Timestamp time.Time
}

func (m *CancelTaskRequest) Type() MessageType { return CancelTask }

// QueryStatusRequest asks for the current task status.
type QueryStatusRequest struct {
	Timestamp time.Time
}

func (m *QueryStatusRequest) Type() MessageType { return QueryStatus }

// GetRealTimeStatusRequest asks for the robot's current pose.
type GetRealTimeStatusRequest struct {
	Timestamp time.Time
}

func (m *GetRealTimeStatusRequest) Type() MessageType { return GetRealTimeStatus }

// NavigationTaskResponse is the robot's reply to a NavigationTaskRequest.
type NavigationTaskResponse struct {
	Value       int
	ErrorCode   ErrorCode
	ErrorStatus ErrorStatus
	Timestamp   time.Time
}

func (m *NavigationTaskResponse) Type() MessageType { return NavTaskResp }

// CancelTaskResponse is the robot's reply to a CancelTaskRequest.
type CancelTaskResponse struct {
	ErrorCode ErrorCode
	Timestamp time.Time
}

func (m *CancelTaskResponse) Type() MessageType { return CancelTaskResp }

// QueryStatusResponse is the robot's reply to a QueryStatusRequest.
type QueryStatusResponse struct {
	Value     int
	Status    TaskStatus
	ErrorCode ErrorCode
	Timestamp time.Time
}

func (m *QueryStatusResponse) Type() MessageType { return QueryStatusResp }

// GetRealTimeStatusResponse is the robot's reply to a
// GetRealTimeStatusRequest.
type GetRealTimeStatusResponse struct {
	Timestamp time.Time
	PosX      float64
	PosY      float64
	PosZ      float64
	SumOdom   float64
	Location  LocationStatus
}

func (m *GetRealTimeStatusResponse) Type() MessageType { return GetRealTimeStatusResp }

// ProcedureResetMessage is the synthetic message the navigation state
// machine pushes onto the queue on entry to Done, handing procedure
// destruction back to the single-threaded session pump (spec §4.5,
// §4.7, §9 "Termination handshake"). It never reaches the wire.
type ProcedureResetMessage struct{}

func (ProcedureResetMessage) Type() MessageType { return ProcedureReset }

func (ProcedureResetMessage) marshalBody() ([]byte, error) {
	return nil, errors.New("protocol: ProcedureResetMessage is internal and cannot be serialized")
}
