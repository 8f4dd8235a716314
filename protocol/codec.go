package protocol

import (
	"encoding/xml"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownMessageType is returned by Parse when a body's <Type>
// doesn't match any known MessageType (spec §4.1).
var ErrUnknownMessageType = errors.New("protocol: unknown message type")

// ErrParse wraps any XML decoding failure (spec §4.1, §7).
var ErrParse = errors.New("protocol: parse error")

// patrolDevice is the wire envelope shared by every message kind
// (spec §6.2). On decode, Items is read as a slice tolerant of zero,
// one, or many <Items> children; genericItem is a superset of every
// field any message variant uses, with unused fields left at their
// XML zero value.
type patrolDevice struct {
	XMLName xml.Name      `xml:"PatrolDevice"`
	Type    int           `xml:"Type"`
	Command int           `xml:"Command"`
	Time    string        `xml:"Time"`
	Items   []genericItem `xml:"Items"`
}

type genericItem struct {
	MapID       int     `xml:"MapID"`
	Value       int     `xml:"Value"`
	PosX        float64 `xml:"PosX"`
	PosY        float64 `xml:"PosY"`
	PosZ        float64 `xml:"PosZ"`
	AngleYaw    float64 `xml:"AngleYaw"`
	PointInfo   int     `xml:"PointInfo"`
	Gait        int     `xml:"Gait"`
	Speed       int     `xml:"Speed"`
	Manner      int     `xml:"Manner"`
	ObsMode     int     `xml:"ObsMode"`
	NavMode     int     `xml:"NavMode"`
	Terrain     int     `xml:"Terrain"`
	Posture     int     `xml:"Posture"`
	ErrorCode   int     `xml:"ErrorCode"`
	ErrorStatus int     `xml:"ErrorStatus"`
	Status      int     `xml:"Status"`
	SumOdom     float64 `xml:"SumOdom"`
	Location    int     `xml:"Location"`
}

func (it genericItem) point() NavigationPoint {
	return NavigationPoint{
		MapID: it.MapID, Value: it.Value,
		PosX: it.PosX, PosY: it.PosY, PosZ: it.PosZ, AngleYaw: it.AngleYaw,
		PointInfo: it.PointInfo, Gait: it.Gait, Speed: it.Speed, Manner: it.Manner,
		ObsMode: it.ObsMode, NavMode: it.NavMode, Terrain: it.Terrain, Posture: it.Posture,
	}
}

func firstItem(items []genericItem) genericItem {
	if len(items) == 0 {
		return genericItem{}
	}
	return items[0]
}

// Serialize encodes msg as a full wire frame: a 16-byte header
// followed by its XML body (spec §4.1).
func Serialize(msg Message) ([]byte, error) {
	body, err := msg.marshalBody()
	if err != nil {
		return nil, errors.Wrap(err, "protocol: serialize")
	}

	header := NewHeader(msg.Type(), len(body))
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "protocol: serialize header")
	}

	return append(headerBytes, body...), nil
}

// Parse decodes a single framed XML body into its typed Message,
// dispatching on the body's own <Type> element (spec §4.1). It
// performs no I/O and makes no assumption about the frame header;
// callers that need to enforce spec invariant 2 (header.messageId ==
// parsed type) do so by comparing against msg.Type() themselves.
func Parse(body []byte) (Message, error) {
	var env patrolDevice
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}

	ts, err := time.Parse(TimestampLayout, env.Time)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "invalid timestamp %q: %v", env.Time, err)
	}

	switch MessageType(env.Type) {
	case NavTask:
		points := make([]NavigationPoint, 0, len(env.Items))
		for _, it := range env.Items {
			points = append(points, it.point())
		}
		return &NavigationTaskRequest{Points: points, Timestamp: ts}, nil

	case CancelTask:
		return &CancelTaskRequest{Timestamp: ts}, nil

	case QueryStatus:
		return &QueryStatusRequest{Timestamp: ts}, nil

	case GetRealTimeStatus:
		return &GetRealTimeStatusRequest{Timestamp: ts}, nil

	case NavTaskResp:
		it := firstItem(env.Items)
		return &NavigationTaskResponse{
			Value:       it.Value,
			ErrorCode:   ErrorCode(it.ErrorCode),
			ErrorStatus: ErrorStatus(it.ErrorStatus),
			Timestamp:   ts,
		}, nil

	case CancelTaskResp:
		it := firstItem(env.Items)
		return &CancelTaskResponse{ErrorCode: ErrorCode(it.ErrorCode), Timestamp: ts}, nil

	case QueryStatusResp:
		it := firstItem(env.Items)
		return &QueryStatusResponse{
			Value:     it.Value,
			Status:    TaskStatus(it.Status),
			ErrorCode: ErrorCode(it.ErrorCode),
			Timestamp: ts,
		}, nil

	case GetRealTimeStatusResp:
		it := firstItem(env.Items)
		return &GetRealTimeStatusResponse{
			Timestamp: ts,
			PosX:      it.PosX,
			PosY:      it.PosY,
			PosZ:      it.PosZ,
			SumOdom:   it.SumOdom,
			Location:  LocationStatus(it.Location),
		}, nil

	default:
		return nil, errors.Wrapf(ErrUnknownMessageType, "type=%d", env.Type)
	}
}

// emptyItems marshals as <Items></Items>, which is equivalent to the
// self-closing <Items/> form the spec describes (see
// golang.org/issue/21399 for why encoding/xml prefers the former).
type emptyItems struct{}

func (m *CancelTaskRequest) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name   `xml:"PatrolDevice"`
		Type    int        `xml:"Type"`
		Command int        `xml:"Command"`
		Time    string     `xml:"Time"`
		Items   emptyItems `xml:"Items"`
	}{Type: int(CancelTask), Command: 1, Time: m.Timestamp.Format(TimestampLayout)})
}

func (m *QueryStatusRequest) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name   `xml:"PatrolDevice"`
		Type    int        `xml:"Type"`
		Command int        `xml:"Command"`
		Time    string     `xml:"Time"`
		Items   emptyItems `xml:"Items"`
	}{Type: int(QueryStatus), Command: 1, Time: m.Timestamp.Format(TimestampLayout)})
}

func (m *GetRealTimeStatusRequest) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name   `xml:"PatrolDevice"`
		Type    int        `xml:"Type"`
		Command int        `xml:"Command"`
		Time    string     `xml:"Time"`
		Items   emptyItems `xml:"Items"`
	}{Type: int(GetRealTimeStatus), Command: 1, Time: m.Timestamp.Format(TimestampLayout)})
}

func (m *NavigationTaskRequest) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name          `xml:"PatrolDevice"`
		Type    int               `xml:"Type"`
		Command int               `xml:"Command"`
		Time    string            `xml:"Time"`
		Items   []NavigationPoint `xml:"Items"`
	}{Type: int(NavTask), Command: 1, Time: m.Timestamp.Format(TimestampLayout), Items: m.Points})
}

func (m *NavigationTaskResponse) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name `xml:"PatrolDevice"`
		Type    int      `xml:"Type"`
		Command int      `xml:"Command"`
		Time    string   `xml:"Time"`
		Items   struct {
			Value       int `xml:"Value"`
			ErrorCode   int `xml:"ErrorCode"`
			ErrorStatus int `xml:"ErrorStatus"`
		} `xml:"Items"`
	}{
		Type: int(NavTaskResp), Command: 1, Time: m.Timestamp.Format(TimestampLayout),
		Items: struct {
			Value       int `xml:"Value"`
			ErrorCode   int `xml:"ErrorCode"`
			ErrorStatus int `xml:"ErrorStatus"`
		}{Value: m.Value, ErrorCode: int(m.ErrorCode), ErrorStatus: int(m.ErrorStatus)},
	})
}

func (m *CancelTaskResponse) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name `xml:"PatrolDevice"`
		Type    int      `xml:"Type"`
		Command int      `xml:"Command"`
		Time    string   `xml:"Time"`
		Items   struct {
			ErrorCode int `xml:"ErrorCode"`
		} `xml:"Items"`
	}{
		Type: int(CancelTaskResp), Command: 1, Time: m.Timestamp.Format(TimestampLayout),
		Items: struct {
			ErrorCode int `xml:"ErrorCode"`
		}{ErrorCode: int(m.ErrorCode)},
	})
}

func (m *QueryStatusResponse) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name `xml:"PatrolDevice"`
		Type    int      `xml:"Type"`
		Command int      `xml:"Command"`
		Time    string   `xml:"Time"`
		Items   struct {
			Value     int `xml:"Value"`
			Status    int `xml:"Status"`
			ErrorCode int `xml:"ErrorCode"`
		} `xml:"Items"`
	}{
		Type: int(QueryStatusResp), Command: 1, Time: m.Timestamp.Format(TimestampLayout),
		Items: struct {
			Value     int `xml:"Value"`
			Status    int `xml:"Status"`
			ErrorCode int `xml:"ErrorCode"`
		}{Value: m.Value, Status: int(m.Status), ErrorCode: int(m.ErrorCode)},
	})
}

func (m *GetRealTimeStatusResponse) marshalBody() ([]byte, error) {
	return xml.Marshal(&struct {
		XMLName xml.Name `xml:"PatrolDevice"`
		Type    int      `xml:"Type"`
		Command int      `xml:"Command"`
		Time    string   `xml:"Time"`
		Items   struct {
			PosX     float64 `xml:"PosX"`
			PosY     float64 `xml:"PosY"`
			PosZ     float64 `xml:"PosZ"`
			SumOdom  float64 `xml:"SumOdom"`
			Location int     `xml:"Location"`
		} `xml:"Items"`
	}{
		Type: int(GetRealTimeStatusResp), Command: 1, Time: m.Timestamp.Format(TimestampLayout),
		Items: struct {
			PosX     float64 `xml:"PosX"`
			PosY     float64 `xml:"PosY"`
			PosZ     float64 `xml:"PosZ"`
			SumOdom  float64 `xml:"SumOdom"`
			Location int     `xml:"Location"`
		}{PosX: m.PosX, PosY: m.PosY, PosZ: m.PosZ, SumOdom: m.SumOdom, Location: int(m.Location)},
	})
}
