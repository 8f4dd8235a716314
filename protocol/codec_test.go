package protocol

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timeComparer = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(TimestampLayout, s)
	require.NoError(t, err)
	return ts
}

func TestRoundTripAllVariants(t *testing.T) {
	ts := mustParseTime(t, "2024-01-02 03:04:05")

	cases := []Message{
		&NavigationTaskRequest{
			Points: []NavigationPoint{
				{MapID: 1, Value: 1, PosX: 1.5, PosY: -2.5, PosZ: 0, AngleYaw: 90, PointInfo: 1, Gait: 2, Speed: 3, Manner: 4, ObsMode: 5, NavMode: 6, Terrain: 7, Posture: 8},
				{MapID: 1, Value: 2},
			},
			Timestamp: ts,
		},
		&CancelTaskRequest{Timestamp: ts},
		&QueryStatusRequest{Timestamp: ts},
		&GetRealTimeStatusRequest{Timestamp: ts},
		&NavigationTaskResponse{Value: 2, ErrorCode: ErrorCodeSuccess, ErrorStatus: ErrorStatusTaskCompleted, Timestamp: ts},
		&CancelTaskResponse{ErrorCode: ErrorCodeSuccess, Timestamp: ts},
		&QueryStatusResponse{Value: 1, Status: TaskExecuting, ErrorCode: ErrorCodeSuccess, Timestamp: ts},
		&GetRealTimeStatusResponse{Timestamp: ts, PosX: 1, PosY: 2, PosZ: 3, SumOdom: 42.5, Location: LocationLocalized},
	}

	for _, want := range cases {
		frame, err := Serialize(want)
		require.NoError(t, err)

		require.True(t, len(frame) >= HeaderSize)

		var hdr Header
		require.NoError(t, hdr.UnmarshalBinary(frame[:HeaderSize]))
		assert.True(t, hdr.Valid(DefaultSyncBytes))
		assert.Equal(t, uint16(want.Type()), hdr.MessageID)
		assert.Equal(t, int(hdr.Length), len(frame)-HeaderSize)

		got, err := Parse(frame[HeaderSize:])
		require.NoError(t, err)
		assert.Equal(t, want.Type(), got.Type())

		if diff := cmp.Diff(want, got, timeComparer); diff != "" {
			t.Errorf("%T round-trip mismatch (-want +got):\n%s", want, diff)
		}
	}
}

func TestParseUnknownType(t *testing.T) {
	body := []byte(`<PatrolDevice><Type>9999</Type><Command>1</Command><Time>2024-01-02 03:04:05</Time><Items/></PatrolDevice>`)
	_, err := Parse(body)
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestParseMalformedXML(t *testing.T) {
	_, err := Parse([]byte(`not xml at all`))
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseMissingItemsDefaultsToZero(t *testing.T) {
	body := []byte(`<PatrolDevice><Type>2004</Type><Command>1</Command><Time>2024-01-02 03:04:05</Time></PatrolDevice>`)
	msg, err := Parse(body)
	require.NoError(t, err)
	resp, ok := msg.(*CancelTaskResponse)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeSuccess, resp.ErrorCode)
}
