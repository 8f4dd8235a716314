package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailu123/x30ctl/protocol"
	"github.com/tailu123/x30ctl/queue"
)

type recordingTransport struct {
	sent []protocol.Message
}

func (t *recordingTransport) Send(msg protocol.Message) error {
	t.sent = append(t.sent, msg)
	return nil
}

func newTestMachine() (*Machine, *recordingTransport, *queue.Queue, *int) {
	tr := &recordingTransport{}
	q := queue.New()
	ctx := &Context{
		Queue:     q,
		Transport: tr,
		Waypoints: []protocol.NavigationPoint{{Value: 1}, {Value: 2}},
	}
	doneCalls := 0
	m := NewMachine(ctx, func() { doneCalls++ })
	return m, tr, q, &doneCalls
}

func TestHappyPathCompletion(t *testing.T) {
	m, tr, q, doneCalls := newTestMachine()

	require.NoError(t, m.Start())
	assert.Equal(t, StatePrepareEnterNav, m.State())
	require.Len(t, tr.sent, 1)
	_, isNavReq := tr.sent[0].(*protocol.NavigationTaskRequest)
	assert.True(t, isNavReq)

	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskExecuting, Value: 1}))
	assert.Equal(t, StateNav, m.State())

	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskExecuting, Value: 2}))
	assert.Equal(t, StateNav, m.State())
	// Each Executing tick in Nav sends a GetRealTimeStatusRequest side effect.
	require.Len(t, tr.sent, 2)

	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskCompleted}))
	assert.Equal(t, StateDone, m.State())
	assert.Equal(t, 1, *doneCalls)

	reset, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, protocol.ProcedureReset, reset.Type())
}

func TestCancelWhilePreparing(t *testing.T) {
	m, _, _, doneCalls := newTestMachine()

	require.NoError(t, m.Start())
	require.NoError(t, m.Dispatch(&protocol.CancelTaskResponse{ErrorCode: protocol.ErrorCodeSuccess}))

	assert.Equal(t, StateDone, m.State())
	assert.Equal(t, 1, *doneCalls)
}

func TestCancelAfterEnteringNav(t *testing.T) {
	m, _, _, _ := newTestMachine()

	require.NoError(t, m.Start())
	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskExecuting}))
	assert.Equal(t, StateNav, m.State())

	require.NoError(t, m.Dispatch(&protocol.CancelTaskResponse{ErrorCode: protocol.ErrorCodeSuccess}))
	assert.Equal(t, StateDone, m.State())
}

func TestSelfLoopInNavSendsRealTimeStatusRequest(t *testing.T) {
	m, tr, _, _ := newTestMachine()

	require.NoError(t, m.Start())
	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskExecuting}))
	require.Equal(t, StateNav, m.State())

	tr.sent = nil
	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskExecuting, Value: 7}))

	assert.Equal(t, StateNav, m.State())
	require.Len(t, tr.sent, 1)
	_, isStatusReq := tr.sent[0].(*protocol.GetRealTimeStatusRequest)
	assert.True(t, isStatusReq)
}

func TestUnmatchedCancelFailureIsDroppedNotAnError(t *testing.T) {
	m, _, _, doneCalls := newTestMachine()

	require.NoError(t, m.Start())
	require.NoError(t, m.Dispatch(&protocol.CancelTaskResponse{ErrorCode: protocol.ErrorCodeFailure}))

	assert.Equal(t, StatePrepareEnterNav, m.State())
	assert.Equal(t, 0, *doneCalls)
}

func TestMachineNeverLeavesDone(t *testing.T) {
	m, _, _, _ := newTestMachine()

	require.NoError(t, m.Start())
	require.NoError(t, m.Dispatch(&protocol.NavigationTaskResponse{ErrorCode: protocol.ErrorCodeSuccess}))
	require.Equal(t, StateDone, m.State())

	require.NoError(t, m.Dispatch(&protocol.QueryStatusResponse{Status: protocol.TaskExecuting}))
	assert.Equal(t, StateDone, m.State())
}
