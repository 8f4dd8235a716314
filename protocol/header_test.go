package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader(NavTask, 123)

	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, buf, HeaderSize)

	var got Header
	require.NoError(t, got.UnmarshalBinary(buf))
	assert.True(t, h.Equal(got))
	assert.Equal(t, uint16(123), got.Length)
	assert.Equal(t, uint16(NavTask), got.MessageID)
}

func TestHeaderValid(t *testing.T) {
	h := NewHeader(QueryStatus, 0)
	assert.True(t, h.Valid(DefaultSyncBytes))

	h.Sync = [4]byte{0, 0, 0, 0}
	assert.False(t, h.Valid(DefaultSyncBytes))
}

func TestHeaderUnmarshalShort(t *testing.T) {
	var h Header
	err := h.UnmarshalBinary(make([]byte, 10))
	assert.ErrorIs(t, err, ErrShortHeader)
}
