// Package protocol implements the X30 wire codec: a fixed 16-byte
// binary header followed by an XML body (spec §3, §4.1, §6.2).
package protocol

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// HeaderSize is the fixed size in bytes of every frame's header.
const HeaderSize = 16

// DefaultSyncBytes is the four-byte prefix used to re-anchor the
// receiver on a frame boundary. The source left the exact constant
// undocumented; this is the value named as an example in the spec and
// is overridable per-transport via transport.WithSyncBytes for
// interop with a peer that disagrees.
var DefaultSyncBytes = [4]byte{0xAA, 0x55, 0xAA, 0x55}

// ErrBadSyncBytes is the error the transport's receive loop reports
// when a header's sync prefix doesn't match the expected constant.
var ErrBadSyncBytes = errors.New("protocol: invalid sync bytes")

// ErrShortHeader is returned when fewer than HeaderSize bytes are
// available to decode a header.
var ErrShortHeader = errors.New("protocol: short header")

// Header is the 16-byte, little-endian, tightly packed frame header
// (spec §3): 4 sync bytes, a uint16 body length, a uint16 message ID,
// and 8 reserved bytes (zeroed on send, ignored on receive).
type Header struct {
	Sync      [4]byte
	Length    uint16
	MessageID uint16
	Reserved  [8]byte
}

// NewHeader builds a header for a body of the given message type and
// length, using DefaultSyncBytes and a zeroed reserved block.
func NewHeader(msgType MessageType, bodyLen int) Header {
	return Header{
		Sync:      DefaultSyncBytes,
		Length:    uint16(bodyLen),
		MessageID: uint16(msgType),
	}
}

// Valid reports whether h's sync bytes match expected.
func (h Header) Valid(expected [4]byte) bool {
	return h.Sync == expected
}

// MarshalBinary encodes h into its 16-byte wire representation.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	buf[0], buf[1], buf[2], buf[3] = h.Sync[0], h.Sync[1], h.Sync[2], h.Sync[3]
	binary.LittleEndian.PutUint16(buf[4:6], h.Length)
	binary.LittleEndian.PutUint16(buf[6:8], h.MessageID)
	copy(buf[8:16], h.Reserved[:])
	return buf, nil
}

// UnmarshalBinary decodes a 16-byte header from b. b must be exactly
// HeaderSize bytes; the receive loop is responsible for reading
// exactly that many bytes off the wire first.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) != HeaderSize {
		return errors.Wrapf(ErrShortHeader, "got %d bytes, want %d", len(b), HeaderSize)
	}
	copy(h.Sync[:], b[0:4])
	h.Length = binary.LittleEndian.Uint16(b[4:6])
	h.MessageID = binary.LittleEndian.Uint16(b[6:8])
	copy(h.Reserved[:], b[8:16])
	return nil
}

// Equal reports whether two headers carry the same field values.
// Mainly useful in tests comparing a round-tripped header.
func (h Header) Equal(other Header) bool {
	return h.Sync == other.Sync &&
		h.Length == other.Length &&
		h.MessageID == other.MessageID &&
		bytes.Equal(h.Reserved[:], other.Reserved[:])
}
