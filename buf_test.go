package coldata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePacket frames payload as one TDS packet.
func makePacket(pt PacketType, status byte, payload []byte) []byte {
	pkt := make([]byte, headerSize, headerSize+len(payload))
	pkt[0] = byte(pt)
	pkt[1] = status
	binary.BigEndian.PutUint16(pkt[2:4], uint16(headerSize+len(payload)))
	pkt[6] = 1 // packet id
	return append(pkt, payload...)
}

// makeBuf splits payload into packets of at most size bytes.
func makeBuf(size int, payload []byte) *Buffer {
	var stream []byte
	chunk := size - headerSize
	for len(payload) > chunk {
		stream = append(stream, makePacket(packReply, normalStatus, payload[:chunk])...)
		payload = payload[chunk:]
	}
	stream = append(stream, makePacket(packReply, eomStatus, payload)...)
	return NewBuffer(bytes.NewReader(stream), size)
}

func TestBufferReadAcrossPackets(t *testing.T) {
	// money value split in the middle of its high word
	payload := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xaa}
	r := makeBuf(headerSize+3, payload)

	v, err := DecodeMoney(r, 8)
	require.NoError(t, err)
	assert.Equal(t, "429496.7296", v.String())
	assert.Equal(t, int64(8), r.BytesRead())
	assert.Equal(t, packReply, r.PacketType())

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), b)

	_, err = r.ReadByte()
	assert.True(t, IsStreamError(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBufferPrimitives(t *testing.T) {
	payload := []byte{
		0x7f,
		0x34, 0x12,
		0xfe, 0xff, 0xff, 0xff,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}
	r := makeBuf(512, payload)

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7f), b)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-2), i32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0807060504030201), u64)

	assert.Equal(t, int64(len(payload)), r.BytesRead())
}

func TestBufferBadHeaders(t *testing.T) {
	t.Run("longer than buffer", func(t *testing.T) {
		pkt := makePacket(packReply, eomStatus, make([]byte, 64))
		r := NewBuffer(bytes.NewReader(pkt), 32)
		_, err := r.ReadByte()
		assert.True(t, IsStreamError(err), "%v", err)
	})

	t.Run("shorter than header", func(t *testing.T) {
		pkt := makePacket(packReply, eomStatus, nil)
		binary.BigEndian.PutUint16(pkt[2:4], 4)
		r := NewBuffer(bytes.NewReader(pkt), 512)
		_, err := r.ReadByte()
		assert.True(t, IsStreamError(err), "%v", err)
	})

	t.Run("truncated header", func(t *testing.T) {
		r := NewBuffer(bytes.NewReader([]byte{0x04, 0x01, 0x00}), 512)
		_, err := r.ReadUint32()
		assert.True(t, IsStreamError(err))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated payload", func(t *testing.T) {
		pkt := makePacket(packReply, eomStatus, []byte{1, 2, 3, 4})
		r := NewBuffer(bytes.NewReader(pkt[:len(pkt)-2]), 512)
		_, err := r.ReadUint32()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("empty stream", func(t *testing.T) {
		r := NewBuffer(bytes.NewReader(nil), 512)
		_, err := r.ReadInt32()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

type failingReader struct {
	err error
}

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestBufferTransportError(t *testing.T) {
	errTransport := errors.New("use of closed network connection")
	r := NewBuffer(failingReader{errTransport}, 512)

	_, err := DecodeMoney(r, 4)
	assert.True(t, IsStreamError(err))
	assert.ErrorIs(t, err, errTransport)
	assert.False(t, IsRetryable(err))
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestBufferTimeoutIsRetryable(t *testing.T) {
	r := NewBuffer(failingReader{timeoutError{}}, 512)

	_, err := DecodeMoney(r, 8)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestNewBufferFromBytes(t *testing.T) {
	r := NewBufferFromBytes([]byte{0x04, 0x10, 0x27, 0x00, 0x00})
	v, err := ReadColumnValue(r, TypeMoneyN, 4)
	require.NoError(t, err)
	assert.Equal(t, "1.0000", v.String())
	assert.Equal(t, int64(5), r.BytesRead())
}
