package coldata

import (
	"encoding/binary"
	"errors"
	"io"
)

// PacketType is the TDS message type carried in a packet header.
type PacketType uint8

const packReply PacketType = 4

// packet status bits
const (
	normalStatus = 0x00
	eomStatus    = 0x01
)

const headerSize = 8

// ByteSource supplies the little-endian primitives column decoders read.
// A read either returns the full value or an error; on error the caller
// must not assume anything about how many bytes were consumed.
type ByteSource interface {
	ReadByte() (byte, error)
	ReadInt32() (int32, error)
	ReadUint32() (uint32, error)
}

// Buffer reads the payload of a sequence of TDS packets. Reads span packet
// boundaries; the packet carrying the EOM status is the last one.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	transport  io.Reader
	packetSize int

	rbuf        []byte
	rpos        int
	rsize       int
	final       bool
	rPacketType PacketType

	read int64
}

// NewBuffer returns a Buffer reading packets of at most packetSize bytes
// from transport.
func NewBuffer(transport io.Reader, packetSize int) *Buffer {
	if packetSize < headerSize {
		packetSize = headerSize
	}
	return &Buffer{
		transport:  transport,
		packetSize: packetSize,
		rbuf:       make([]byte, packetSize),
	}
}

// NewBufferFromBytes returns a Buffer over an already unframed payload.
func NewBufferFromBytes(b []byte) *Buffer {
	return &Buffer{
		packetSize: len(b),
		rbuf:       b,
		rsize:      len(b),
		final:      true,
	}
}

func (r *Buffer) readNextPacket() error {
	buf := r.rbuf[:headerSize]
	if _, err := io.ReadFull(r.transport, buf); err != nil {
		return StreamError.Wrap(unexpectedEOF(err))
	}
	status := buf[1]
	size := int(binary.BigEndian.Uint16(buf[2:4]))
	if size > len(r.rbuf) {
		return StreamError.New("invalid packet size %d, it is longer than buffer size %d", size, len(r.rbuf))
	}
	if size < headerSize {
		return StreamError.New("invalid packet size %d, it is shorter than header size", size)
	}
	if _, err := io.ReadFull(r.transport, r.rbuf[headerSize:size]); err != nil {
		return StreamError.Wrap(unexpectedEOF(err))
	}
	r.rPacketType = PacketType(buf[0])
	r.rpos = headerSize
	r.rsize = size
	r.final = status&eomStatus != 0
	return nil
}

// unexpectedEOF turns a clean EOF into ErrUnexpectedEOF: any end of stream
// reached while a value is still owed is premature.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadFull fills buf, pulling further packets as needed.
func (r *Buffer) ReadFull(buf []byte) error {
	for len(buf) > 0 {
		if r.rpos == r.rsize {
			if r.final {
				return StreamError.Wrap(io.ErrUnexpectedEOF)
			}
			if err := r.readNextPacket(); err != nil {
				return err
			}
			continue
		}
		n := copy(buf, r.rbuf[r.rpos:r.rsize])
		r.rpos += n
		r.read += int64(n)
		buf = buf[n:]
	}
	return nil
}

func (r *Buffer) ReadByte() (byte, error) {
	var buf [1]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Buffer) ReadUint16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (r *Buffer) ReadUint32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (r *Buffer) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Buffer) ReadUint64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// BytesRead is the number of payload bytes consumed so far.
func (r *Buffer) BytesRead() int64 {
	return r.read
}

// PacketType is the type of the packet currently being read.
func (r *Buffer) PacketType() PacketType {
	return r.rPacketType
}
