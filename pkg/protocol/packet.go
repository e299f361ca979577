package protocol

import (
	"bytes"
	"fmt"
	"io"
)

// Connection states.
const (
	StateHandshaking = iota
	StateStatus
	StateLogin
	StatePlay
)

// MaxPacketLength is the largest frame body a three-byte length prefix can carry.
const MaxPacketLength = 1<<21 - 1

// Packet is one uncompressed frame: a VarInt id followed by its payload.
type Packet struct {
	ID   int32
	Data []byte
}

// Reader returns a reader over the payload.
func (p *Packet) Reader() *bytes.Reader {
	return bytes.NewReader(p.Data)
}

// String describes the packet id and payload size.
func (p *Packet) String() string {
	return fmt.Sprintf("packet 0x%02X (%d bytes)", p.ID, len(p.Data))
}

// ReadPacket reads one length-prefixed frame.
func ReadPacket(r io.Reader) (*Packet, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if length < 1 || length > MaxPacketLength {
		return nil, fmt.Errorf("protocol: bad frame length %d", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("protocol: read frame: %w", err)
	}
	id, n, err := ReadVarInt(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("protocol: read packet id: %w", err)
	}
	return &Packet{ID: id, Data: body[n:]}, nil
}

// WritePacket frames p and writes it in a single call so concurrent
// writers serialised by the caller never interleave partial frames.
func WritePacket(w io.Writer, p *Packet) error {
	var hdr [2 * MaxVarIntLen]byte
	idLen := PutVarInt(hdr[MaxVarIntLen:], p.ID)
	n := PutVarInt(hdr[:], int32(idLen+len(p.Data)))

	frame := make([]byte, 0, n+idLen+len(p.Data))
	frame = append(frame, hdr[:n]...)
	frame = append(frame, hdr[MaxVarIntLen:MaxVarIntLen+idLen]...)
	frame = append(frame, p.Data...)
	_, err := w.Write(frame)
	return err
}

// MarshalPacket builds a packet whose payload is written by fn.
func MarshalPacket(id int32, fn func(w *bytes.Buffer)) *Packet {
	var buf bytes.Buffer
	fn(&buf)
	return &Packet{ID: id, Data: buf.Bytes()}
}
