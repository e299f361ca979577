package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/google/uuid"
)

const (
	// MaxVarIntLen is the longest VarInt encoding of an int32.
	MaxVarIntLen = 5
	// MaxStringLength is the longest string payload in bytes (32767 UTF-16 units).
	MaxStringLength = 32767 * 4
)

var ErrVarIntTooBig = errors.New("protocol: VarInt is too big")

// ReadVarInt decodes a VarInt and reports how many bytes it consumed.
func ReadVarInt(r io.Reader) (int32, int, error) {
	var (
		v   uint32
		buf [1]byte
	)
	for n := 0; n < MaxVarIntLen; n++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, n, err
		}
		v |= uint32(buf[0]&0x7F) << (7 * n)
		if buf[0]&0x80 == 0 {
			return int32(v), n + 1, nil
		}
	}
	return 0, MaxVarIntLen, ErrVarIntTooBig
}

// WriteVarInt writes value as a VarInt and returns the bytes written.
func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [MaxVarIntLen]byte
	return w.Write(buf[:PutVarInt(buf[:], value)])
}

// PutVarInt encodes value into buf, which must hold MaxVarIntLen bytes.
// Negative values take the full five bytes.
func PutVarInt(buf []byte, value int32) int {
	return binary.PutUvarint(buf, uint64(uint32(value)))
}

// VarIntSize returns the encoded length of value.
func VarIntSize(value int32) int {
	if value == 0 {
		return 1
	}
	return (bits.Len32(uint32(value)) + 6) / 7
}

// ReadString reads a VarInt length-prefixed UTF-8 string.
func ReadString(r io.Reader) (string, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > MaxStringLength {
		return "", fmt.Errorf("string length out of range: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes a VarInt length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	if _, err := WriteVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// Fixed-width values are big-endian.

func readBE[T any](r io.Reader) (T, error) {
	var v T
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func writeBE(w io.Writer, v any) error {
	return binary.Write(w, binary.BigEndian, v)
}

// ReadByte reads an unsigned byte.
func ReadByte(r io.Reader) (byte, error) { return readBE[byte](r) }

// ReadBool reads a boolean byte.
func ReadBool(r io.Reader) (bool, error) { return readBE[bool](r) }

// ReadUint16 reads an unsigned short.
func ReadUint16(r io.Reader) (uint16, error) { return readBE[uint16](r) }

// ReadInt16 reads a short.
func ReadInt16(r io.Reader) (int16, error) { return readBE[int16](r) }

// ReadInt32 reads an int.
func ReadInt32(r io.Reader) (int32, error) { return readBE[int32](r) }

// ReadInt64 reads a long.
func ReadInt64(r io.Reader) (int64, error) { return readBE[int64](r) }

// ReadFloat32 reads a float.
func ReadFloat32(r io.Reader) (float32, error) { return readBE[float32](r) }

// ReadFloat64 reads a double.
func ReadFloat64(r io.Reader) (float64, error) { return readBE[float64](r) }

// WriteByte writes an unsigned byte.
func WriteByte(w io.Writer, v byte) error { return writeBE(w, v) }

// WriteBool writes a boolean byte.
func WriteBool(w io.Writer, v bool) error { return writeBE(w, v) }

// WriteUint16 writes an unsigned short.
func WriteUint16(w io.Writer, v uint16) error { return writeBE(w, v) }

// WriteInt16 writes a short.
func WriteInt16(w io.Writer, v int16) error { return writeBE(w, v) }

// WriteInt32 writes an int.
func WriteInt32(w io.Writer, v int32) error { return writeBE(w, v) }

// WriteInt64 writes a long.
func WriteInt64(w io.Writer, v int64) error { return writeBE(w, v) }

// WriteFloat32 writes a float.
func WriteFloat32(w io.Writer, v float32) error { return writeBE(w, v) }

// WriteFloat64 writes a double.
func WriteFloat64(w io.Writer, v float64) error { return writeBE(w, v) }

// ReadUUID reads a UUID as two big-endian longs.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var id uuid.UUID
	_, err := io.ReadFull(r, id[:])
	return id, err
}

// WriteUUID writes a UUID as two big-endian longs.
func WriteUUID(w io.Writer, id uuid.UUID) error {
	_, err := w.Write(id[:])
	return err
}

// WritePosition packs a block position as x:26 | y:12 | z:26 bits.
func WritePosition(w io.Writer, x, y, z int32) error {
	return WriteInt64(w, int64(x&0x3FFFFFF)<<38|int64(y&0xFFF)<<26|int64(z&0x3FFFFFF))
}

// ReadPosition unpacks a block position, sign-extending x and z.
func ReadPosition(r io.Reader) (x, y, z int32, err error) {
	v, err := ReadInt64(r)
	if err != nil {
		return 0, 0, 0, err
	}
	return int32(v >> 38), int32(v>>26) & 0xFFF, int32(v << 38 >> 38), nil
}

// Angle converts degrees to 1/256 turn steps.
func Angle(degrees float32) byte {
	return byte(int32(degrees*256/360) & 0xFF)
}

// FixedPoint converts a coordinate to 1.8 fixed point with 5 fraction bits.
func FixedPoint(v float64) int32 {
	return int32(math.Floor(v * 32))
}

// WriteSlotData writes a pre-1.13 slot with no NBT. itemID -1 is an empty slot.
func WriteSlotData(w io.Writer, itemID int16, count byte, damage int16) error {
	if itemID == -1 {
		return WriteInt16(w, -1)
	}
	return writeBE(w, struct {
		ID     int16
		Count  byte
		Damage int16
		NBT    byte
	}{itemID, count, damage, 0x00})
}
