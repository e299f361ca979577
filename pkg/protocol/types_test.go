package protocol

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestVarInt(t *testing.T) {
	tests := []struct {
		value int32
		enc   []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if _, err := WriteVarInt(&buf, tt.value); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf.Bytes(), tt.enc) {
			t.Errorf("WriteVarInt(%d) = % X, want % X", tt.value, buf.Bytes(), tt.enc)
		}
		if size := VarIntSize(tt.value); size != len(tt.enc) {
			t.Errorf("VarIntSize(%d) = %d, want %d", tt.value, size, len(tt.enc))
		}

		got, n, err := ReadVarInt(bytes.NewReader(tt.enc))
		if err != nil {
			t.Fatalf("ReadVarInt(% X) error: %v", tt.enc, err)
		}
		if got != tt.value || n != len(tt.enc) {
			t.Errorf("ReadVarInt(% X) = %d (%d bytes), want %d", tt.enc, got, n, tt.value)
		}
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{"", "Shadow", "§7[Shadow] §8Steve", "日本語テスト"} {
		var buf bytes.Buffer
		if err := WriteString(&buf, s); err != nil {
			t.Fatal(err)
		}
		got, err := ReadString(&buf)
		if err != nil || got != s {
			t.Errorf("ReadString = %q, %v, want %q", got, err, s)
		}
	}

	var buf bytes.Buffer
	WriteVarInt(&buf, -1)
	if _, err := ReadString(&buf); err == nil {
		t.Error("ReadString accepted a negative length")
	}
}

func TestPacketFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePacket(&buf, &Packet{ID: 0x21, Data: []byte("chunk")}); err != nil {
		t.Fatalf("WritePacket error: %v", err)
	}
	if want := []byte{0x06, 0x21, 'c', 'h', 'u', 'n', 'k'}; !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame = % X, want % X", buf.Bytes(), want)
	}
	got, err := ReadPacket(&buf)
	if err != nil {
		t.Fatalf("ReadPacket error: %v", err)
	}
	if got.ID != 0x21 || string(got.Data) != "chunk" {
		t.Errorf("ReadPacket = %v %q", got, got.Data)
	}
}

func TestReadPacketRejectsBadLength(t *testing.T) {
	for _, frame := range [][]byte{
		{0x00},
		{0x80, 0x80, 0x80, 0x01},
		{0x05, 0x01},
	} {
		if _, err := ReadPacket(bytes.NewReader(frame)); err == nil {
			t.Errorf("ReadPacket(% X) accepted the frame", frame)
		}
	}
}

func TestFixedWidth(t *testing.T) {
	var buf bytes.Buffer
	WriteByte(&buf, 0xAB)
	WriteBool(&buf, true)
	WriteUint16(&buf, 25565)
	WriteInt16(&buf, -2)
	WriteInt32(&buf, -2147483648)
	WriteInt64(&buf, 1<<40)
	WriteFloat32(&buf, -90)
	WriteFloat64(&buf, 3.14159265)
	if buf.Len() != 1+1+2+2+4+8+4+8 {
		t.Fatalf("wrote %d bytes", buf.Len())
	}
	if !bytes.Equal(buf.Bytes()[2:4], []byte{0x63, 0xDD}) {
		t.Errorf("uint16 not big-endian: % X", buf.Bytes()[2:4])
	}

	b, _ := ReadByte(&buf)
	ok, _ := ReadBool(&buf)
	u16, _ := ReadUint16(&buf)
	i16, _ := ReadInt16(&buf)
	i32, _ := ReadInt32(&buf)
	i64, _ := ReadInt64(&buf)
	f32, _ := ReadFloat32(&buf)
	f64, err := ReadFloat64(&buf)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if b != 0xAB || !ok || u16 != 25565 || i16 != -2 || i32 != -2147483648 || i64 != 1<<40 || f32 != -90 || f64 != 3.14159265 {
		t.Errorf("got %v %v %v %v %v %v %v %v", b, ok, u16, i16, i32, i64, f32, f64)
	}
	if _, err := ReadInt32(&buf); err == nil {
		t.Error("ReadInt32 on empty buffer succeeded")
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		x, y, z int32
	}{
		{0, 0, 0},
		{8, 64, 8},
		{-1, 0, -1},
		{-33554432, 255, 33554431},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := WritePosition(&buf, tt.x, tt.y, tt.z); err != nil {
			t.Fatalf("WritePosition error: %v", err)
		}
		x, y, z, err := ReadPosition(&buf)
		if err != nil {
			t.Fatalf("ReadPosition error: %v", err)
		}
		if x != tt.x || y != tt.y || z != tt.z {
			t.Errorf("position = (%d, %d, %d), want (%d, %d, %d)", x, y, z, tt.x, tt.y, tt.z)
		}
	}
}

func TestVarIntTooBig(t *testing.T) {
	r := bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if _, n, err := ReadVarInt(r); err != ErrVarIntTooBig || n != MaxVarIntLen {
		t.Errorf("ReadVarInt = %d, %v, want %d, ErrVarIntTooBig", n, err, MaxVarIntLen)
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		degrees float32
		want    byte
	}{
		{0, 0},
		{90, 64},
		{180, 128},
		{270, 192},
		{-90, 192},
	}
	for _, tt := range tests {
		if got := Angle(tt.degrees); got != tt.want {
			t.Errorf("Angle(%v) = %d, want %d", tt.degrees, got, tt.want)
		}
	}
}

func TestFixedPoint(t *testing.T) {
	tests := []struct {
		v    float64
		want int32
	}{
		{0, 0},
		{1, 32},
		{8.5, 272},
		{-0.5, -16},
	}
	for _, tt := range tests {
		if got := FixedPoint(tt.v); got != tt.want {
			t.Errorf("FixedPoint(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestUUID(t *testing.T) {
	id := uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")
	var buf bytes.Buffer
	if err := WriteUUID(&buf, id); err != nil {
		t.Fatalf("WriteUUID error: %v", err)
	}
	if buf.Len() != 16 {
		t.Fatalf("WriteUUID wrote %d bytes, want 16", buf.Len())
	}
	got, err := ReadUUID(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadUUID error: %v", err)
	}
	if got != id {
		t.Errorf("ReadUUID = %s, want %s", got, id)
	}
}

func TestSlotData(t *testing.T) {
	var empty bytes.Buffer
	WriteSlotData(&empty, -1, 0, 0)
	if !bytes.Equal(empty.Bytes(), []byte{0xFF, 0xFF}) {
		t.Errorf("empty slot = %v, want [255 255]", empty.Bytes())
	}

	var full bytes.Buffer
	WriteSlotData(&full, 276, 1, 0)
	want := []byte{0x01, 0x14, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(full.Bytes(), want) {
		t.Errorf("slot = %v, want %v", full.Bytes(), want)
	}
}

func TestMarshalPacket(t *testing.T) {
	pkt := MarshalPacket(0x01, func(w *bytes.Buffer) {
		WriteString(w, "hello")
		WriteBool(w, true)
	})
	if pkt.ID != 0x01 || pkt.String() != "packet 0x01 (7 bytes)" {
		t.Errorf("pkt = %v", pkt)
	}
	r := pkt.Reader()
	if s, err := ReadString(r); err != nil || s != "hello" {
		t.Errorf("ReadString = %q, %v", s, err)
	}
	if ok, err := ReadBool(r); err != nil || !ok {
		t.Errorf("ReadBool = %v, %v", ok, err)
	}
}
