package server

import (
	"bytes"
	"testing"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
)

func TestReadMove(t *testing.T) {
	start := bridge.Location{X: 8.5, Y: 5, Z: 8.5, Yaw: 10, Pitch: 20}
	tests := []struct {
		name  string
		id    int32
		build func(w *bytes.Buffer)
		want  move
	}{
		{"position", 0x04, func(w *bytes.Buffer) {
			protocol.WriteFloat64(w, 1)
			protocol.WriteFloat64(w, 2)
			protocol.WriteFloat64(w, 3)
			protocol.WriteBool(w, true)
		}, move{X: 1, Y: 2, Z: 3, Yaw: 10, Pitch: 20, OnGround: true}},
		{"look", 0x05, func(w *bytes.Buffer) {
			protocol.WriteFloat32(w, 90)
			protocol.WriteFloat32(w, -45)
			protocol.WriteBool(w, false)
		}, move{X: 8.5, Y: 5, Z: 8.5, Yaw: 90, Pitch: -45}},
		{"position and look", 0x06, func(w *bytes.Buffer) {
			protocol.WriteFloat64(w, -1)
			protocol.WriteFloat64(w, 64)
			protocol.WriteFloat64(w, 0.5)
			protocol.WriteFloat32(w, 180)
			protocol.WriteFloat32(w, 0)
			protocol.WriteBool(w, true)
		}, move{X: -1, Y: 64, Z: 0.5, Yaw: 180, OnGround: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := protocol.MarshalPacket(tt.id, tt.build)
			got, err := readMove(pkt.Reader(), tt.id, start)
			if err != nil {
				t.Fatalf("readMove error: %v", err)
			}
			if got != tt.want {
				t.Errorf("readMove = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := readMove(bytes.NewReader([]byte{0x01}), 0x04, start); err == nil {
		t.Error("readMove accepted a truncated packet")
	}
}
