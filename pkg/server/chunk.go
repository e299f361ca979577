package server

import (
	"bytes"
	"sort"

	"github.com/StoreStation/phantomcraft/pkg/protocol"
)

// ViewDistance is the chunk radius sent on join.
const ViewDistance = 3

type ChunkPos struct {
	X, Z int32
}

// spawnChunks lists the columns around (x, z), nearest first.
func spawnChunks(x, z float64) []ChunkPos {
	cx, cz := int32(x)>>4, int32(z)>>4
	var out []ChunkPos
	for dx := int32(-ViewDistance); dx <= ViewDistance; dx++ {
		for dz := int32(-ViewDistance); dz <= ViewDistance; dz++ {
			out = append(out, ChunkPos{cx + dx, cz + dz})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := (out[i].X-cx)*(out[i].X-cx) + (out[i].Z-cz)*(out[i].Z-cz)
		dj := (out[j].X-cx)*(out[j].X-cx) + (out[j].Z-cz)*(out[j].Z-cz)
		return di < dj
	})
	return out
}

func (s *Server) sendSpawnChunks(player *Player) error {
	loc := player.Location()
	for _, pos := range spawnChunks(loc.X, loc.Z) {
		if err := player.write(s.chunkPacket(pos)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) chunkPacket(pos ChunkPos) *protocol.Packet {
	data, mask := s.terrain.ChunkData(pos.X, pos.Z)
	return protocol.MarshalPacket(0x21, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, pos.X)
		protocol.WriteInt32(w, pos.Z)
		protocol.WriteBool(w, true) // Ground-up continuous
		protocol.WriteUint16(w, mask)
		protocol.WriteVarInt(w, int32(len(data)))
		w.Write(data)
	})
}
