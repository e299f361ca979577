package world

import (
	"bytes"
	"encoding/binary"
)

const (
	ChunkSectionSize = 16 * 16 * 16
	ChunkHeight      = 256
	SectionsPerChunk = ChunkHeight / 16

	lightBytes  = ChunkSectionSize / 2
	plainsBiome = 1
)

// ChunkData builds the data portion of a 1.8 Chunk Data packet for the
// column at cx, cz, with the bitmask of the sections it carries.
func (w *World) ChunkData(cx, cz int32) ([]byte, uint16) {
	var sections [SectionsPerChunk][ChunkSectionSize]uint16
	for y := int32(0); y < SurfaceY; y++ {
		state := FlatBlock(y)
		for i := 0; i < 256; i++ {
			sections[0][int(y)*256+i] = state
		}
	}

	baseX, baseZ := cx<<4, cz<<4
	w.mu.RLock()
	for pos, state := range w.overrides {
		if pos.X>>4 != cx || pos.Z>>4 != cz {
			continue
		}
		lx, lz := pos.X-baseX, pos.Z-baseZ
		sections[pos.Y>>4][((pos.Y&15)*16+lz)*16+lx] = state
	}
	w.mu.RUnlock()

	var biomes [256]byte
	for i := range biomes {
		biomes[i] = plainsBiome
	}
	return SerializeSections(&sections, biomes)
}

// SerializeSections writes the non-empty sections in 1.8 order: all block
// data, then all block light, then all sky light, then biomes.
func SerializeSections(sections *[SectionsPerChunk][ChunkSectionSize]uint16, biomes [256]byte) ([]byte, uint16) {
	var mask uint16
	for s := range sections {
		for _, b := range sections[s] {
			if b != Air {
				mask |= 1 << uint(s)
				break
			}
		}
	}

	var buf bytes.Buffer
	for s := range sections {
		if mask&(1<<uint(s)) != 0 {
			binary.Write(&buf, binary.LittleEndian, sections[s][:])
		}
	}
	light := bytes.Repeat([]byte{0xFF}, lightBytes)
	for pass := 0; pass < 2; pass++ {
		for s := range sections {
			if mask&(1<<uint(s)) != 0 {
				buf.Write(light)
			}
		}
	}
	buf.Write(biomes[:])
	return buf.Bytes(), mask
}
