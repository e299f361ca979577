// Package world holds the superflat terrain the server streams to clients.
package world

import "sync"

// SurfaceY is the first air layer above the grass.
const SurfaceY = 5

// Block states are blockID << 4 | metadata.
const (
	Air     uint16 = 0
	Grass   uint16 = 2 << 4
	Dirt    uint16 = 3 << 4
	Bedrock uint16 = 7 << 4
)

type BlockPos struct {
	X, Y, Z int32
}

// World is a flat world with sparse overrides.
type World struct {
	mu        sync.RWMutex
	overrides map[BlockPos]uint16
}

// NewWorld creates a flat world with no overrides.
func NewWorld() *World {
	return &World{overrides: make(map[BlockPos]uint16)}
}

// GetBlock returns the block state at a position.
func (w *World) GetBlock(x, y, z int32) uint16 {
	w.mu.RLock()
	b, ok := w.overrides[BlockPos{x, y, z}]
	w.mu.RUnlock()
	if ok {
		return b
	}
	return FlatBlock(y)
}

// SetBlock overrides the state at a position. Positions outside 0..255 are
// ignored.
func (w *World) SetBlock(x, y, z int32, state uint16) {
	if y < 0 || y >= ChunkHeight {
		return
	}
	w.mu.Lock()
	w.overrides[BlockPos{x, y, z}] = state
	w.mu.Unlock()
}

// FlatBlock is the generated state at height y.
func FlatBlock(y int32) uint16 {
	switch {
	case y < 0 || y >= ChunkHeight:
		return Air
	case y == 0:
		return Bedrock
	case y < SurfaceY-1:
		return Dirt
	case y == SurfaceY-1:
		return Grass
	default:
		return Air
	}
}
