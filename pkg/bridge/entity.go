// Package bridge is the host's internal object model: the worlds, entities
// and items that symbols resolve to, and the packet codecs for every
// supported protocol generation.
package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/StoreStation/phantomcraft/pkg/profile"
)

// Game modes.
const (
	GameModeSurvival  byte = 0
	GameModeCreative  byte = 1
	GameModeAdventure byte = 2
	GameModeSpectator byte = 3
)

// World is a loaded world. Entity ids are allocated per process from the
// world so real players and simulated entities never collide.
type World struct {
	Name    string
	nextEID atomic.Int32
}

// NewWorld creates a world with its own entity id allocator.
func NewWorld(name string) *World {
	w := &World{Name: name}
	w.nextEID.Store(1)
	return w
}

// AllocateEntityID returns a fresh entity id.
func (w *World) AllocateEntityID() int32 {
	return w.nextEID.Add(1) - 1
}

// Location is a position with rotation.
type Location struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

// InteractManager tracks how an entity interacts with its world.
type InteractManager struct {
	world    *World
	gameMode atomic.Uint32
}

// NewInteractManager creates a survival-mode interact manager for w.
func NewInteractManager(w *World) *InteractManager {
	return &InteractManager{world: w}
}

// World returns the world the manager belongs to.
func (m *InteractManager) World() *World { return m.world }

// GameMode returns the current game mode.
func (m *InteractManager) GameMode() byte { return byte(m.gameMode.Load()) }

// SetGameMode changes the game mode.
func (m *InteractManager) SetGameMode(mode byte) { m.gameMode.Store(uint32(mode)) }

// Human is a player-shaped entity.
type Human struct {
	id       int32
	world    *World
	profile  *profile.GameProfile
	interact *InteractManager

	mu  sync.Mutex
	loc Location
}

// NewHuman allocates an entity id in w and creates a human entity.
func NewHuman(w *World, p *profile.GameProfile, im *InteractManager) *Human {
	return &Human{
		id:       w.AllocateEntityID(),
		world:    w,
		profile:  p,
		interact: im,
	}
}

// ID returns the network entity id.
func (h *Human) ID() int32 { return h.id }

// World returns the world the entity lives in.
func (h *Human) World() *World { return h.world }

// Profile returns the game profile the entity is shown with.
func (h *Human) Profile() *profile.GameProfile { return h.profile }

// GameMode returns the game mode of the entity's interact manager.
func (h *Human) GameMode() byte {
	if h.interact == nil {
		return GameModeSurvival
	}
	return h.interact.GameMode()
}

// SetGameMode changes the mode of the entity's interact manager.
func (h *Human) SetGameMode(mode byte) {
	if h.interact != nil {
		h.interact.SetGameMode(mode)
	}
}

// Location returns the current position and rotation.
func (h *Human) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loc
}

// SetLocation moves the entity internally. Nothing is sent to clients.
func (h *Human) SetLocation(x, y, z float64, yaw, pitch float32) {
	h.mu.Lock()
	h.loc = Location{X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch}
	h.mu.Unlock()
}
