// Package dispatchtest provides recording players and hosts for tests.
package dispatchtest

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
)

// ErrClosed is returned by writes to a closed Channel.
var ErrClosed = errors.New("dispatchtest: channel closed")

// Channel records every packet written to it.
type Channel struct {
	mu      sync.Mutex
	packets []*protocol.Packet
	closed  bool
	fail    error
}

// WritePacket records p, or fails if the channel is closed or set to fail.
func (c *Channel) WritePacket(p *protocol.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	if c.closed {
		return ErrClosed
	}
	c.packets = append(c.packets, p)
	return nil
}

// Active reports whether the channel is open.
func (c *Channel) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close marks the channel inactive.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// FailWith makes subsequent writes return err while the channel stays active.
func (c *Channel) FailWith(err error) {
	c.mu.Lock()
	c.fail = err
	c.mu.Unlock()
}

// Packets returns a copy of the recorded packets.
func (c *Channel) Packets() []*protocol.Packet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Packet(nil), c.packets...)
}

// IDs lists the ids of recorded packets in write order.
func (c *Channel) IDs() []int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int32, len(c.packets))
	for i, p := range c.packets {
		ids[i] = p.ID
	}
	return ids
}

// Reset drops the recorded packets.
func (c *Channel) Reset() {
	c.mu.Lock()
	c.packets = nil
	c.mu.Unlock()
}

// Player is a connected fake client.
type Player struct {
	Conn *Channel

	id      uuid.UUID
	name    string
	world   *bridge.World
	profile *profile.GameProfile

	mu     sync.Mutex
	online bool
	loc    bridge.Location
	boards []*scoreboard.Board
}

// NewPlayer creates an online player in world with an open channel.
func NewPlayer(name string, world *bridge.World) *Player {
	id := uuid.New()
	return &Player{
		Conn:    &Channel{},
		id:      id,
		name:    name,
		world:   world,
		profile: profile.New(id, name),
		online:  true,
	}
}

// UniqueID returns the player's profile id.
func (p *Player) UniqueID() uuid.UUID { return p.id }

// Name returns the player name.
func (p *Player) Name() string { return p.name }

// World returns the world set at creation.
func (p *Player) World() *bridge.World { return p.world }

// Profile returns the player's game profile.
func (p *Player) Profile() *profile.GameProfile { return p.profile }

// Online reports whether the player is connected.
func (p *Player) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Channel returns Conn, or nil once Conn has been cleared.
func (p *Player) Channel() dispatch.Channel {
	if p.Conn == nil {
		return nil
	}
	return p.Conn
}

// Location returns the last teleport location.
func (p *Player) Location() bridge.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loc
}

// Teleport moves the player.
func (p *Player) Teleport(loc bridge.Location) {
	p.mu.Lock()
	p.loc = loc
	p.mu.Unlock()
}

// SetScoreboard records a scoreboard assignment.
func (p *Player) SetScoreboard(b *scoreboard.Board) {
	p.mu.Lock()
	p.boards = append(p.boards, b)
	p.mu.Unlock()
}

// Scoreboard returns the last assigned board.
func (p *Player) Scoreboard() *scoreboard.Board {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.boards) == 0 {
		return nil
	}
	return p.boards[len(p.boards)-1]
}

// ScoreboardAssignments counts SetScoreboard calls.
func (p *Player) ScoreboardAssignments() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.boards)
}

// Disconnect marks the player offline and closes its channel.
func (p *Player) Disconnect() {
	p.mu.Lock()
	p.online = false
	p.mu.Unlock()
	if p.Conn != nil {
		p.Conn.Close()
	}
}

// Host is an in-memory player registry.
type Host struct {
	mu      sync.Mutex
	players map[uuid.UUID]*Player
	order   []uuid.UUID
}

// NewHost creates a host with the given players online.
func NewHost(players ...*Player) *Host {
	h := &Host{players: make(map[uuid.UUID]*Player)}
	for _, p := range players {
		h.Add(p)
	}
	return h
}

// Add registers p with the host.
func (h *Host) Add(p *Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.players[p.id]; !ok {
		h.order = append(h.order, p.id)
	}
	h.players[p.id] = p
}

// Remove disconnects and forgets the player.
func (h *Host) Remove(id uuid.UUID) {
	h.mu.Lock()
	p, ok := h.players[id]
	delete(h.players, id)
	for i, o := range h.order {
		if o == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
	if ok {
		p.Disconnect()
	}
}

// Player looks up a registered player by id.
func (h *Host) Player(id uuid.UUID) (dispatch.Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[id]
	if !ok || !p.Online() {
		return nil, false
	}
	return p, true
}

// OnlinePlayers returns the registered players that are online.
func (h *Host) OnlinePlayers() []dispatch.Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []dispatch.Player
	for _, id := range h.order {
		if p := h.players[id]; p.Online() {
			out = append(out, p)
		}
	}
	return out
}
