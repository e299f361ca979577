// Package dispatch builds version-correct packets through the symbol resolver
// and delivers them to player connections.
package dispatch

import (
	"github.com/google/uuid"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
)

// Channel is the network side of a connection.
type Channel interface {
	WritePacket(p *protocol.Packet) error
	Active() bool
}

// Player is a real connected client as the host exposes it.
type Player interface {
	UniqueID() uuid.UUID
	Name() string
	Online() bool
	Channel() Channel
	World() *bridge.World
	Profile() *profile.GameProfile
	Location() bridge.Location
	// SetScoreboard replaces the board the client renders.
	SetScoreboard(b *scoreboard.Board)
}

// Host is the server the helpers run inside.
type Host interface {
	Player(id uuid.UUID) (Player, bool)
	OnlinePlayers() []Player
}

// PlayerListener observes a connection event.
type PlayerListener func(p Player)

// Events is implemented by hosts that announce joins and quits.
type Events interface {
	OnJoin(fn PlayerListener)
	OnQuit(fn PlayerListener)
}
