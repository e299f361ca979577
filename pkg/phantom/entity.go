package phantom

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/equipment"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
)

// ErrInvalidEntity is returned by accessors of an entity that could not be
// constructed.
var ErrInvalidEntity = errors.New("phantom: entity was not constructed")

// State is the visibility state of a phantom.
type State int

const (
	Constructed State = iota
	Visible
	Hidden
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Entity is a phantom player. Its methods must be called on the main thread.
type Entity struct {
	factory *Factory
	owner   uuid.UUID
	name    string
	board   *scoreboard.Board
	team    *scoreboard.Team
	log     *zap.Logger

	valid     bool
	human     *bridge.Human
	state     State
	equipment equipment.Equipment
}

// Owner returns the id of the player the phantom belongs to.
func (e *Entity) Owner() uuid.UUID { return e.owner }

// Name is the entity's profile name, the middle name tag segment.
func (e *Entity) Name() string { return e.name }

// Valid reports whether the entity was constructed. Invalid entities ignore
// every operation.
func (e *Entity) Valid() bool { return e.valid }

// State returns the current visibility state.
func (e *Entity) State() State { return e.state }

// Team returns the team carrying the name tag prefix and suffix.
func (e *Entity) Team() *scoreboard.Team { return e.team }

// Board returns the scoreboard assigned to observers.
func (e *Entity) Board() *scoreboard.Board { return e.board }

// Equipment returns the equipment sent with the next spawn.
func (e *Entity) Equipment() equipment.Equipment { return e.equipment }

// EntityID returns the network id of the entity.
func (e *Entity) EntityID() (int32, bool) {
	if !e.valid {
		return 0, false
	}
	m, err := e.factory.helper.Resolver().Method("Entity_getId")
	if err != nil {
		e.log.Error("resolve entity id", zap.Error(err))
		return 0, false
	}
	out, err := m.Invoke(e.human)
	if err != nil {
		e.log.Error("entity id", zap.Error(err))
		return 0, false
	}
	id, ok := out.(int32)
	return id, ok
}

// Profile returns the synthetic game profile the entity is shown with.
// It fails with ErrInvalidEntity if construction failed.
func (e *Entity) Profile() (*profile.GameProfile, error) {
	if !e.valid {
		return nil, ErrInvalidEntity
	}
	m, err := e.factory.helper.Resolver().Method("EntityHuman_getProfile")
	if err != nil {
		return nil, err
	}
	out, err := m.Invoke(e.human)
	if err != nil {
		return nil, err
	}
	p, ok := out.(*profile.GameProfile)
	if !ok || p == nil {
		return nil, fmt.Errorf("EntityHuman_getProfile returned %T", out)
	}
	return p, nil
}

// Equip replaces the equipment shown by future ShowTo calls. Observers that
// already see the entity are not updated.
func (e *Entity) Equip(b equipment.Builder) {
	if !e.valid {
		return
	}
	e.equipment = b.Complete()
}

// ApplySkin sets the textures property of the synthetic profile. It affects
// spawns sent afterwards.
func (e *Entity) ApplySkin(textures profile.Property) error {
	if !e.valid {
		return nil
	}
	p, err := e.Profile()
	if err != nil {
		return err
	}
	p.Properties.Replace(profile.TexturesKey, textures)
	return nil
}

// ApplySkinFrom copies the textures of a connected player. A player without
// textures leaves the skin unchanged.
func (e *Entity) ApplySkinFrom(player dispatch.Player) error {
	if !e.valid {
		return nil
	}
	src, err := dispatch.ProfileOf(player)
	if err != nil {
		return err
	}
	textures, ok := src.Textures()
	if !ok {
		return nil
	}
	return e.ApplySkin(textures)
}

// SetLocation moves the entity's internal position. No packet is sent, so
// observers only see the new position after the entity is shown again.
func (e *Entity) SetLocation(loc bridge.Location) error {
	if !e.valid {
		return nil
	}
	m, err := e.factory.helper.Resolver().Method("Entity_setLocation")
	if err != nil {
		return err
	}
	_, err = m.Invoke(e.human, loc.X, loc.Y, loc.Z, loc.Yaw, loc.Pitch)
	return err
}

// ShowTo spawns the entity for targets: player list entry, spawn, equipment,
// scoreboard and team membership. The list entry is removed again after the
// factory's removal delay.
func (e *Entity) ShowTo(targets ...dispatch.Player) error {
	if !e.valid {
		return nil
	}
	f := e.factory
	humans := []*bridge.Human{e.human}

	add, err := e.infoAction("ADD_PLAYER")
	if err != nil {
		return err
	}
	if err := e.send(targets, "PacketPlayOutPlayerInfo", add, humans); err != nil {
		return err
	}
	if err := e.send(targets, "PacketPlayOutNamedEntitySpawn", e.human); err != nil {
		return err
	}

	if id, ok := e.EntityID(); ok {
		packets, err := f.encoder.BuildPackets(id, e.equipment)
		if err != nil {
			return err
		}
		for _, pkt := range packets {
			f.helper.SendPacket(pkt, targets...)
		}
	}

	for _, t := range targets {
		if t != nil && t.Online() {
			t.SetScoreboard(e.board)
		}
	}
	if err := e.send(targets, "PacketPlayOutScoreboardTeam", e.team, []string{e.name}, bridge.TeamAddEntries); err != nil {
		return err
	}

	remove, err := e.infoAction("REMOVE_PLAYER")
	if err != nil {
		return err
	}
	delayed := append([]dispatch.Player(nil), targets...)
	f.sched.Schedule(f.removalDelay, false, func() {
		if err := e.send(delayed, "PacketPlayOutPlayerInfo", remove, humans); err != nil {
			e.log.Error("player list removal", zap.Error(err))
		}
	})

	e.state = Visible
	e.log.Debug("phantom shown", zap.Int("targets", len(targets)))
	return nil
}

// HideFrom removes the entity from targets' player lists and destroys it.
func (e *Entity) HideFrom(targets ...dispatch.Player) error {
	if !e.valid {
		return nil
	}
	id, ok := e.EntityID()
	if !ok {
		return nil
	}
	remove, err := e.infoAction("REMOVE_PLAYER")
	if err != nil {
		return err
	}
	if err := e.send(targets, "PacketPlayOutPlayerInfo", remove, []*bridge.Human{e.human}); err != nil {
		return err
	}
	if err := e.send(targets, "PacketPlayOutEntityDestroy", []int32{id}); err != nil {
		return err
	}
	e.state = Hidden
	e.log.Debug("phantom hidden", zap.Int("targets", len(targets)))
	return nil
}

// Despawn hides the entity from every online player.
func (e *Entity) Despawn() error {
	return e.HideFrom(e.factory.host.OnlinePlayers()...)
}

func (e *Entity) infoAction(name string) (any, error) {
	f, err := e.factory.helper.Resolver().Field("EnumPlayerInfoAction." + name)
	if err != nil {
		return nil, err
	}
	return f.Value, nil
}

func (e *Entity) send(targets []dispatch.Player, packet string, args ...any) error {
	pkt, err := e.factory.helper.CreatePacket(packet, args...)
	if err != nil {
		return err
	}
	e.factory.helper.SendPacket(pkt, targets...)
	return nil
}
