package dispatch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/symbol"
)

// PacketConstructionError reports arguments a packet constructor rejected.
type PacketConstructionError struct {
	Packet string
	Err    error
}

func (e *PacketConstructionError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Packet, e.Err)
}

func (e *PacketConstructionError) Unwrap() error { return e.Err }

// UnresolvedContextError reports a player that is not connected.
type UnresolvedContextError struct {
	Player string
	What   string
}

func (e *UnresolvedContextError) Error() string {
	return fmt.Sprintf("%s of %s: player is not connected", e.What, e.Player)
}

// Helper creates and sends packets.
type Helper struct {
	resolver *symbol.Resolver
	log      *zap.Logger
}

// New creates a helper that resolves packet constructors through r.
func New(r *symbol.Resolver, log *zap.Logger) *Helper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Helper{resolver: r, log: log.Named("dispatch")}
}

// Resolver returns the resolver the helper uses.
func (h *Helper) Resolver() *symbol.Resolver { return h.resolver }

// CreatePacket resolves the named packet constructor and applies args to it
// positionally. Resolution failures are returned unchanged.
func (h *Helper) CreatePacket(name string, args ...any) (*protocol.Packet, error) {
	ctor, err := h.resolver.Constructor(name)
	if err != nil {
		return nil, err
	}
	out, err := ctor.New(args...)
	if err != nil {
		return nil, &PacketConstructionError{Packet: name, Err: err}
	}
	pkt, ok := out.(*protocol.Packet)
	if !ok || pkt == nil {
		return nil, &PacketConstructionError{Packet: name, Err: fmt.Errorf("constructor returned %T", out)}
	}
	return pkt, nil
}

// SendPacket writes pkt to every target and returns how many accepted it.
// Targets that are offline or fail to write are skipped.
func (h *Helper) SendPacket(pkt *protocol.Packet, targets ...Player) int {
	if pkt == nil {
		return 0
	}
	sent := 0
	for _, p := range targets {
		if p == nil || !p.Online() {
			continue
		}
		ch := p.Channel()
		if ch == nil || !ch.Active() {
			h.log.Debug("skipping inactive channel", zap.String("player", p.Name()), zap.Stringer("packet", pkt))
			continue
		}
		if err := ch.WritePacket(pkt); err != nil {
			h.log.Debug("packet write failed",
				zap.String("player", p.Name()),
				zap.Stringer("packet", pkt),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent
}

// WorldOf returns the world p is in.
func WorldOf(p Player) (*bridge.World, error) {
	if p == nil || !p.Online() || p.World() == nil {
		return nil, &UnresolvedContextError{Player: playerName(p), What: "world"}
	}
	return p.World(), nil
}

// ProfileOf returns the game profile p connected with.
func ProfileOf(p Player) (*profile.GameProfile, error) {
	if p == nil || !p.Online() || p.Profile() == nil {
		return nil, &UnresolvedContextError{Player: playerName(p), What: "profile"}
	}
	return p.Profile(), nil
}

func playerName(p Player) string {
	if p == nil {
		return "<nil>"
	}
	return p.Name()
}
