package server

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/chat"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
)

func chatPacket(msg chat.Message) *protocol.Packet {
	text := msg.String()
	return protocol.MarshalPacket(0x02, func(w *bytes.Buffer) {
		protocol.WriteString(w, text)
		protocol.WriteByte(w, 0) // Position: chat
	})
}

func (s *Server) broadcastChat(msg chat.Message) {
	s.broadcast(chatPacket(msg), nil)
}

// broadcast writes pkt to every online player except exclude.
func (s *Server) broadcast(pkt *protocol.Packet, exclude *Player) {
	for _, p := range s.snapshot(exclude) {
		if err := p.WritePacket(pkt); err != nil {
			s.log.Debug("broadcast write failed", zap.String("player", p.Name()), zap.Error(err))
		}
	}
}

// create builds a packet for the server's revision through the resolver.
func (s *Server) create(name string, args ...any) (*protocol.Packet, bool) {
	pkt, err := s.helper.CreatePacket(name, args...)
	if err != nil {
		s.log.Error("create packet", zap.String("packet", name), zap.Error(err))
		return nil, false
	}
	return pkt, true
}

func (s *Server) playerInfo(action string, humans ...*bridge.Human) (*protocol.Packet, bool) {
	f, err := s.helper.Resolver().Field("EnumPlayerInfoAction." + action)
	if err != nil {
		s.log.Error("resolve player info action", zap.String("action", action), zap.Error(err))
		return nil, false
	}
	return s.create("PacketPlayOutPlayerInfo", f.Value, humans)
}

// sendPlayerInfo writes a player list update to one player.
func (s *Server) sendPlayerInfo(to *Player, action string, humans ...*bridge.Human) {
	if pkt, ok := s.playerInfo(action, humans...); ok {
		to.WritePacket(pkt)
	}
}

func (s *Server) spawnPlayerForOthers(player *Player) {
	info, ok := s.playerInfo("ADD_PLAYER", player.human)
	if !ok {
		return
	}
	spawn, ok := s.create("PacketPlayOutNamedEntitySpawn", player.human)
	if !ok {
		return
	}
	s.broadcast(info, player)
	s.broadcast(spawn, player)
}

func (s *Server) spawnOthersForPlayer(player *Player) {
	for _, other := range s.snapshot(player) {
		s.sendPlayerInfo(player, "ADD_PLAYER", other.human)
		if spawn, ok := s.create("PacketPlayOutNamedEntitySpawn", other.human); ok {
			player.WritePacket(spawn)
		}
	}
}

// despawnPlayer removes a leaving player from everyone's list and world.
func (s *Server) despawnPlayer(player *Player) {
	if info, ok := s.playerInfo("REMOVE_PLAYER", player.human); ok {
		s.broadcast(info, player)
	}
	if destroy, ok := s.create("PacketPlayOutEntityDestroy", []int32{player.EntityID()}); ok {
		s.broadcast(destroy, player)
	}
}

func (s *Server) broadcastEntityTeleport(player *Player, onGround bool) {
	loc := player.Location()
	s.broadcast(protocol.MarshalPacket(0x18, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID())
		protocol.WriteInt32(w, protocol.FixedPoint(loc.X))
		protocol.WriteInt32(w, protocol.FixedPoint(loc.Y))
		protocol.WriteInt32(w, protocol.FixedPoint(loc.Z))
		protocol.WriteByte(w, protocol.Angle(loc.Yaw))
		protocol.WriteByte(w, protocol.Angle(loc.Pitch))
		protocol.WriteBool(w, onGround)
	}), player)
}

func (s *Server) broadcastEntityLook(player *Player, onGround bool) {
	loc := player.Location()
	s.broadcast(protocol.MarshalPacket(0x16, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID())
		protocol.WriteByte(w, protocol.Angle(loc.Yaw))
		protocol.WriteByte(w, protocol.Angle(loc.Pitch))
		protocol.WriteBool(w, onGround)
	}), player)
	s.broadcastHeadLook(player)
}

func (s *Server) broadcastHeadLook(player *Player) {
	yaw := player.Location().Yaw
	s.broadcast(protocol.MarshalPacket(0x19, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID())
		protocol.WriteByte(w, protocol.Angle(yaw))
	}), player)
}

func (s *Server) broadcastAnimation(player *Player, animation byte) {
	s.broadcast(protocol.MarshalPacket(0x0B, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID())
		protocol.WriteByte(w, animation)
	}), player)
}
