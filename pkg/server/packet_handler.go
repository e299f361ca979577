package server

import (
	"encoding/binary"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/chat"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
)

const maxChatLength = 100

func (s *Server) handlePlayPacket(player *Player, pkt *protocol.Packet) {
	r := pkt.Reader()

	switch pkt.ID {
	case 0x00: // Keep Alive

	case 0x01: // Chat Message
		message, err := protocol.ReadString(r)
		if err != nil {
			return
		}
		if len(message) > maxChatLength {
			message = message[:maxChatLength]
		}
		if strings.HasPrefix(message, "/") {
			s.handleCommand(player, message)
			return
		}
		s.log.Info("chat", zap.String("player", player.Name()), zap.String("message", message))
		s.broadcastChat(chat.Join(chat.Colored("<"+player.Name()+"> ", "white"), chat.Text(message)))

	case 0x04, 0x05, 0x06: // movement
		s.handleMove(player, pkt.ID, r)

	case 0x0A: // Animation (arm swing)
		s.broadcastAnimation(player, 0)
	}
}

// move is the union of the serverbound movement packets.
type move struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	OnGround   bool
}

func readMove(r io.Reader, id int32, loc bridge.Location) (m move, err error) {
	m = move{X: loc.X, Y: loc.Y, Z: loc.Z, Yaw: loc.Yaw, Pitch: loc.Pitch}
	if id != 0x05 {
		fields := struct{ X, Y, Z float64 }{}
		if err = binary.Read(r, binary.BigEndian, &fields); err != nil {
			return
		}
		m.X, m.Y, m.Z = fields.X, fields.Y, fields.Z
	}
	if id != 0x04 {
		if m.Yaw, err = protocol.ReadFloat32(r); err != nil {
			return
		}
		if m.Pitch, err = protocol.ReadFloat32(r); err != nil {
			return
		}
	}
	m.OnGround, err = protocol.ReadBool(r)
	return
}

func (s *Server) handleMove(player *Player, id int32, r io.Reader) {
	m, err := readMove(r, id, player.Location())
	if err != nil {
		s.log.Debug("malformed movement", zap.String("player", player.Name()), zap.Error(err))
		return
	}
	player.human.SetLocation(m.X, m.Y, m.Z, m.Yaw, m.Pitch)
	switch id {
	case 0x04:
		s.broadcastEntityTeleport(player, m.OnGround)
	case 0x05:
		s.broadcastEntityLook(player, m.OnGround)
	default:
		s.broadcastEntityTeleport(player, m.OnGround)
		s.broadcastHeadLook(player)
	}
}
