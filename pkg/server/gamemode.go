package server

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/chat"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
)

// ParseGameMode parses a gamemode name, abbreviation or number.
func ParseGameMode(s string) (byte, bool) {
	switch strings.ToLower(s) {
	case "survival", "s", "0":
		return bridge.GameModeSurvival, true
	case "creative", "c", "1":
		return bridge.GameModeCreative, true
	case "adventure", "a", "2":
		return bridge.GameModeAdventure, true
	case "spectator", "sp", "3":
		return bridge.GameModeSpectator, true
	default:
		return 0, false
	}
}

// GameModeName returns the display name of a game mode.
func GameModeName(mode byte) string {
	switch mode {
	case bridge.GameModeSurvival:
		return "Survival"
	case bridge.GameModeCreative:
		return "Creative"
	case bridge.GameModeAdventure:
		return "Adventure"
	case bridge.GameModeSpectator:
		return "Spectator"
	default:
		return fmt.Sprintf("Unknown(%d)", mode)
	}
}

func abilityFlags(mode byte) byte {
	switch mode {
	case bridge.GameModeCreative:
		return 0x0D // Invulnerable | Allow Flying | Instant Break
	case bridge.GameModeSpectator:
		return 0x07 // Invulnerable | Flying | Allow Flying
	default:
		return 0x00
	}
}

// handleCommand runs a /-prefixed chat message.
func (s *Server) handleCommand(player *Player, message string) {
	parts := strings.Fields(message)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	s.log.Info("command", zap.String("player", player.Name()), zap.String("command", message))

	switch cmd {
	case "/gamemode", "/gm":
		if len(parts) < 2 {
			player.sendChat(chat.Colored("Usage: /gamemode <survival|creative|adventure|spectator>", "red"))
			return
		}
		mode, ok := ParseGameMode(parts[1])
		if !ok {
			player.sendChat(chat.Colored("Unknown gamemode: "+parts[1], "red"))
			return
		}
		s.switchGameMode(player, mode)
	default:
		player.sendChat(chat.Colored("Unknown command: "+cmd, "red"))
	}
}

// switchGameMode changes a player's mode and tells every client.
func (s *Server) switchGameMode(player *Player, mode byte) {
	player.human.SetGameMode(mode)

	player.WritePacket(protocol.MarshalPacket(0x2B, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 3) // Reason: change game mode
		protocol.WriteFloat32(w, float32(mode))
	}))
	player.WritePacket(protocol.MarshalPacket(0x39, func(w *bytes.Buffer) {
		protocol.WriteByte(w, abilityFlags(mode))
		protocol.WriteFloat32(w, 0.05)
		protocol.WriteFloat32(w, 0.1)
	}))
	if pkt, ok := s.playerInfo("UPDATE_GAME_MODE", player.human); ok {
		s.broadcast(pkt, nil)
	}
	player.sendChat(chat.Colored("Game mode set to "+GameModeName(mode), "gray"))
}
