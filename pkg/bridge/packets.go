package bridge

import (
	"bytes"
	"fmt"

	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
	"github.com/StoreStation/phantomcraft/pkg/symbol"
)

// Player info actions in wire order.
var playerInfoActions = []string{
	"ADD_PLAYER",
	"UPDATE_GAME_MODE",
	"UPDATE_LATENCY",
	"UPDATE_DISPLAY_NAME",
	"REMOVE_PLAYER",
}

// Item slots in wire order from 1.9 on.
var itemSlots = []string{"MAINHAND", "OFFHAND", "FEET", "LEGS", "CHEST", "HEAD"}

// Team packet modes.
const (
	TeamCreate        = 0
	TeamRemove        = 1
	TeamUpdate        = 2
	TeamAddEntries    = 3
	TeamRemoveEntries = 4
)

const (
	visibilityAlways = "always"
	colorReset       = 0xFF
	skinAllParts     = 0x7F
	metadataEnd47    = 0x7F
	metadataEnd107   = 0xFF
)

func encodePlayerInfo(id int32, action symbol.EnumConstant, humans []*Human) (*protocol.Packet, error) {
	if action.Class != "EnumPlayerInfoAction" {
		return nil, fmt.Errorf("player info action %s is not an EnumPlayerInfoAction", action)
	}
	for i, h := range humans {
		if h == nil || h.Profile() == nil {
			return nil, fmt.Errorf("player info entry %d has no profile", i)
		}
	}
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, action.Ordinal)
		protocol.WriteVarInt(w, int32(len(humans)))
		for _, h := range humans {
			prof := h.Profile()
			protocol.WriteUUID(w, prof.ID)
			switch action.Name {
			case "ADD_PLAYER":
				protocol.WriteString(w, prof.Name)
				props := prof.Properties.All()
				protocol.WriteVarInt(w, int32(len(props)))
				for _, p := range props {
					protocol.WriteString(w, p.Name)
					protocol.WriteString(w, p.Value)
					protocol.WriteBool(w, p.Signed())
					if p.Signed() {
						protocol.WriteString(w, p.Signature)
					}
				}
				protocol.WriteVarInt(w, int32(h.GameMode()))
				protocol.WriteVarInt(w, 0)   // Ping
				protocol.WriteBool(w, false) // Has display name
			case "UPDATE_GAME_MODE":
				protocol.WriteVarInt(w, int32(h.GameMode()))
			case "UPDATE_LATENCY":
				protocol.WriteVarInt(w, 0)
			case "UPDATE_DISPLAY_NAME":
				protocol.WriteBool(w, false)
			}
		}
	}), nil
}

// encodeSpawn47 writes Spawn Player with fixed-point coordinates, the held
// item and the 1.8 metadata format.
func encodeSpawn47(id int32, h *Human) (*protocol.Packet, error) {
	if h == nil || h.Profile() == nil {
		return nil, fmt.Errorf("spawn of an entity without a profile")
	}
	loc := h.Location()
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, h.ID())
		protocol.WriteUUID(w, h.Profile().ID)
		protocol.WriteInt32(w, protocol.FixedPoint(loc.X))
		protocol.WriteInt32(w, protocol.FixedPoint(loc.Y))
		protocol.WriteInt32(w, protocol.FixedPoint(loc.Z))
		protocol.WriteByte(w, protocol.Angle(loc.Yaw))
		protocol.WriteByte(w, protocol.Angle(loc.Pitch))
		protocol.WriteInt16(w, 0) // Current item

		// Metadata: flags (byte, index 0), skin parts (byte, index 10)
		protocol.WriteByte(w, 0x00)
		protocol.WriteByte(w, 0x00)
		protocol.WriteByte(w, 0x0A)
		protocol.WriteByte(w, skinAllParts)
		protocol.WriteByte(w, metadataEnd47)
	}), nil
}

// encodeSpawn107 writes Spawn Player with double coordinates and the typed
// metadata format used from 1.9 on.
func encodeSpawn107(id int32, h *Human) (*protocol.Packet, error) {
	if h == nil || h.Profile() == nil {
		return nil, fmt.Errorf("spawn of an entity without a profile")
	}
	loc := h.Location()
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, h.ID())
		protocol.WriteUUID(w, h.Profile().ID)
		protocol.WriteFloat64(w, loc.X)
		protocol.WriteFloat64(w, loc.Y)
		protocol.WriteFloat64(w, loc.Z)
		protocol.WriteByte(w, protocol.Angle(loc.Yaw))
		protocol.WriteByte(w, protocol.Angle(loc.Pitch))

		// Metadata: flags (index 0, type byte)
		protocol.WriteByte(w, 0x00)
		protocol.WriteVarInt(w, 0)
		protocol.WriteByte(w, 0x00)
		protocol.WriteByte(w, metadataEnd107)
	}), nil
}

func writeSlot(w *bytes.Buffer, item WireItem) {
	if item.ID < 0 {
		protocol.WriteInt16(w, -1)
		return
	}
	protocol.WriteSlotData(w, item.ID, item.Count, item.Damage)
}

func encodeEquipment47(id, entityID int32, slot int, item WireItem) (*protocol.Packet, error) {
	if slot < 0 || slot > 4 {
		return nil, fmt.Errorf("equipment slot %d out of range", slot)
	}
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteInt16(w, int16(slot))
		writeSlot(w, item)
	}), nil
}

func encodeEquipment107(id, entityID int32, slot symbol.EnumConstant, item WireItem) (*protocol.Packet, error) {
	if slot.Class != "EnumItemSlot" {
		return nil, fmt.Errorf("equipment slot %s is not an EnumItemSlot", slot)
	}
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteVarInt(w, slot.Ordinal)
		writeSlot(w, item)
	}), nil
}

func encodeDestroy(id int32, entityIDs []int32) (*protocol.Packet, error) {
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, int32(len(entityIDs)))
		for _, eid := range entityIDs {
			protocol.WriteVarInt(w, eid)
		}
	}), nil
}

// encodeTeam writes a Teams packet. collision adds the collision rule field
// introduced in 1.9.
func encodeTeam(id int32, collision bool, team *scoreboard.Team, entries []string, mode int) (*protocol.Packet, error) {
	if team == nil {
		return nil, fmt.Errorf("team packet without a team")
	}
	if mode < TeamCreate || mode > TeamRemoveEntries {
		return nil, fmt.Errorf("team packet mode %d out of range", mode)
	}
	return protocol.MarshalPacket(id, func(w *bytes.Buffer) {
		protocol.WriteString(w, team.Name())
		protocol.WriteByte(w, byte(mode))
		if mode == TeamCreate || mode == TeamUpdate {
			protocol.WriteString(w, team.DisplayName())
			protocol.WriteString(w, team.Prefix())
			protocol.WriteString(w, team.Suffix())
			protocol.WriteByte(w, 0x01) // Friendly fire
			protocol.WriteString(w, visibilityAlways)
			if collision {
				protocol.WriteString(w, visibilityAlways)
			}
			protocol.WriteByte(w, colorReset)
		}
		if mode == TeamCreate || mode == TeamAddEntries || mode == TeamRemoveEntries {
			protocol.WriteVarInt(w, int32(len(entries)))
			for _, e := range entries {
				protocol.WriteString(w, e)
			}
		}
	}), nil
}
