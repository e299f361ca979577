// Package equipment encodes the items an entity is displayed wearing.
package equipment

import (
	"fmt"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/version"
)

// Slot is an equipment position. The numeric value is the pre-1.9 wire slot.
type Slot int

const (
	Hand Slot = iota
	Head
	Chest
	Legs
	Feet
	numSlots
)

// Order is the order equipment packets are sent in.
var Order = [numSlots]Slot{Hand, Head, Chest, Legs, Feet}

var slotNames = [numSlots]string{"hand", "head", "chest", "legs", "feet"}

var slotConstants = [numSlots]string{"MAINHAND", "HEAD", "CHEST", "LEGS", "FEET"}

// String returns the lower-case slot name.
func (s Slot) String() string {
	if s < 0 || s >= numSlots {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// Constant is the EnumItemSlot constant for s.
func (s Slot) Constant() string {
	if s < 0 || s >= numSlots {
		return ""
	}
	return slotConstants[s]
}

// Equipment is an immutable set of worn items.
type Equipment struct {
	items [numSlots]*bridge.Item
}

// Item returns a copy of the item in s, or nil.
func (e Equipment) Item(s Slot) *bridge.Item {
	if s < 0 || s >= numSlots || e.items[s] == nil {
		return nil
	}
	it := *e.items[s]
	return &it
}

// Empty reports whether no slot holds a visible item.
func (e Equipment) Empty() bool {
	for _, it := range e.items {
		if !it.IsAir() {
			return false
		}
	}
	return true
}

// Builder collects the five optional items.
type Builder struct {
	Helmet     *bridge.Item
	ChestPlate *bridge.Item
	Leggings   *bridge.Item
	Boots      *bridge.Item
	Hand       *bridge.Item
}

// Complete snapshots the builder. Later changes to the builder's items do not
// affect the result.
func (b Builder) Complete() Equipment {
	var e Equipment
	e.items[Hand] = clone(b.Hand)
	e.items[Head] = clone(b.Helmet)
	e.items[Chest] = clone(b.ChestPlate)
	e.items[Legs] = clone(b.Leggings)
	e.items[Feet] = clone(b.Boots)
	return e
}

func clone(it *bridge.Item) *bridge.Item {
	if it == nil {
		return nil
	}
	c := *it
	return &c
}

// Encoder turns equipment into entity equipment packets for the running
// version.
type Encoder struct {
	helper *dispatch.Helper
}

// NewEncoder creates an encoder that builds packets through h.
func NewEncoder(h *dispatch.Helper) *Encoder {
	return &Encoder{helper: h}
}

// SlotValue returns the wire slot argument for s: the slot number before
// version.EnumItemSlotSince, the EnumItemSlot constant from then on.
func (e *Encoder) SlotValue(s Slot) (any, error) {
	if s < 0 || s >= numSlots {
		return nil, fmt.Errorf("equipment: invalid slot %d", int(s))
	}
	r := e.helper.Resolver()
	if !r.Version().AtLeast(version.EnumItemSlotSince) {
		return int(s), nil
	}
	f, err := r.Field("EnumItemSlot." + s.Constant())
	if err != nil {
		return nil, err
	}
	return f.Value, nil
}

// BuildPackets returns one packet per visible item in Order.
func (e *Encoder) BuildPackets(entityID int32, eq Equipment) ([]*protocol.Packet, error) {
	if eq.Empty() {
		return nil, nil
	}
	convert, err := e.helper.Resolver().Method("CraftItemStack_asNMSCopy")
	if err != nil {
		return nil, err
	}

	var packets []*protocol.Packet
	for _, s := range Order {
		it := eq.items[s]
		if it.IsAir() {
			continue
		}
		slot, err := e.SlotValue(s)
		if err != nil {
			return nil, err
		}
		wire, err := convert.Invoke(nil, *it)
		if err != nil {
			return nil, fmt.Errorf("equipment: convert %s item %q: %w", s, it.Material, err)
		}
		pkt, err := e.helper.CreatePacket("PacketPlayOutEntityEquipment", entityID, slot, wire)
		if err != nil {
			return nil, err
		}
		packets = append(packets, pkt)
	}
	return packets, nil
}
