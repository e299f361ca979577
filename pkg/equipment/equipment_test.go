package equipment

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/symbol"
	"github.com/StoreStation/phantomcraft/pkg/version"
)

// stubEncoder returns an encoder over a minimal catalog whose equipment
// constructor records the slot argument of every call.
func stubEncoder(t *testing.T, v version.Version) (*Encoder, *[]any) {
	t.Helper()
	cat, err := symbol.NewCatalog(
		symbol.Entry{Kind: symbol.KindClass, Name: "EnumItemSlot", Since: version.V1_9_R1, Bind: "slots"},
		symbol.Entry{Kind: symbol.KindMethod, Name: "CraftItemStack_asNMSCopy", Since: version.V1_8_R1, Bind: "copy"},
		symbol.Entry{Kind: symbol.KindConstructor, Name: "PacketPlayOutEntityEquipment", Since: version.V1_8_R1, Bind: "equip"},
	)
	if err != nil {
		t.Fatal(err)
	}

	var slots []any
	anyType := reflect.TypeOf((*any)(nil)).Elem()
	b := symbol.NewBindings()
	b.Register("slots", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.ClassHandle(symbol.NewEnum("EnumItemSlot", "MAINHAND", "OFFHAND", "FEET", "LEGS", "CHEST", "HEAD")), nil
	})
	b.Register("copy", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.MethodHandle(symbol.NewMethod(e.Name, nil, symbol.Params(reflect.TypeOf(bridge.Item{})),
			func(_ any, args []any) (any, error) {
				return bridge.WireItem{ID: 1, Count: 1}, nil
			})), nil
	})
	b.Register("equip", func(e symbol.Entry) (*symbol.Handle, error) {
		params := symbol.Params(reflect.TypeOf(int32(0)), anyType, reflect.TypeOf(bridge.WireItem{}))
		return symbol.ConstructorHandle(symbol.NewConstructor(e.Name, params,
			func(args []any) (any, error) {
				slots = append(slots, args[1])
				return &protocol.Packet{ID: int32(len(slots))}, nil
			})), nil
	})

	log := zaptest.NewLogger(t)
	r := symbol.NewResolver(v, cat, b, log)
	return NewEncoder(dispatch.New(r, log)), &slots
}

func item(material string) *bridge.Item {
	return &bridge.Item{Material: material, Amount: 1}
}

func full() Equipment {
	return Builder{
		Helmet:     item("diamond_helmet"),
		ChestPlate: item("diamond_chestplate"),
		Leggings:   item("diamond_leggings"),
		Boots:      item("diamond_boots"),
		Hand:       item("diamond_sword"),
	}.Complete()
}

func TestSlotValueBelowThreshold(t *testing.T) {
	enc, _ := stubEncoder(t, version.V1_8_R3)
	for _, s := range Order {
		v, err := enc.SlotValue(s)
		if err != nil {
			t.Fatalf("SlotValue(%s) error: %v", s, err)
		}
		if v != int(s) {
			t.Errorf("SlotValue(%s) = %v, want %d", s, v, int(s))
		}
	}
	want := map[Slot]int{Hand: 0, Head: 1, Chest: 2, Legs: 3, Feet: 4}
	for s, n := range want {
		if int(s) != n {
			t.Errorf("%s = %d, want %d", s, int(s), n)
		}
	}
}

func TestSlotValueAtThreshold(t *testing.T) {
	enc, _ := stubEncoder(t, version.EnumItemSlotSince)
	for _, s := range Order {
		v, err := enc.SlotValue(s)
		if err != nil {
			t.Fatalf("SlotValue(%s) error: %v", s, err)
		}
		c, ok := v.(symbol.EnumConstant)
		if !ok {
			t.Fatalf("SlotValue(%s) = %T, want EnumConstant", s, v)
		}
		if c.Class != "EnumItemSlot" || c.Name != s.Constant() {
			t.Errorf("SlotValue(%s) = %s", s, c)
		}
	}
}

func TestBuildPacketsEmpty(t *testing.T) {
	enc, slots := stubEncoder(t, version.V1_8_R3)
	tests := []Equipment{
		{},
		Builder{Helmet: &bridge.Item{Material: "air"}, Hand: &bridge.Item{}}.Complete(),
	}
	for _, eq := range tests {
		packets, err := enc.BuildPackets(1, eq)
		if err != nil {
			t.Fatalf("BuildPackets error: %v", err)
		}
		if len(packets) != 0 {
			t.Errorf("BuildPackets = %d packets, want 0", len(packets))
		}
	}
	if len(*slots) != 0 {
		t.Errorf("equipment constructor called %d times", len(*slots))
	}
}

func TestBuildPacketsOrder(t *testing.T) {
	tests := []struct {
		v    version.Version
		want []any
	}{
		{version.V1_8_R3, []any{0, 1, 2, 3, 4}},
		{version.V1_9_R1, []any{
			symbol.EnumConstant{Class: "EnumItemSlot", Name: "MAINHAND", Ordinal: 0},
			symbol.EnumConstant{Class: "EnumItemSlot", Name: "HEAD", Ordinal: 5},
			symbol.EnumConstant{Class: "EnumItemSlot", Name: "CHEST", Ordinal: 4},
			symbol.EnumConstant{Class: "EnumItemSlot", Name: "LEGS", Ordinal: 3},
			symbol.EnumConstant{Class: "EnumItemSlot", Name: "FEET", Ordinal: 2},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			enc, slots := stubEncoder(t, tt.v)
			packets, err := enc.BuildPackets(7, full())
			if err != nil {
				t.Fatalf("BuildPackets error: %v", err)
			}
			if len(packets) != 5 {
				t.Fatalf("BuildPackets = %d packets, want 5", len(packets))
			}
			if !reflect.DeepEqual(*slots, tt.want) {
				t.Errorf("slots = %v, want %v", *slots, tt.want)
			}
		})
	}
}

func TestBuildPacketsHandOnly(t *testing.T) {
	enc, slots := stubEncoder(t, version.V1_8_R3)
	packets, err := enc.BuildPackets(7, Builder{Hand: item("stick")}.Complete())
	if err != nil {
		t.Fatalf("BuildPackets error: %v", err)
	}
	if len(packets) != 1 || len(*slots) != 1 || (*slots)[0] != 0 {
		t.Errorf("packets = %d, slots = %v", len(packets), *slots)
	}
}

func TestBuilderSnapshot(t *testing.T) {
	sword := item("diamond_sword")
	eq := Builder{Hand: sword}.Complete()
	sword.Material = "stick"
	if got := eq.Item(Hand).Material; got != "diamond_sword" {
		t.Errorf("Item(Hand) = %q after builder mutation", got)
	}
	eq.Item(Hand).Material = "bow"
	if got := eq.Item(Hand).Material; got != "diamond_sword" {
		t.Errorf("Item(Hand) = %q after result mutation", got)
	}
	if eq.Item(Head) != nil {
		t.Error("Item(Head) set")
	}
}

func TestBuildPacketsWire(t *testing.T) {
	log := zaptest.NewLogger(t)
	tests := []struct {
		v        version.Version
		packetID int32
	}{
		{version.V1_8_R3, 0x04},
		{version.V1_9_R1, 0x3C},
		{version.V1_12_R1, 0x3F},
	}
	for _, tt := range tests {
		r, err := bridge.NewResolver(tt.v, log)
		if err != nil {
			t.Fatal(err)
		}
		enc := NewEncoder(dispatch.New(r, log))
		packets, err := enc.BuildPackets(3, full())
		if err != nil {
			t.Fatalf("%s: BuildPackets error: %v", tt.v, err)
		}
		if len(packets) != 5 {
			t.Fatalf("%s: %d packets, want 5", tt.v, len(packets))
		}
		for _, p := range packets {
			if p.ID != tt.packetID {
				t.Errorf("%s: packet id 0x%02X, want 0x%02X", tt.v, p.ID, tt.packetID)
			}
		}
		rd := packets[1].Reader()
		eid, _, _ := protocol.ReadVarInt(rd)
		if eid != 3 {
			t.Errorf("%s: entity id = %d", tt.v, eid)
		}
	}
}

func TestBuildPacketsUnknownMaterial(t *testing.T) {
	log := zaptest.NewLogger(t)
	r, _ := bridge.NewResolver(version.V1_8_R3, log)
	enc := NewEncoder(dispatch.New(r, log))
	if _, err := enc.BuildPackets(3, Builder{Hand: item("unobtainium")}.Complete()); err == nil {
		t.Error("BuildPackets accepted an unknown material")
	}
}
