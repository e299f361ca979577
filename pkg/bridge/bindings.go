package bridge

import (
	_ "embed"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
	"github.com/StoreStation/phantomcraft/pkg/symbol"
	"github.com/StoreStation/phantomcraft/pkg/version"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	typeWorld    = reflect.TypeOf((*World)(nil))
	typeInteract = reflect.TypeOf((*InteractManager)(nil))
	typeHuman    = reflect.TypeOf((*Human)(nil))
	typeHumans   = reflect.TypeOf([]*Human(nil))
	typeProfile  = reflect.TypeOf((*profile.GameProfile)(nil))
	typeItem     = reflect.TypeOf(Item{})
	typeWireItem = reflect.TypeOf(WireItem{})
	typeEnum     = reflect.TypeOf(symbol.EnumConstant{})
	typeTeam     = reflect.TypeOf((*scoreboard.Team)(nil))
	typeStrings  = reflect.TypeOf([]string(nil))
	typeInt32s   = reflect.TypeOf([]int32(nil))
	typeInt32    = reflect.TypeOf(int32(0))
	typeInt      = reflect.TypeOf(0)
	typeFloat64  = reflect.TypeOf(float64(0))
	typeFloat32  = reflect.TypeOf(float32(0))
)

// Catalog parses the embedded symbol catalog.
func Catalog() (*symbol.Catalog, error) {
	return symbol.ParseCatalog(catalogYAML)
}

// Bindings registers the implementations for v.
func Bindings(v version.Version) (*symbol.Bindings, error) {
	materials, err := LoadMaterials(v)
	if err != nil {
		return nil, err
	}

	b := symbol.NewBindings()

	b.Register("enum/player_info_action", enumBinder("EnumPlayerInfoAction", playerInfoActions))
	b.Register("enum/item_slot", enumBinder("EnumItemSlot", itemSlots))

	b.Register("entity/interact_manager", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.ConstructorHandle(symbol.NewConstructor(e.Name, symbol.Params(typeWorld),
			func(args []any) (any, error) {
				w, _ := args[0].(*World)
				if w == nil {
					return nil, fmt.Errorf("interact manager without a world")
				}
				return NewInteractManager(w), nil
			})), nil
	})
	b.Register("entity/player", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.ConstructorHandle(symbol.NewConstructor(e.Name, symbol.Params(typeWorld, typeProfile, typeInteract),
			func(args []any) (any, error) {
				w, _ := args[0].(*World)
				p, _ := args[1].(*profile.GameProfile)
				im, _ := args[2].(*InteractManager)
				if w == nil || p == nil {
					return nil, fmt.Errorf("player entity needs a world and a profile")
				}
				return NewHuman(w, p, im), nil
			})), nil
	})

	b.Register("method/entity_get_id", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.MethodHandle(symbol.NewMethod(e.Name, typeHuman, nil,
			func(recv any, _ []any) (any, error) {
				return recv.(*Human).ID(), nil
			})), nil
	})
	b.Register("method/entity_set_location", func(e symbol.Entry) (*symbol.Handle, error) {
		params := symbol.Params(typeFloat64, typeFloat64, typeFloat64, typeFloat32, typeFloat32)
		return symbol.MethodHandle(symbol.NewMethod(e.Name, typeHuman, params,
			func(recv any, args []any) (any, error) {
				recv.(*Human).SetLocation(args[0].(float64), args[1].(float64), args[2].(float64),
					args[3].(float32), args[4].(float32))
				return nil, nil
			})), nil
	})
	b.Register("method/human_get_profile", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.MethodHandle(symbol.NewMethod(e.Name, typeHuman, nil,
			func(recv any, _ []any) (any, error) {
				return recv.(*Human).Profile(), nil
			})), nil
	})
	b.Register("method/as_wire_copy", func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.MethodHandle(symbol.NewMethod(e.Name, nil, symbol.Params(typeItem),
			func(_ any, args []any) (any, error) {
				return materials.WireCopy(args[0].(Item))
			})), nil
	})

	b.Register("packet/player_info", packetBinder(symbol.Params(typeEnum, typeHumans),
		func(id int32, args []any) (*protocol.Packet, error) {
			humans, _ := args[1].([]*Human)
			return encodePlayerInfo(id, args[0].(symbol.EnumConstant), humans)
		}))
	b.Register("packet/named_entity_spawn/47", packetBinder(symbol.Params(typeHuman),
		func(id int32, args []any) (*protocol.Packet, error) {
			h, _ := args[0].(*Human)
			return encodeSpawn47(id, h)
		}))
	b.Register("packet/named_entity_spawn/107", packetBinder(symbol.Params(typeHuman),
		func(id int32, args []any) (*protocol.Packet, error) {
			h, _ := args[0].(*Human)
			return encodeSpawn107(id, h)
		}))
	b.Register("packet/entity_equipment/47", packetBinder(symbol.Params(typeInt32, typeInt, typeWireItem),
		func(id int32, args []any) (*protocol.Packet, error) {
			return encodeEquipment47(id, args[0].(int32), args[1].(int), args[2].(WireItem))
		}))
	b.Register("packet/entity_equipment/107", packetBinder(symbol.Params(typeInt32, typeEnum, typeWireItem),
		func(id int32, args []any) (*protocol.Packet, error) {
			return encodeEquipment107(id, args[0].(int32), args[1].(symbol.EnumConstant), args[2].(WireItem))
		}))
	b.Register("packet/entity_destroy", packetBinder(symbol.Params(typeInt32s),
		func(id int32, args []any) (*protocol.Packet, error) {
			ids, _ := args[0].([]int32)
			return encodeDestroy(id, ids)
		}))
	b.Register("packet/scoreboard_team/47", teamBinder(false))
	b.Register("packet/scoreboard_team/107", teamBinder(true))

	return b, nil
}

func enumBinder(class string, constants []string) symbol.Binder {
	return func(e symbol.Entry) (*symbol.Handle, error) {
		return symbol.ClassHandle(symbol.NewEnum(class, constants...)), nil
	}
}

// packetBinder binds a packet constructor. The packet id comes from the
// catalog entry so one codec can serve several id layouts.
func packetBinder(params []reflect.Type, encode func(id int32, args []any) (*protocol.Packet, error)) symbol.Binder {
	return func(e symbol.Entry) (*symbol.Handle, error) {
		if e.PacketID <= 0 {
			return nil, fmt.Errorf("%s has no packet id", e.Name)
		}
		id := e.PacketID
		return symbol.ConstructorHandle(symbol.NewConstructor(e.Name, params,
			func(args []any) (any, error) {
				return encode(id, args)
			})), nil
	}
}

func teamBinder(collision bool) symbol.Binder {
	return packetBinder(symbol.Params(typeTeam, typeStrings, typeInt),
		func(id int32, args []any) (*protocol.Packet, error) {
			team, _ := args[0].(*scoreboard.Team)
			entries, _ := args[1].([]string)
			return encodeTeam(id, collision, team, entries, args[2].(int))
		})
}

// NewResolver builds a resolver over the embedded catalog for v.
func NewResolver(v version.Version, log *zap.Logger) (*symbol.Resolver, error) {
	cat, err := Catalog()
	if err != nil {
		return nil, err
	}
	b, err := Bindings(v)
	if err != nil {
		return nil, err
	}
	return symbol.NewResolver(v, cat, b, log), nil
}
