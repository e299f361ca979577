package roam

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/config"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/dispatch/dispatchtest"
	"github.com/StoreStation/phantomcraft/pkg/phantom"
	"github.com/StoreStation/phantomcraft/pkg/plugin"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scheduler"
	"github.com/StoreStation/phantomcraft/pkg/version"
)

// Protocol 47 packet ids.
const (
	idPlayerInfo = 0x38
	idSpawn      = 0x0C
	idEquipment  = 0x04
	idDestroy    = 0x13
	idTeam       = 0x3E
)

type events struct {
	join, quit []dispatch.PlayerListener
}

func (e *events) OnJoin(fn dispatch.PlayerListener) { e.join = append(e.join, fn) }
func (e *events) OnQuit(fn dispatch.PlayerListener) { e.quit = append(e.quit, fn) }

type fixture struct {
	world  *bridge.World
	host   *dispatchtest.Host
	events *events
	plugin *Plugin
	wrap   *plugin.Wrapper
}

func testConfig() config.RoamConfig {
	cfg := config.Default().Roam
	cfg.NameTag = "Shadow {owner}"
	cfg.Equipment.Helmet = "leather_helmet"
	cfg.Equipment.Hand = "stick"
	return cfg
}

func newFixture(t *testing.T, v version.Version, cfg config.RoamConfig) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	r, err := bridge.NewResolver(v, log)
	if err != nil {
		t.Fatal(err)
	}
	fx := &fixture{
		world:  bridge.NewWorld("world"),
		host:   dispatchtest.NewHost(),
		events: &events{},
	}
	factory := phantom.NewFactory(dispatch.New(r, log), fx.host, scheduler.New(log), log)
	fx.plugin = New(cfg, factory, fx.host, fx.events, log)
	fx.wrap = plugin.Wrap(fx.plugin, log)
	return fx
}

func (fx *fixture) enable(t *testing.T) {
	t.Helper()
	if err := fx.wrap.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
}

func (fx *fixture) join(name string) *dispatchtest.Player {
	p := dispatchtest.NewPlayer(name, fx.world)
	fx.host.Add(p)
	for _, fn := range fx.events.join {
		fn(p)
	}
	return p
}

func (fx *fixture) quit(p *dispatchtest.Player) {
	fx.host.Remove(p.UniqueID())
	for _, fn := range fx.events.quit {
		fn(p)
	}
}

func count(ids []int32, id int32) int {
	n := 0
	for _, got := range ids {
		if got == id {
			n++
		}
	}
	return n
}

func equalIDs(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestJoinSpawnsPhantom(t *testing.T) {
	fx := newFixture(t, version.V1_8_R3, testConfig())
	fx.enable(t)

	steve := dispatchtest.NewPlayer("Steve", fx.world)
	steve.Teleport(bridge.Location{X: 10, Y: 5, Z: -3})
	fx.host.Add(steve)
	fx.events.join[0](steve)

	e, ok := fx.plugin.Phantom(steve.UniqueID())
	if !ok {
		t.Fatal("no phantom after join")
	}
	if e.State() != phantom.Visible || e.Owner() != steve.UniqueID() {
		t.Errorf("state %s owner %s", e.State(), e.Owner())
	}
	if e.Name() != "Shadow Steve" {
		t.Errorf("Name = %q", e.Name())
	}

	ids := steve.Conn.IDs()
	want := []int32{idPlayerInfo, idSpawn, idEquipment, idEquipment, idTeam}
	if !equalIDs(ids, want) {
		t.Errorf("packets = %#x, want %#x", ids, want)
	}
	if steve.Scoreboard() != e.Board() {
		t.Error("owner does not render the phantom's board")
	}

	spawn := steve.Conn.Packets()[1]
	r := spawn.Reader()
	protocol.ReadVarInt(r)
	protocol.ReadUUID(r)
	x, _ := protocol.ReadInt32(r)
	if x != protocol.FixedPoint(11.5) {
		t.Errorf("spawn x = %d, want owner x plus offset", x)
	}
}

func TestNewcomerSeesExistingPhantoms(t *testing.T) {
	fx := newFixture(t, version.V1_8_R3, testConfig())
	fx.enable(t)

	steve := fx.join("Steve")
	alex := fx.join("Alex")

	if n := count(alex.Conn.IDs(), idSpawn); n != 2 {
		t.Errorf("alex saw %d spawns, want 2", n)
	}
	if n := count(steve.Conn.IDs(), idSpawn); n != 2 {
		t.Errorf("steve saw %d spawns, want 2", n)
	}
	mine, _ := fx.plugin.Phantom(alex.UniqueID())
	if alex.Scoreboard() != mine.Board() {
		t.Error("newcomer should end on its own phantom's board")
	}
}

func TestQuitDespawns(t *testing.T) {
	fx := newFixture(t, version.V1_8_R3, testConfig())
	fx.enable(t)
	steve := fx.join("Steve")
	alex := fx.join("Alex")
	alex.Conn.Reset()

	fx.quit(steve)
	if _, ok := fx.plugin.Phantom(steve.UniqueID()); ok {
		t.Error("phantom kept after owner quit")
	}
	if ids := alex.Conn.IDs(); !equalIDs(ids, []int32{idPlayerInfo, idDestroy}) {
		t.Errorf("alex got %#x, want list remove then destroy", ids)
	}
	fx.quit(steve)
}

func TestDisableDespawnsAll(t *testing.T) {
	fx := newFixture(t, version.V1_8_R3, testConfig())
	fx.enable(t)
	steve := fx.join("Steve")
	steve.Conn.Reset()

	fx.wrap.Disable()
	if ids := steve.Conn.IDs(); !equalIDs(ids, []int32{idPlayerInfo, idDestroy}) {
		t.Errorf("disable sent %#x", ids)
	}
	if _, ok := fx.plugin.Phantom(steve.UniqueID()); ok {
		t.Error("phantom kept after disable")
	}

	bob := fx.join("Bob")
	if _, ok := fx.plugin.Phantom(bob.UniqueID()); ok {
		t.Error("disabled plugin spawned a phantom")
	}
}

func TestEnableSpawnsForOnlinePlayers(t *testing.T) {
	fx := newFixture(t, version.V1_8_R3, testConfig())
	steve := dispatchtest.NewPlayer("Steve", fx.world)
	fx.host.Add(steve)

	fx.enable(t)
	if _, ok := fx.plugin.Phantom(steve.UniqueID()); !ok {
		t.Error("enable did not spawn a phantom for an online player")
	}
}

func TestSkinFromOwner(t *testing.T) {
	fx := newFixture(t, version.V1_8_R3, testConfig())
	fx.enable(t)

	steve := dispatchtest.NewPlayer("Steve", fx.world)
	steve.Profile().Properties.Put(profile.TexturesKey, profile.Property{Name: profile.TexturesKey, Value: "owner-skin"})
	fx.host.Add(steve)
	fx.events.join[0](steve)

	e, _ := fx.plugin.Phantom(steve.UniqueID())
	prof, err := e.Profile()
	if err != nil {
		t.Fatal(err)
	}
	if tex, ok := prof.Textures(); !ok || tex.Value != "owner-skin" {
		t.Errorf("textures = %+v, %v", tex, ok)
	}
}

func TestSkinFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skin.json")
	doc := `{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch","properties":[{"name":"textures","value":"file-skin","signature":"sig"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.SkinFile = path
	fx := newFixture(t, version.V1_8_R3, cfg)
	fx.enable(t)

	steve := fx.join("Steve")
	e, _ := fx.plugin.Phantom(steve.UniqueID())
	prof, err := e.Profile()
	if err != nil {
		t.Fatal(err)
	}
	tex, ok := prof.Textures()
	if !ok || tex.Value != "file-skin" || tex.Signature != "sig" {
		t.Errorf("textures = %+v, %v", tex, ok)
	}
}

func TestBadSkinFile(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{not json`},
		{"no textures", `{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch","properties":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "skin.json")
			os.WriteFile(path, []byte(tt.doc), 0o644)
			cfg := testConfig()
			cfg.SkinFile = path
			fx := newFixture(t, version.V1_8_R3, cfg)
			if err := fx.wrap.Enable(); err == nil {
				t.Error("Enable accepted a bad skin file")
			}
		})
	}
}

func TestUnsupportedVersionSpawnsNothing(t *testing.T) {
	fx := newFixture(t, version.MustParse("v1_16_R3"), testConfig())
	fx.enable(t)
	steve := fx.join("Steve")
	if _, ok := fx.plugin.Phantom(steve.UniqueID()); ok {
		t.Error("phantom spawned on an unsupported version")
	}
	if ids := steve.Conn.IDs(); len(ids) != 0 {
		t.Errorf("unsupported version sent %#x", ids)
	}
}

func TestLaterVersionEquipment(t *testing.T) {
	fx := newFixture(t, version.V1_12_R1, testConfig())
	fx.enable(t)
	steve := fx.join("Steve")
	if n := count(steve.Conn.IDs(), 0x3F); n != 2 {
		t.Errorf("got %d equipment packets, want 2", n)
	}
}
