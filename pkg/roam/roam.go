// Package roam gives every player a phantom companion: a simulated player
// that wears the owner's skin, stands next to the owner and carries a name
// tag built from the configured template.
package roam

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/config"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/equipment"
	"github.com/StoreStation/phantomcraft/pkg/phantom"
	"github.com/StoreStation/phantomcraft/pkg/plugin"
	"github.com/StoreStation/phantomcraft/pkg/profile"
)

// Plugin spawns a phantom when its owner joins and despawns it when the owner
// quits. Join and quit callbacks must not run concurrently with each other.
type Plugin struct {
	cfg     config.RoamConfig
	factory *phantom.Factory
	host    dispatch.Host
	events  dispatch.Events
	log     *zap.Logger

	mu       sync.Mutex
	enabled  bool
	skin     *profile.Property
	phantoms map[uuid.UUID]*phantom.Entity
}

var _ plugin.Plugin = (*Plugin)(nil)

// New creates the roam plugin. Phantoms are built by factory and shown to
// the players of host.
func New(cfg config.RoamConfig, factory *phantom.Factory, host dispatch.Host, events dispatch.Events, log *zap.Logger) *Plugin {
	if log == nil {
		log = zap.NewNop()
	}
	return &Plugin{
		cfg:      cfg,
		factory:  factory,
		host:     host,
		events:   events,
		log:      log.Named("roam"),
		phantoms: make(map[uuid.UUID]*phantom.Entity),
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return "roam" }

// Load registers the join and quit listeners.
func (p *Plugin) Load(b *plugin.Builder) plugin.LoadContext {
	p.events.OnJoin(p.join)
	p.events.OnQuit(p.quit)
	return b.Enable(p.enable).Disable(p.disable).Finish()
}

// Phantom returns the phantom owned by id.
func (p *Plugin) Phantom(id uuid.UUID) (*phantom.Entity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.phantoms[id]
	return e, ok
}

func (p *Plugin) enable() error {
	skin, err := loadSkin(p.cfg.SkinFile)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.skin = skin
	p.enabled = true
	p.mu.Unlock()

	for _, owner := range p.host.OnlinePlayers() {
		p.spawnFor(owner)
	}
	return nil
}

func (p *Plugin) disable() {
	p.mu.Lock()
	p.enabled = false
	phantoms := p.phantoms
	p.phantoms = make(map[uuid.UUID]*phantom.Entity)
	p.mu.Unlock()

	for owner, e := range phantoms {
		if err := e.Despawn(); err != nil {
			p.log.Warn("despawn phantom", zap.Stringer("owner", owner), zap.Error(err))
		}
	}
}

func (p *Plugin) active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// join shows the newcomer every existing phantom, then spawns its own.
func (p *Plugin) join(player dispatch.Player) {
	if !p.active() {
		return
	}
	for _, other := range p.host.OnlinePlayers() {
		if other.UniqueID() == player.UniqueID() {
			continue
		}
		if e, ok := p.Phantom(other.UniqueID()); ok {
			if err := e.ShowTo(player); err != nil {
				p.log.Warn("show phantom to newcomer", zap.String("player", player.Name()), zap.Error(err))
			}
		}
	}
	p.spawnFor(player)
}

func (p *Plugin) quit(player dispatch.Player) {
	p.mu.Lock()
	e, ok := p.phantoms[player.UniqueID()]
	delete(p.phantoms, player.UniqueID())
	p.mu.Unlock()
	if !ok {
		return
	}
	if err := e.Despawn(); err != nil {
		p.log.Warn("despawn phantom", zap.String("owner", player.Name()), zap.Error(err))
	}
}

func (p *Plugin) spawnFor(owner dispatch.Player) {
	log := p.log.With(zap.String("owner", owner.Name()))
	if _, ok := p.Phantom(owner.UniqueID()); ok {
		return
	}

	e, err := p.factory.Generate(owner.UniqueID(), p.cfg.NameTagFor(owner.Name()))
	if err != nil {
		log.Warn("generate phantom", zap.Error(err))
		return
	}
	if !e.Valid() {
		log.Warn("phantoms are not supported on this server version")
		return
	}

	loc := owner.Location()
	loc.X += p.cfg.Offset.X
	loc.Y += p.cfg.Offset.Y
	loc.Z += p.cfg.Offset.Z
	if err := e.SetLocation(loc); err != nil {
		log.Warn("place phantom", zap.Error(err))
		return
	}
	e.Equip(p.equipment())

	p.mu.Lock()
	skin := p.skin
	p.mu.Unlock()
	if skin != nil {
		err = e.ApplySkin(*skin)
	} else {
		err = e.ApplySkinFrom(owner)
	}
	if err != nil {
		log.Warn("apply skin", zap.Error(err))
	}

	if err := e.ShowTo(p.host.OnlinePlayers()...); err != nil {
		log.Warn("show phantom", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.phantoms[owner.UniqueID()] = e
	p.mu.Unlock()
	log.Info("phantom spawned", zap.String("name", e.Name()))
}

func (p *Plugin) equipment() equipment.Builder {
	eq := p.cfg.Equipment
	return equipment.Builder{
		Helmet:     item(eq.Helmet),
		ChestPlate: item(eq.ChestPlate),
		Leggings:   item(eq.Leggings),
		Boots:      item(eq.Boots),
		Hand:       item(eq.Hand),
	}
}

func item(material string) *bridge.Item {
	if material == "" {
		return nil
	}
	return &bridge.Item{Material: material, Amount: 1}
}

// loadSkin reads the textures property from a session profile document.
// An empty path means no fixed skin.
func loadSkin(path string) (*profile.Property, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skin file: %w", err)
	}
	prof, err := profile.ParseSession(data)
	if err != nil {
		return nil, fmt.Errorf("skin file %s: %w", path, err)
	}
	textures, ok := prof.Textures()
	if !ok {
		return nil, fmt.Errorf("skin file %s has no textures property", path)
	}
	return &textures, nil
}
