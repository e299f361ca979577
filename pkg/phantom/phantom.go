// Package phantom shows clients a player entity the server does not
// simulate. A phantom exists only as the packets sent to its observers.
package phantom

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/equipment"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/scheduler"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
)

const (
	// TeamPrefix starts the name of the team an owner's phantom belongs to.
	TeamPrefix = "roam_"

	// DefaultRemovalDelay is how long a shown phantom stays in the player
	// list, in ticks.
	DefaultRemovalDelay = 20
)

// OwnerOfflineError is returned by Generate when the owner is not connected.
type OwnerOfflineError struct {
	Owner uuid.UUID
}

func (e *OwnerOfflineError) Error() string {
	return fmt.Sprintf("phantom owner %s is offline", e.Owner)
}

// Scheduler defers work to the main thread.
type Scheduler interface {
	Schedule(delayTicks int, repeat bool, task func()) *scheduler.Task
}

// Factory creates phantoms.
type Factory struct {
	helper       *dispatch.Helper
	encoder      *equipment.Encoder
	sched        Scheduler
	host         dispatch.Host
	log          *zap.Logger
	removalDelay int
}

// Option configures a Factory.
type Option func(*Factory)

// WithRemovalDelay sets the ticks between showing a phantom and removing it
// from the player list.
func WithRemovalDelay(ticks int) Option {
	return func(f *Factory) { f.removalDelay = ticks }
}

// NewFactory creates a phantom factory. The list removal delay defaults to
// DefaultRemovalDelay.
func NewFactory(helper *dispatch.Helper, host dispatch.Host, sched Scheduler, log *zap.Logger, opts ...Option) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Factory{
		helper:       helper,
		encoder:      equipment.NewEncoder(helper),
		sched:        sched,
		host:         host,
		log:          log.Named("phantom"),
		removalDelay: DefaultRemovalDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Generate creates a phantom owned by the connected player owner. nameTag is
// split by SplitNameTag into team prefix, entity name and team suffix.
//
// If the entity cannot be constructed the phantom is returned invalid and
// every operation on it does nothing.
func (f *Factory) Generate(owner uuid.UUID, nameTag string) (*Entity, error) {
	player, ok := f.host.Player(owner)
	if !ok {
		return nil, &OwnerOfflineError{Owner: owner}
	}

	prefix, name, suffix := parts(SplitNameTag(nameTag, NameTagWidth))
	e := &Entity{
		factory: f,
		owner:   owner,
		name:    name,
		board:   scoreboard.NewBoard(),
		state:   Constructed,
		log:     f.log.With(zap.String("name", name), zap.Stringer("owner", owner)),
	}

	team, err := e.board.RegisterNewTeam(TeamPrefix + player.Name())
	if err != nil {
		return nil, fmt.Errorf("phantom: register team: %w", err)
	}
	team.SetPrefix(prefix)
	if suffix != "" {
		team.SetSuffix(suffix)
	}
	e.team = team

	human, err := f.construct(player, name)
	if err != nil {
		e.log.Warn("phantom construction failed", zap.Error(err))
		return e, nil
	}
	e.human = human
	e.valid = true
	e.log.Debug("phantom constructed", zap.String("team", team.Name()))
	return e, nil
}

func (f *Factory) construct(owner dispatch.Player, name string) (*bridge.Human, error) {
	world, err := dispatch.WorldOf(owner)
	if err != nil {
		return nil, err
	}
	r := f.helper.Resolver()

	imCtor, err := r.Constructor("PlayerInteractManager")
	if err != nil {
		return nil, err
	}
	im, err := imCtor.New(world)
	if err != nil {
		return nil, err
	}

	ctor, err := r.Constructor("EntityPlayer")
	if err != nil {
		return nil, err
	}
	out, err := ctor.New(world, profile.New(uuid.New(), name), im)
	if err != nil {
		return nil, err
	}
	human, ok := out.(*bridge.Human)
	if !ok || human == nil {
		return nil, fmt.Errorf("EntityPlayer returned %T", out)
	}
	return human, nil
}
