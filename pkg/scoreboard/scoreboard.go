// Package scoreboard holds client-side scoreboard teams. Teams are only used
// to render a prefix and suffix around an entity's name tag.
package scoreboard

import (
	"fmt"
	"sync"
)

// MaxLength is the longest team name, prefix or suffix protocol 47 accepts.
const MaxLength = 16

// Board is a set of teams that can be assigned to connections.
type Board struct {
	mu    sync.RWMutex
	teams map[string]*Team
	order []string
}

// NewBoard creates an empty scoreboard.
func NewBoard() *Board {
	return &Board{teams: make(map[string]*Team)}
}

// RegisterNewTeam creates a team. Names longer than MaxLength are truncated.
func (b *Board) RegisterNewTeam(name string) (*Team, error) {
	name = Clamp(name)
	if name == "" {
		return nil, fmt.Errorf("scoreboard: empty team name")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.teams[name]; ok {
		return nil, fmt.Errorf("scoreboard: team %q already registered", name)
	}
	t := &Team{name: name, displayName: name}
	b.teams[name] = t
	b.order = append(b.order, name)
	return t, nil
}

// Team looks up a registered team by name.
func (b *Board) Team(name string) (*Team, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.teams[name]
	return t, ok
}

// Teams lists teams in registration order.
func (b *Board) Teams() []*Team {
	b.mu.RLock()
	defer b.mu.RUnlock()
	teams := make([]*Team, 0, len(b.order))
	for _, name := range b.order {
		teams = append(teams, b.teams[name])
	}
	return teams
}

// Team is a named group whose members share a name tag prefix and suffix.
type Team struct {
	mu          sync.RWMutex
	name        string
	displayName string
	prefix      string
	suffix      string
	entries     []string
}

// Name returns the team name.
func (t *Team) Name() string { return t.name }

// DisplayName returns the display name, which defaults to the team name.
func (t *Team) DisplayName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.displayName
}

// Prefix returns the text shown before member names.
func (t *Team) Prefix() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prefix
}

// Suffix returns the text shown after member names.
func (t *Team) Suffix() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.suffix
}

// SetDisplayName sets the display name, clamped to MaxLength runes.
func (t *Team) SetDisplayName(s string) {
	t.mu.Lock()
	t.displayName = Clamp(s)
	t.mu.Unlock()
}

// SetPrefix sets the prefix, clamped to MaxLength runes.
func (t *Team) SetPrefix(s string) {
	t.mu.Lock()
	t.prefix = Clamp(s)
	t.mu.Unlock()
}

// SetSuffix sets the suffix, clamped to MaxLength runes.
func (t *Team) SetSuffix(s string) {
	t.mu.Lock()
	t.suffix = Clamp(s)
	t.mu.Unlock()
}

// AddEntry adds a member name. Duplicates are ignored.
func (t *Team) AddEntry(entry string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e == entry {
			return
		}
	}
	t.entries = append(t.entries, entry)
}

// Entries returns the member names in insertion order.
func (t *Team) Entries() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.entries...)
}

// Clamp truncates s to MaxLength runes.
func Clamp(s string) string {
	n := 0
	for i := range s {
		if n == MaxLength {
			return s[:i]
		}
		n++
	}
	return s
}
