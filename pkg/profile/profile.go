// Package profile models player game profiles and their signed properties.
package profile

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// TexturesKey is the property carrying skin and cape textures.
const TexturesKey = "textures"

// Property is a signed profile property.
type Property struct {
	Name      string
	Value     string
	Signature string
}

// Signed reports whether the property carries a signature.
func (p Property) Signed() bool { return p.Signature != "" }

// PropertyMap is a multimap of properties keyed by name.
type PropertyMap struct {
	mu    sync.RWMutex
	props map[string][]Property
	keys  []string
}

// Put appends a property under key.
func (m *PropertyMap) Put(key string, p Property) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(key)
	m.props[key] = append(m.props[key], p)
}

// Replace sets key to exactly p.
func (m *PropertyMap) Replace(key string, p Property) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(key)
	m.props[key] = []Property{p}
}

func (m *PropertyMap) touch(key string) {
	if m.props == nil {
		m.props = make(map[string][]Property)
	}
	if _, ok := m.props[key]; !ok {
		m.keys = append(m.keys, key)
	}
}

// Get returns the properties stored under key.
func (m *PropertyMap) Get(key string) []Property {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Property(nil), m.props[key]...)
}

// All returns every property, keys in first-insertion order.
func (m *PropertyMap) All() []Property {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []Property
	for _, k := range m.keys {
		all = append(all, m.props[k]...)
	}
	return all
}

// Len returns the total number of properties.
func (m *PropertyMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ps := range m.props {
		n += len(ps)
	}
	return n
}

// GameProfile is the identity a client renders a player with.
type GameProfile struct {
	ID         uuid.UUID
	Name       string
	Properties PropertyMap
}

// New creates a profile with an empty property map.
func New(id uuid.UUID, name string) *GameProfile {
	return &GameProfile{ID: id, Name: name}
}

// Textures returns the first property named "textures" stored under the
// textures key.
func (p *GameProfile) Textures() (Property, bool) {
	for _, prop := range p.Properties.Get(TexturesKey) {
		if prop.Name == TexturesKey {
			return prop, true
		}
	}
	return Property{}, false
}

// ParseSession reads a session server profile document:
//
//	{"id":"<hex>","name":"...","properties":[{"name":"textures","value":"...","signature":"..."}]}
func ParseSession(data []byte) (*GameProfile, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("profile: invalid JSON")
	}
	doc := gjson.ParseBytes(data)

	rawID := doc.Get("id").String()
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("profile: id %q: %w", rawID, err)
	}
	name := doc.Get("name").String()
	if name == "" {
		return nil, fmt.Errorf("profile: missing name")
	}

	p := New(id, name)
	doc.Get("properties").ForEach(func(_, prop gjson.Result) bool {
		propName := prop.Get("name").String()
		if propName == "" {
			return true
		}
		p.Properties.Put(propName, Property{
			Name:      propName,
			Value:     prop.Get("value").String(),
			Signature: prop.Get("signature").String(),
		})
		return true
	})
	return p, nil
}
