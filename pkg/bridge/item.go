package bridge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/StoreStation/phantomcraft/pkg/version"
)

// MaterialAir is the empty material.
const MaterialAir = "air"

// Item is an item stack as plugins see it.
type Item struct {
	Material string
	Amount   int
	Damage   int16
}

// IsAir reports whether it is absent or empty. It is safe on a nil item.
func (it *Item) IsAir() bool {
	return it == nil || it.Material == "" || strings.EqualFold(it.Material, MaterialAir)
}

// WireItem is the numeric form of an item written into slot data.
type WireItem struct {
	ID     int16
	Count  byte
	Damage int16
}

// EmptyWireItem encodes an empty slot.
var EmptyWireItem = WireItem{ID: -1}

//go:embed items.yaml
var itemsYAML []byte

type itemEntry struct {
	Material string          `yaml:"material"`
	ID       int16           `yaml:"id"`
	Since    version.Version `yaml:"since"`
}

type itemsFile struct {
	Items []itemEntry `yaml:"items"`
}

// MaterialTable maps material names to numeric ids for one revision.
type MaterialTable struct {
	ids map[string]int16
}

// LoadMaterials decodes the embedded item table, keeping the materials that
// exist in v.
func LoadMaterials(v version.Version) (*MaterialTable, error) {
	var f itemsFile
	if err := yaml.Unmarshal(itemsYAML, &f); err != nil {
		return nil, fmt.Errorf("parse item table: %w", err)
	}
	t := &MaterialTable{ids: make(map[string]int16, len(f.Items))}
	for _, it := range f.Items {
		if v < it.Since {
			continue
		}
		t.ids[it.Material] = it.ID
	}
	return t, nil
}

// Lookup returns the numeric item id of a material.
func (t *MaterialTable) Lookup(material string) (int16, bool) {
	id, ok := t.ids[strings.ToLower(material)]
	return id, ok
}

// Len returns the number of known materials.
func (t *MaterialTable) Len() int { return len(t.ids) }

// WireCopy converts it to its wire form.
func (t *MaterialTable) WireCopy(it Item) (WireItem, error) {
	if it.IsAir() {
		return EmptyWireItem, nil
	}
	id, ok := t.Lookup(it.Material)
	if !ok {
		return WireItem{}, fmt.Errorf("unknown material %q", it.Material)
	}
	count := it.Amount
	switch {
	case count <= 0:
		count = 1
	case count > 64:
		count = 64
	}
	return WireItem{ID: id, Count: byte(count), Damage: it.Damage}, nil
}
