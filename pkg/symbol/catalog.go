package symbol

import (
	"fmt"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/StoreStation/phantomcraft/pkg/version"
)

// Entry maps a key to a binding for the revisions [Since, Until).
// A zero Until leaves the range open.
type Entry struct {
	Kind     Kind            `yaml:"kind"`
	Name     string          `yaml:"name"`
	Since    version.Version `yaml:"since"`
	Until    version.Version `yaml:"until"`
	Bind     string          `yaml:"bind"`
	PacketID int32           `yaml:"packet_id"`
}

// Key returns the lookup key of the entry.
func (e Entry) Key() Key { return Key{e.Kind, e.Name} }

// Covers reports whether the entry applies to v.
func (e Entry) Covers(v version.Version) bool {
	return v >= e.Since && (e.Until == version.Unknown || v < e.Until)
}

func (e Entry) overlaps(o Entry) bool {
	aEnd, bEnd := e.Until, o.Until
	if aEnd == version.Unknown {
		aEnd = 1 << 30
	}
	if bEnd == version.Unknown {
		bEnd = 1 << 30
	}
	return e.Since < bEnd && o.Since < aEnd
}

type catalogFile struct {
	Symbols []Entry `yaml:"symbols"`
}

// Catalog is the version-dependent symbol table.
type Catalog struct {
	entries map[Key][]Entry
	order   []Key
}

// ParseCatalog decodes a YAML symbol table and validates it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse symbol catalog: %w", err)
	}
	return NewCatalog(f.Symbols...)
}

// NewCatalog builds a catalog from entries, reporting every invalid entry.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[Key][]Entry)}
	var errs error
	for i, e := range entries {
		switch {
		case e.Kind < KindClass || e.Kind > KindField:
			errs = multierr.Append(errs, fmt.Errorf("entry %d (%s): missing kind", i, e.Name))
			continue
		case e.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("entry %d: missing name", i))
			continue
		case e.Bind == "":
			errs = multierr.Append(errs, fmt.Errorf("entry %d (%s): missing bind", i, e.Key()))
			continue
		case e.Until != version.Unknown && e.Until <= e.Since:
			errs = multierr.Append(errs, fmt.Errorf("entry %d (%s): empty range %s..%s", i, e.Key(), e.Since, e.Until))
			continue
		}
		key := e.Key()
		for _, prev := range c.entries[key] {
			if prev.overlaps(e) {
				errs = multierr.Append(errs, fmt.Errorf("entry %d (%s): range %s..%s overlaps %s..%s",
					i, key, e.Since, e.Until, prev.Since, prev.Until))
			}
		}
		if _, seen := c.entries[key]; !seen {
			c.order = append(c.order, key)
		}
		c.entries[key] = append(c.entries[key], e)
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

// Lookup returns the entry covering v.
func (c *Catalog) Lookup(key Key, v version.Version) (Entry, bool) {
	for _, e := range c.entries[key] {
		if e.Covers(v) {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys lists the keys that have an entry covering v, in catalog order.
func (c *Catalog) Keys(v version.Version) []Key {
	var keys []Key
	for _, k := range c.order {
		if _, ok := c.Lookup(k, v); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	n := 0
	for _, es := range c.entries {
		n += len(es)
	}
	return n
}
