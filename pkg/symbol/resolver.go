package symbol

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/version"
)

// Binder turns a catalog entry into a handle.
type Binder func(e Entry) (*Handle, error)

// Bindings maps binding names used by the catalog to implementations.
type Bindings struct {
	binders map[string]Binder
}

// NewBindings creates an empty binding registry.
func NewBindings() *Bindings {
	return &Bindings{binders: make(map[string]Binder)}
}

// Register adds a binder. Registering a name twice replaces the first binder.
func (b *Bindings) Register(name string, fn Binder) {
	b.binders[name] = fn
}

func (b *Bindings) lookup(name string) (Binder, bool) {
	fn, ok := b.binders[name]
	return fn, ok
}

// Resolver maps logical names to version-correct handles and memoizes them.
type Resolver struct {
	version  version.Version
	catalog  *Catalog
	bindings *Bindings
	log      *zap.Logger

	mu    sync.RWMutex
	cache map[Key]*Handle
}

// NewResolver creates a resolver for version v. Nothing is resolved until
// first use or Preload.
func NewResolver(v version.Version, catalog *Catalog, bindings *Bindings, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		version:  v,
		catalog:  catalog,
		bindings: bindings,
		log:      log.Named("symbol"),
		cache:    make(map[Key]*Handle),
	}
}

// Version returns the detected host version.
func (r *Resolver) Version() version.Version { return r.version }

// Resolve returns the handle for (kind, name). Successful results are cached
// for the life of the resolver; failures are not.
func (r *Resolver) Resolve(kind Kind, name string) (*Handle, error) {
	key := Key{kind, name}

	r.mu.RLock()
	h, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	h, err := r.bind(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if prev, ok := r.cache[key]; ok {
		h = prev
	} else {
		r.cache[key] = h
	}
	r.mu.Unlock()
	return h, nil
}

func (r *Resolver) bind(key Key) (*Handle, error) {
	entry, ok := r.catalog.Lookup(key, r.version)
	if !ok {
		if key.Kind == KindField {
			return r.bindConstant(key)
		}
		return nil, &SymbolNotFoundError{Key: key, Version: r.version}
	}

	binder, ok := r.bindings.lookup(entry.Bind)
	if !ok {
		return nil, &BindingError{Key: key, Version: r.version, Bind: entry.Bind, Err: fmt.Errorf("no binding registered")}
	}
	h, err := binder(entry)
	if err != nil {
		return nil, &BindingError{Key: key, Version: r.version, Bind: entry.Bind, Err: err}
	}
	if h == nil || h.Kind() != key.Kind {
		got := "nil"
		if h != nil {
			got = h.Kind().String()
		}
		return nil, &BindingError{Key: key, Version: r.version, Bind: entry.Bind, Err: fmt.Errorf("binding produced a %s", got)}
	}
	h.key = key

	r.log.Debug("resolved symbol",
		zap.Stringer("kind", key.Kind),
		zap.String("name", key.Name),
		zap.String("bind", entry.Bind),
		zap.Stringer("version", r.version),
	)
	return h, nil
}

// bindConstant resolves "Class.CONSTANT" through the class when the field has
// no entry of its own.
func (r *Resolver) bindConstant(key Key) (*Handle, error) {
	i := strings.LastIndexByte(key.Name, '.')
	if i <= 0 || i == len(key.Name)-1 {
		return nil, &SymbolNotFoundError{Key: key, Version: r.version}
	}
	class, err := r.Class(key.Name[:i])
	if err != nil {
		return nil, err
	}
	f, err := class.Field(key.Name[i+1:])
	if err != nil {
		return nil, &BindingError{Key: key, Version: r.version, Err: err}
	}
	h := FieldHandle(f)
	h.key = key
	return h, nil
}

// Class resolves a class symbol.
func (r *Resolver) Class(name string) (*Class, error) {
	h, err := r.Resolve(KindClass, name)
	if err != nil {
		return nil, err
	}
	return h.Class()
}

// Method resolves a method symbol.
func (r *Resolver) Method(name string) (*Method, error) {
	h, err := r.Resolve(KindMethod, name)
	if err != nil {
		return nil, err
	}
	return h.Method()
}

// Constructor resolves a constructor symbol.
func (r *Resolver) Constructor(name string) (*Constructor, error) {
	h, err := r.Resolve(KindConstructor, name)
	if err != nil {
		return nil, err
	}
	return h.Constructor()
}

// Field resolves an enum constant, falling back to its class.
func (r *Resolver) Field(name string) (*Field, error) {
	h, err := r.Resolve(KindField, name)
	if err != nil {
		return nil, err
	}
	return h.Field()
}

// Preload resolves every key the catalog maps for the running version and
// returns all failures together.
func (r *Resolver) Preload() error {
	var errs error
	keys := r.catalog.Keys(r.version)
	for _, key := range keys {
		if _, err := r.Resolve(key.Kind, key.Name); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs == nil {
		r.log.Info("symbol catalog bound",
			zap.Stringer("version", r.version),
			zap.Int("symbols", len(keys)),
		)
	}
	return errs
}
