// Package plugin wraps a plugin's enable and disable logic so the server can
// drive it through its lifecycle.
package plugin

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// LoadContext holds the callbacks a plugin registered in Load.
type LoadContext struct {
	enable  func() error
	disable func()
}

// Builder assembles a LoadContext. Unset callbacks do nothing.
type Builder struct {
	enable  func() error
	disable func()
}

// Enable sets the enable callback.
func (b *Builder) Enable(fn func() error) *Builder {
	b.enable = fn
	return b
}

// Disable sets the disable callback.
func (b *Builder) Disable(fn func()) *Builder {
	b.disable = fn
	return b
}

// Finish returns the LoadContext, filling unset callbacks with no-ops.
func (b *Builder) Finish() LoadContext {
	ctx := LoadContext{enable: b.enable, disable: b.disable}
	if ctx.enable == nil {
		ctx.enable = func() error { return nil }
	}
	if ctx.disable == nil {
		ctx.disable = func() {}
	}
	return ctx
}

// Plugin is implemented by server extensions.
type Plugin interface {
	Name() string
	// Load is called once, before the first enable.
	Load(b *Builder) LoadContext
}

// Wrapper drives one plugin.
type Wrapper struct {
	plugin Plugin
	log    *zap.Logger

	once sync.Once
	ctx  LoadContext

	mu      sync.Mutex
	enabled bool
}

// Wrap creates a wrapper for p. The plugin is not loaded until Enable.
func Wrap(p Plugin, log *zap.Logger) *Wrapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wrapper{plugin: p, log: log.Named("plugin").With(zap.String("plugin", p.Name()))}
}

// Name returns the plugin name.
func (w *Wrapper) Name() string { return w.plugin.Name() }

func (w *Wrapper) context() LoadContext {
	w.once.Do(func() {
		w.ctx = w.plugin.Load(&Builder{})
		if w.ctx.enable == nil || w.ctx.disable == nil {
			w.ctx = (&Builder{enable: w.ctx.enable, disable: w.ctx.disable}).Finish()
		}
	})
	return w.ctx
}

// Enable loads the plugin on first use and runs its enable callback.
func (w *Wrapper) Enable() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enabled {
		return nil
	}
	if err := w.context().enable(); err != nil {
		return fmt.Errorf("enable %s: %w", w.plugin.Name(), err)
	}
	w.enabled = true
	w.log.Info("plugin enabled")
	return nil
}

// Disable runs the disable callback of an enabled plugin.
func (w *Wrapper) Disable() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled {
		return
	}
	w.context().disable()
	w.enabled = false
	w.log.Info("plugin disabled")
}

// Enabled reports whether the plugin is enabled.
func (w *Wrapper) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}
