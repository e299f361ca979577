package symbol

import (
	"errors"
	"fmt"

	"github.com/StoreStation/phantomcraft/pkg/version"
)

// ErrArgumentMismatch is wrapped by every arity or type mismatch reported by
// Method.Invoke and Constructor.New.
var ErrArgumentMismatch = errors.New("symbol: argument mismatch")

// SymbolNotFoundError reports that no catalog entry maps a key for the
// running version.
type SymbolNotFoundError struct {
	Key     Key
	Version version.Version
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol: %s has no mapping for %s", e.Key, e.Version)
}

// BindingError reports that a mapped symbol could not be bound to an
// implementation for the running version.
type BindingError struct {
	Key     Key
	Version version.Version
	Bind    string
	Err     error
}

func (e *BindingError) Error() string {
	msg := fmt.Sprintf("symbol: bind %s for %s", e.Key, e.Version)
	if e.Bind != "" {
		msg += " via " + e.Bind
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BindingError) Unwrap() error { return e.Err }

// ArgumentError describes a single argument mismatch.
type ArgumentError struct {
	Symbol string
	Index  int // -1 for an arity mismatch
	Want   string
	Got    string
}

func (e *ArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("symbol: %s takes %s arguments, got %s", e.Symbol, e.Want, e.Got)
	}
	return fmt.Sprintf("symbol: %s argument %d: want %s, got %s", e.Symbol, e.Index, e.Want, e.Got)
}

func (e *ArgumentError) Unwrap() error { return ErrArgumentMismatch }
