package symbol

import "fmt"

// Kind is the fetch kind of a symbol.
type Kind int

const (
	KindClass Kind = iota + 1
	KindMethod
	KindConstructor
	KindField
)

// String returns the catalog name of the kind.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindField:
		return "field"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "class":
		*k = KindClass
	case "method":
		*k = KindMethod
	case "constructor":
		*k = KindConstructor
	case "field":
		*k = KindField
	default:
		return fmt.Errorf("symbol: unknown kind %q", text)
	}
	return nil
}

// Key identifies a symbol by fetch kind and stable logical name.
type Key struct {
	Kind Kind
	Name string
}

// String returns the kind and name separated by a space.
func (k Key) String() string {
	return k.Kind.String() + " " + k.Name
}
