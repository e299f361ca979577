package symbol

import (
	"fmt"
	"reflect"
	"strconv"
)

// Handle is a resolved symbol. Exactly one of the payloads is set.
type Handle struct {
	key   Key
	class *Class
	meth  *Method
	ctor  *Constructor
	field *Field
}

// ClassHandle wraps a class.
func ClassHandle(c *Class) *Handle {
	return &Handle{key: Key{KindClass, c.Name}, class: c}
}

// MethodHandle wraps a method.
func MethodHandle(m *Method) *Handle {
	return &Handle{key: Key{KindMethod, m.Name}, meth: m}
}

// ConstructorHandle wraps a constructor.
func ConstructorHandle(c *Constructor) *Handle {
	return &Handle{key: Key{KindConstructor, c.Name}, ctor: c}
}

// FieldHandle wraps an enum constant field.
func FieldHandle(f *Field) *Handle {
	return &Handle{key: Key{KindField, f.Name}, field: f}
}

// Kind returns the kind of the resolved symbol.
func (h *Handle) Kind() Kind { return h.key.Kind }

// Key returns the key the handle was resolved for.
func (h *Handle) Key() Key { return h.key }

func (h *Handle) mismatch(want Kind) error {
	return &BindingError{Key: h.key, Err: fmt.Errorf("handle is a %s, not a %s", h.key.Kind, want)}
}

// Class returns the class payload or a BindingError.
func (h *Handle) Class() (*Class, error) {
	if h.class == nil {
		return nil, h.mismatch(KindClass)
	}
	return h.class, nil
}

// Method returns the method payload or a BindingError.
func (h *Handle) Method() (*Method, error) {
	if h.meth == nil {
		return nil, h.mismatch(KindMethod)
	}
	return h.meth, nil
}

// Constructor returns the constructor payload or a BindingError.
func (h *Handle) Constructor() (*Constructor, error) {
	if h.ctor == nil {
		return nil, h.mismatch(KindConstructor)
	}
	return h.ctor, nil
}

// Field returns the field payload or a BindingError.
func (h *Handle) Field() (*Field, error) {
	if h.field == nil {
		return nil, h.mismatch(KindField)
	}
	return h.field, nil
}

// EnumConstant is the value of an enum field.
type EnumConstant struct {
	Class   string
	Name    string
	Ordinal int32
}

// String returns Class.NAME.
func (c EnumConstant) String() string { return c.Class + "." + c.Name }

// Class is an enum-like table of named constants.
type Class struct {
	Name   string
	fields map[string]*Field
	order  []string
}

// NewEnum builds a class whose constants take their ordinal from position.
func NewEnum(name string, constants ...string) *Class {
	c := &Class{Name: name, fields: make(map[string]*Field, len(constants))}
	for i, constant := range constants {
		c.fields[constant] = &Field{
			Name:  name + "." + constant,
			Value: EnumConstant{Class: name, Name: constant, Ordinal: int32(i)},
		}
		c.order = append(c.order, constant)
	}
	return c
}

// Field returns the declared constant with the given case-sensitive name.
func (c *Class) Field(name string) (*Field, error) {
	f, ok := c.fields[name]
	if !ok {
		return nil, fmt.Errorf("%s declares no field %s", c.Name, name)
	}
	return f, nil
}

// Constants lists constant names in declaration order.
func (c *Class) Constants() []string {
	return append([]string(nil), c.order...)
}

// Field is a static value.
type Field struct {
	Name  string
	Value any
}

// Method is an invocable operation on a receiver, or a static one if
// Receiver is nil.
type Method struct {
	Name     string
	Receiver reflect.Type
	Params   []reflect.Type
	fn       func(recv any, args []any) (any, error)
}

// NewMethod creates a method whose receiver and parameters are checked
// against recv and params before fn runs.
func NewMethod(name string, recv reflect.Type, params []reflect.Type, fn func(recv any, args []any) (any, error)) *Method {
	return &Method{Name: name, Receiver: recv, Params: params, fn: fn}
}

// Invoke calls the method. recv is ignored for static methods.
func (m *Method) Invoke(recv any, args ...any) (any, error) {
	if m.Receiver != nil {
		if recv == nil {
			return nil, &ArgumentError{Symbol: m.Name, Index: 0, Want: m.Receiver.String(), Got: "nil receiver"}
		}
		if err := checkArg(m.Name, 0, m.Receiver, recv); err != nil {
			return nil, err
		}
	}
	if err := checkArgs(m.Name, m.Params, args); err != nil {
		return nil, err
	}
	return m.fn(recv, args)
}

// Constructor builds a new object from positional arguments.
type Constructor struct {
	Name   string
	Params []reflect.Type
	fn     func(args []any) (any, error)
}

// NewConstructor creates a constructor whose arguments are checked against
// params before fn runs.
func NewConstructor(name string, params []reflect.Type, fn func(args []any) (any, error)) *Constructor {
	return &Constructor{Name: name, Params: params, fn: fn}
}

// New checks args and instantiates the symbol.
func (c *Constructor) New(args ...any) (any, error) {
	if err := checkArgs(c.Name, c.Params, args); err != nil {
		return nil, err
	}
	return c.fn(args)
}

// Params is shorthand for a parameter list.
func Params(types ...reflect.Type) []reflect.Type { return types }

func checkArgs(name string, params []reflect.Type, args []any) error {
	if len(args) != len(params) {
		return &ArgumentError{
			Symbol: name,
			Index:  -1,
			Want:   strconv.Itoa(len(params)),
			Got:    strconv.Itoa(len(args)),
		}
	}
	for i, p := range params {
		if err := checkArg(name, i+1, p, args[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkArg(name string, index int, want reflect.Type, arg any) error {
	if arg == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
			return nil
		}
		return &ArgumentError{Symbol: name, Index: index, Want: want.String(), Got: "nil"}
	}
	got := reflect.TypeOf(arg)
	if !got.AssignableTo(want) {
		return &ArgumentError{Symbol: name, Index: index, Want: want.String(), Got: got.String()}
	}
	return nil
}
