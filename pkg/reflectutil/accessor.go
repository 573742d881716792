// Package reflectutil reads and writes struct members regardless of their
// visibility and allocates values of foreign types without their constructors.
//
// This relies on unsafe.Pointer to lift the export restriction reflect imposes
// on unexported fields. It is only meant for host types the caller does not
// control, and every access goes through a cached Accessor.
package reflectutil

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

// Accessor reads and writes one member of one struct type.
type Accessor struct {
	owner reflect.Type
	field reflect.StructField
}

// Owner is the struct type declaring the member.
func (a *Accessor) Owner() reflect.Type { return a.owner }

// Name is the member name as declared.
func (a *Accessor) Name() string { return a.field.Name }

// FieldType is the declared type of the member.
func (a *Accessor) FieldType() reflect.Type { return a.field.Type }

// target returns a settable view of the member, even when it is unexported.
func (a *Accessor) target(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != a.owner {
		return reflect.Value{}, fmt.Errorf("field %v.%s: want non-nil *%v, got %T", a.owner, a.field.Name, a.owner, obj)
	}
	f := v.Elem().FieldByIndex(a.field.Index)
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem(), nil
}

// Get returns the member's current value.
func (a *Accessor) Get(obj any) (any, error) {
	f, err := a.target(obj)
	if err != nil {
		return nil, err
	}
	return f.Interface(), nil
}

// Set stores value in the member. A nil value resets it to its zero value.
// Values of a different named type with the same kind are converted.
func (a *Accessor) Set(obj, value any) error {
	f, err := a.target(obj)
	if err != nil {
		return err
	}
	if value == nil {
		f.SetZero()
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(f.Type()):
	case v.Kind() == f.Kind() && v.Type().ConvertibleTo(f.Type()):
		v = v.Convert(f.Type())
	default:
		return &AssignError{Type: a.owner, Field: a.field.Name, Value: v.Type()}
	}
	f.Set(v)
	return nil
}

type cacheKey struct {
	owner reflect.Type
	name  string
}

// Cache memoizes accessors per (type, member name). Racing resolutions of the
// same key are harmless: the first stored accessor wins and all are equivalent.
type Cache struct {
	entries sync.Map
}

// NewCache returns an empty accessor cache.
func NewCache() *Cache {
	return &Cache{}
}

// Resolve returns the accessor for the named member of owner. Pointer types
// resolve against their element type.
func (c *Cache) Resolve(owner reflect.Type, name string) (*Accessor, error) {
	if owner != nil && owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}
	key := cacheKey{owner: owner, name: name}
	if a, ok := c.entries.Load(key); ok {
		return a.(*Accessor), nil
	}
	if owner == nil || owner.Kind() != reflect.Struct {
		return nil, &ResolutionError{Type: owner, Field: name}
	}
	sf, ok := owner.FieldByName(name)
	if !ok {
		return nil, &ResolutionError{Type: owner, Field: name}
	}
	a, _ := c.entries.LoadOrStore(key, &Accessor{owner: owner, field: sf})
	return a.(*Accessor), nil
}

// Len reports how many accessors have been resolved.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// LogicalName derives a member name from a binder name by dropping the
// conventional "Field" suffix: "labelField" binds "label".
func LogicalName(binder string) string {
	return strings.TrimSuffix(binder, "Field")
}

// Field is a member binding that resolves lazily through a Cache.
type Field struct {
	cache  *Cache
	owner  reflect.Type
	member string
}

// Bind declares a binding on owner. An empty member defaults to LogicalName(binder).
func (c *Cache) Bind(owner reflect.Type, binder, member string) *Field {
	if member == "" {
		member = LogicalName(binder)
	}
	return &Field{cache: c, owner: owner, member: member}
}

// BindFor is Bind for the type parameter T.
func BindFor[T any](c *Cache, binder, member string) *Field {
	return c.Bind(reflect.TypeFor[T](), binder, member)
}

// Member is the member name the binding targets.
func (f *Field) Member() string { return f.member }

// Resolve looks the member up on first use; later calls hit the cache.
func (f *Field) Resolve() (*Accessor, error) {
	return f.cache.Resolve(f.owner, f.member)
}

// Get reads the bound member of obj.
func (f *Field) Get(obj any) (any, error) {
	a, err := f.Resolve()
	if err != nil {
		return nil, err
	}
	return a.Get(obj)
}

// Set writes value to the bound member of obj, with Accessor.Set semantics.
func (f *Field) Set(obj, value any) error {
	a, err := f.Resolve()
	if err != nil {
		return err
	}
	return a.Set(obj, value)
}
