package reflectutil

import "reflect"

// Allocate returns a pointer to a zero value of t without running any
// constructor. Pointer types allocate their element type.
func Allocate(t reflect.Type) (any, error) {
	if t == nil {
		return nil, &AllocationError{Type: t, Reason: "nil type"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &AllocationError{Type: t, Reason: "not a struct type"}
	}
	return reflect.New(t).Interface(), nil
}

// AllocateFor is Allocate with a typed result.
func AllocateFor[T any]() (*T, error) {
	v, err := Allocate(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	p, ok := v.(*T)
	if !ok {
		return nil, &AllocationError{Type: reflect.TypeFor[T](), Reason: "pointer type parameter"}
	}
	return p, nil
}

// FieldValue pairs a binding with the value Populate writes through it.
type FieldValue struct {
	Field *Field
	Value any
}

// Populate writes each value in order and stops at the first failure,
// leaving earlier writes in place.
func Populate(obj any, values ...FieldValue) error {
	for _, fv := range values {
		if err := fv.Field.Set(obj, fv.Value); err != nil {
			return err
		}
	}
	return nil
}
