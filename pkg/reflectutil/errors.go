package reflectutil

import (
	"fmt"
	"reflect"
)

// ResolutionError reports a member that does not exist on the target type.
type ResolutionError struct {
	Type  reflect.Type
	Field string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %v.%s: no such field", e.Type, e.Field)
}

// AllocationError reports a type that cannot be instantiated.
type AllocationError struct {
	Type   reflect.Type
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocate %v: %s", e.Type, e.Reason)
}

// AssignError reports a value whose type cannot be stored in a field.
type AssignError struct {
	Type  reflect.Type
	Field string
	Value reflect.Type
}

func (e *AssignError) Error() string {
	return fmt.Sprintf("assign %v to %v.%s: incompatible type", e.Value, e.Type, e.Field)
}
