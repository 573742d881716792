package buttons

import (
	"errors"
	"fmt"

	"github.com/tinyland-inc/picobuttons/pkg/reflectutil"
)

// RefreshError reports that the store could not be told about a changed message.
type RefreshError struct {
	MessageID string
	Err       error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh message %s: %v", e.MessageID, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// CapacityError reports a message whose rows are all in use.
type CapacityError struct {
	Rows    int
	MaxRows int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("message has %d top-level components, limit is %d", e.Rows, e.MaxRows)
}

// failureKind labels err for logs and metrics.
func failureKind(err error) string {
	var (
		resErr      *reflectutil.ResolutionError
		allocErr    *reflectutil.AllocationError
		assignErr   *reflectutil.AssignError
		refreshErr  *RefreshError
		capacityErr *CapacityError
	)
	switch {
	case errors.As(err, &resErr):
		return "resolution"
	case errors.As(err, &allocErr):
		return "allocation"
	case errors.As(err, &assignErr):
		return "assign"
	case errors.As(err, &refreshErr):
		return "refresh"
	case errors.As(err, &capacityErr):
		return "capacity"
	default:
		return "other"
	}
}

// failureFields adds whatever context err carries about the failing type or field.
func failureFields(err error, fields map[string]any) map[string]any {
	fields["error"] = err.Error()
	fields["kind"] = failureKind(err)

	var resErr *reflectutil.ResolutionError
	if errors.As(err, &resErr) {
		fields["type"] = fmt.Sprint(resErr.Type)
		fields["field"] = resErr.Field
	}
	var assignErr *reflectutil.AssignError
	if errors.As(err, &assignErr) {
		fields["type"] = fmt.Sprint(assignErr.Type)
		fields["field"] = assignErr.Field
	}
	var allocErr *reflectutil.AllocationError
	if errors.As(err, &allocErr) {
		fields["type"] = fmt.Sprint(allocErr.Type)
	}
	return fields
}
