// Package dispatch routes button presses to local handlers or back to the server.
package dispatch

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
	"github.com/tinyland-inc/picobuttons/pkg/metrics"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
)

type Result string

const (
	ResultLocal     Result = "local"
	ResultForwarded Result = "forwarded"
	ResultUnhandled Result = "unhandled"
	ResultFailed    Result = "failed"
)

// Fallback performs the default server round-trip for presses with no local handler.
type Fallback interface {
	Forward(ctx context.Context, msg *host.Message, customID string) error
}

// FallbackFunc adapts a function to Fallback.
type FallbackFunc func(ctx context.Context, msg *host.Message, customID string) error

func (f FallbackFunc) Forward(ctx context.Context, msg *host.Message, customID string) error {
	return f(ctx, msg, customID)
}

type Dispatcher struct {
	registry *registry.Registry
	fallback Fallback
	metrics  *metrics.Metrics
}

// New creates a dispatcher. fallback and m may be nil.
func New(reg *registry.Registry, fallback Fallback, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{registry: reg, fallback: fallback, metrics: m}
}

// Dispatch runs the handler registered for customID. A panicking handler is
// logged and reported as ResultFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *host.Message, customID string, ui host.UIContainer) (res Result, err error) {
	defer func() { d.metrics.Pressed(string(res)) }()

	cb, ok := d.registry.Lookup(customID)
	if !ok {
		if d.fallback == nil {
			return ResultUnhandled, nil
		}
		if err := d.fallback.Forward(ctx, msg, customID); err != nil {
			return ResultFailed, fmt.Errorf("forward %s: %w", customID, err)
		}
		return ResultForwarded, nil
	}

	return d.invoke(cb, msg, customID, ui)
}

func (d *Dispatcher) invoke(cb registry.Callback, msg *host.Message, customID string, ui host.UIContainer) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields := map[string]any{"custom_id": customID, "panic": fmt.Sprint(r)}
			if msg != nil {
				fields["message_id"] = msg.ID()
			}
			logger.ErrorCF("dispatch", "Button handler panicked", fields)
			res, err = ResultFailed, fmt.Errorf("handler for %s panicked: %v", customID, r)
		}
	}()
	cb(msg, ui)
	return ResultLocal, nil
}
