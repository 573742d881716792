package bus

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing to a closed UpdateBus.
var ErrBusClosed = errors.New("update bus closed")

const defaultBuffer = 100

// UpdateBus carries message events from the store to its dispatch loop.
type UpdateBus struct {
	events chan MessageEvent
	done   chan struct{}
	closed atomic.Bool
}

func NewUpdateBus() *UpdateBus {
	return NewUpdateBusSize(defaultBuffer)
}

func NewUpdateBusSize(buffer int) *UpdateBus {
	return &UpdateBus{
		events: make(chan MessageEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (b *UpdateBus) Publish(ctx context.Context, ev MessageEvent) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	select {
	case b.events <- ev:
		return nil
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *UpdateBus) Consume(ctx context.Context) (MessageEvent, bool) {
	select {
	case ev, ok := <-b.events:
		return ev, ok
	case <-b.done:
		return MessageEvent{}, false
	case <-ctx.Done():
		return MessageEvent{}, false
	}
}

func (b *UpdateBus) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
}
