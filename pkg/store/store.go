// Package store is the client's reactive message store. Changes are queued on
// an UpdateBus and fanned out to subscribers by Run, so views repaint on the
// store's own goroutine rather than the caller's.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tinyland-inc/picobuttons/pkg/bus"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/logger"
)

var ErrMessageNotFound = errors.New("message not found")

// Subscriber repaints a changed message. It runs under the message's render
// lock and must not call Mutate.
type Subscriber func(ctx context.Context, msg *host.Message) error

type Store struct {
	bus *bus.UpdateBus

	mu          sync.RWMutex
	messages    map[string]*host.Message
	subscribers map[string]Subscriber
	deleteHooks []func(messageID string)

	// renderLocks holds one *sync.Mutex per message id. Subscribers run and
	// Mutate callbacks execute under it.
	renderLocks sync.Map
}

func New(b *bus.UpdateBus) *Store {
	return &Store{
		bus:         b,
		messages:    make(map[string]*host.Message),
		subscribers: make(map[string]Subscriber),
	}
}

// Put adds or replaces a message by id.
func (s *Store) Put(msg *host.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ID()] = msg
}

func (s *Store) Get(id string) (*host.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return msg, nil
}

// IDs returns the ids of all stored messages, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.messages))
	for id := range s.messages {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Delete removes a message and queues a deleted event for the delete hooks.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.messages[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	delete(s.messages, id)
	s.mu.Unlock()
	s.renderLocks.Delete(id)

	return s.bus.Publish(ctx, bus.MessageEvent{Kind: bus.EventDeleted, MessageID: id})
}

// NotifyChanged queues an update for msg. Subscribers run later from Run.
func (s *Store) NotifyChanged(msg *host.Message) error {
	if msg == nil {
		return errors.New("notify: nil message")
	}
	s.mu.Lock()
	if _, ok := s.messages[msg.ID()]; !ok {
		s.messages[msg.ID()] = msg
	}
	s.mu.Unlock()

	return s.bus.Publish(context.Background(), bus.MessageEvent{
		Kind:      bus.EventUpdated,
		MessageID: msg.ID(),
		Message:   msg,
	})
}

// Mutate runs fn while holding msg's render lock, so no subscriber observes
// the message halfway through the change. fn must not call back into Mutate
// for the same message.
func (s *Store) Mutate(msg *host.Message, fn func() error) error {
	if msg == nil {
		return errors.New("mutate: nil message")
	}
	l := s.renderLock(msg.ID())
	l.Lock()
	defer l.Unlock()
	return fn()
}

func (s *Store) renderLock(id string) *sync.Mutex {
	l, _ := s.renderLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// Subscribe registers fn for update events and returns a handle for Unsubscribe.
func (s *Store) Subscribe(fn Subscriber) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[id] = fn
	return id
}

func (s *Store) Unsubscribe(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[handle]; !ok {
		return false
	}
	delete(s.subscribers, handle)
	return true
}

// OnDelete registers fn to run whenever a message is deleted.
func (s *Store) OnDelete(fn func(messageID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteHooks = append(s.deleteHooks, fn)
}

// Run dispatches queued events until ctx is done or the bus is closed.
func (s *Store) Run(ctx context.Context) {
	for {
		ev, ok := s.bus.Consume(ctx)
		if !ok {
			return
		}
		switch ev.Kind {
		case bus.EventUpdated:
			s.dispatchUpdate(ctx, ev.Message)
		case bus.EventDeleted:
			s.dispatchDelete(ev.MessageID)
		}
	}
}

func (s *Store) dispatchUpdate(ctx context.Context, msg *host.Message) {
	s.mu.RLock()
	subs := make(map[string]Subscriber, len(s.subscribers))
	for id, fn := range s.subscribers {
		subs[id] = fn
	}
	s.mu.RUnlock()

	l := s.renderLock(msg.ID())
	l.Lock()
	defer l.Unlock()

	for id, fn := range subs {
		if err := fn(ctx, msg); err != nil {
			logger.WarnCF("store", "Subscriber failed to render message", map[string]any{
				"subscriber": id,
				"message_id": msg.ID(),
				"error":      err.Error(),
			})
		}
	}
}

func (s *Store) dispatchDelete(messageID string) {
	s.mu.RLock()
	hooks := append([]func(string){}, s.deleteHooks...)
	s.mu.RUnlock()

	for _, fn := range hooks {
		fn(messageID)
	}
	logger.DebugCF("store", "Message deleted", map[string]any{"message_id": messageID})
}
