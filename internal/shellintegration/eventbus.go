package shellintegration

import (
	"sync"

	"github.com/berrym/lush/internal/composer"
)

// EventBus is a minimal in-process stand-in for the shell event bus
// collaborator spec.md §6 names (subscribe/unsubscribe by event_kind),
// implementing composer.EventBus. A real hosting shell fires Publish from
// its own chpwd/precmd/preexec hook points; Root wires the composer's
// subscriptions to it at construction time.
type EventBus struct {
	mu         sync.Mutex
	nextHandle int
	subs       []subscription
}

type subscription struct {
	handle  int
	kind    composer.EventKind
	handler func(payload any)
}

// NewEventBus creates an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers handler for kind and returns a handle for Unsubscribe.
func (b *EventBus) Subscribe(kind composer.EventKind, handler func(payload any)) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHandle++
	handle := b.nextHandle
	b.subs = append(b.subs, subscription{handle: handle, kind: kind, handler: handler})
	return handle
}

// Unsubscribe removes a previously registered handler. Unknown handles are
// a no-op.
func (b *EventBus) Unsubscribe(handle int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.handle == handle {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish fires every handler subscribed to kind, in registration order.
// The hosting shell calls this from its own hook points to drive the
// composer's chpwd/precmd/preexec notifications.
func (b *EventBus) Publish(kind composer.EventKind, payload any) {
	b.mu.Lock()
	var matched []func(any)
	for _, sub := range b.subs {
		if sub.kind == kind {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range matched {
		h(payload)
	}
}
