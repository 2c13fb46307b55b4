package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoListener is returned when no handler is registered for a message.
	ErrNoListener = errors.New("no listener for message")
)

// Handler answers a request. The response is one of the *Response types, or
// nil for fire-and-forget messages.
type Handler func(ctx context.Context, msg Message) (any, error)

// Bus routes requests to one handler per type and fans notifications out to
// subscribers. One bus stands for one messaging endpoint: the runtime (shared
// by the background service and the popup) or a single tab.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
	fallback Handler
	subs     map[int]chan Message
	nextSub  int
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type]Handler),
		subs:     make(map[int]chan Message),
	}
}

// Handle registers h for t, replacing any previous handler.
func (b *Bus) Handle(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = h
}

// HandleDefault registers h for types without their own handler.
func (b *Bus) HandleDefault(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = h
}

// Remove unregisters the handler of t.
func (b *Bus) Remove(t Type) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, t)
}

// Send delivers msg to its handler and waits for the response.
func (b *Bus) Send(ctx context.Context, msg Message) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[msg.Type]
	if !ok {
		h = b.fallback
	}
	b.mu.RUnlock()

	if h == nil {
		return nil, fmt.Errorf("%s: %w", msg.Type, ErrNoListener)
	}
	return h(ctx, msg)
}

// Subscribe returns a channel receiving every notification and a function
// that cancels the subscription.
func (b *Bus) Subscribe(buffer int) (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan Message, buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Notify broadcasts msg without blocking. Subscribers with a full buffer miss
// it. It returns ErrNoListener when nobody is subscribed.
func (b *Bus) Notify(msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.subs) == 0 {
		return fmt.Errorf("%s: %w", msg.Type, ErrNoListener)
	}
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}
