// Package bus is the in-process notification fabric. The engine publishes
// typed events (see internal/wm/events.go); consumers subscribe by event
// type. Publishing never fails from the publisher's point of view:
// handler errors are logged and dropped, so the engine has no dependency
// on its consumers succeeding.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var _ctx = context.Background()

// SetContext sets the context handed to handlers on publish. Call once at
// startup before the supervisor starts.
func SetContext(ctx context.Context) {
	_ctx = ctx
}

var (
	mu   sync.RWMutex
	subs = make(map[string][]func(ctx context.Context, event any))
)

// Subscribe registers fn for every published event of type T. The name is
// only used to attribute handler failures in logs.
func Subscribe[T any](name string, fn func(ctx context.Context, event T) error) {
	topic := fmt.Sprintf("%T", *new(T))
	mu.Lock()
	defer mu.Unlock()
	subs[topic] = append(subs[topic], func(ctx context.Context, event any) {
		if err := fn(ctx, event.(T)); err != nil {
			slog.Error("Failed to handle event", "package", "bus", "name", name, "error", err)
		}
	})
}

// Publish delivers event synchronously to every subscriber of its type.
func Publish[T any](event T) {
	mu.RLock()
	handlers := subs[fmt.Sprintf("%T", event)]
	mu.RUnlock()
	for _, fn := range handlers {
		fn(_ctx, event)
	}
}

// NewHub returns a channel fan-out for T, for consumers that want a
// stream instead of a callback (the control API's event feed).
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[*chan T]struct{}),
	}
}

type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*chan T]struct{}
}

func (h *Hub[T]) Broadcast(ctx context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case <-ctx.Done():
		case *sub <- event:
		}
	}

	return nil
}

// Register wires the hub to the global bus so every published T is
// broadcast to its channel subscribers.
func (h *Hub[T]) Register() *Hub[T] {
	Subscribe("bus.Hub", h.Broadcast)
	return h
}

// Subscribe returns a channel of events and a cancel function that must be
// called when the consumer is done.
func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T)

	key := &c
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	return c, func() {
		h.mu.Lock()
		delete(h.subs, key)
		h.mu.Unlock()
	}
}
