package events

import (
	"sync"
	"time"
)

// EventType names a lifecycle event published by the controllers.
type EventType string

const (
	// BidStatusChanged fires after a bid status write commits.
	BidStatusChanged EventType = "bid.status_changed"
	// OrderStatusChanged fires after an order status write commits.
	OrderStatusChanged EventType = "order.status_changed"
)

// Event describes one committed status transition.
type Event struct {
	Type     EventType `json:"type"`
	EntityID string    `json:"entity_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	At       time.Time `json:"at"`
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Subscription is the owned handle returned by Subscribe. The subscriber
// releases it with Unsubscribe on teardown; there is no global mutable set
// for callers to reach into.
type Subscription struct {
	id         int
	dispatcher *Dispatcher
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.dispatcher.remove(s.id)
}

// Dispatcher is an in-process publish/subscribe registry. It is safe for
// concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its owned handle.
func (d *Dispatcher) Subscribe(h Handler) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.handlers[d.nextID] = h
	return &Subscription{id: d.nextID, dispatcher: d}
}

// Publish invokes every registered handler with the event. The handler list
// is snapshotted first so handlers may unsubscribe during dispatch.
func (d *Dispatcher) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	d.mu.RLock()
	snapshot := make([]Handler, 0, len(d.handlers))
	for _, h := range d.handlers {
		snapshot = append(snapshot, h)
	}
	d.mu.RUnlock()

	for _, h := range snapshot {
		h(ev)
	}
}

func (d *Dispatcher) remove(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, id)
}
