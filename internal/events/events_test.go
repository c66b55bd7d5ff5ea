package events_test

import (
	"testing"

	"tanam/internal/events"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_PublishReachesAllSubscribers(t *testing.T) {
	d := events.NewDispatcher()

	var first, second []events.Event
	d.Subscribe(func(ev events.Event) { first = append(first, ev) })
	d.Subscribe(func(ev events.Event) { second = append(second, ev) })

	d.Publish(events.Event{
		Type:     events.BidStatusChanged,
		EntityID: "bid-1",
		From:     "pending",
		To:       "reviewing",
	})

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, "bid-1", first[0].EntityID)
	assert.False(t, first[0].At.IsZero(), "publish stamps the event time")
}

func TestDispatcher_UnsubscribeStopsDelivery(t *testing.T) {
	d := events.NewDispatcher()

	var got []events.Event
	sub := d.Subscribe(func(ev events.Event) { got = append(got, ev) })

	d.Publish(events.Event{Type: events.OrderStatusChanged, EntityID: "order-1"})
	sub.Unsubscribe()
	d.Publish(events.Event{Type: events.OrderStatusChanged, EntityID: "order-2"})

	assert.Len(t, got, 1)
	assert.Equal(t, "order-1", got[0].EntityID)

	// Unsubscribing twice is harmless.
	sub.Unsubscribe()
}

func TestDispatcher_HandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	d := events.NewDispatcher()

	var count int
	var sub *events.Subscription
	sub = d.Subscribe(func(events.Event) {
		count++
		sub.Unsubscribe()
	})

	d.Publish(events.Event{Type: events.BidStatusChanged, EntityID: "bid-1"})
	d.Publish(events.Event{Type: events.BidStatusChanged, EntityID: "bid-1"})

	assert.Equal(t, 1, count)
}
