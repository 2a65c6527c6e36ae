package handlers

import (
	"sync"
)

const (
	EventStateChanged = "state.changed"
	EventTrackChanged = "track.changed"
	EventLoadFailed   = "load.failed"
)

// EventBus delivers events synchronously, in subscription order, on the
// publishing goroutine. The transport controller publishes from the UI
// goroutine, so handlers may touch widgets directly.
type EventBus struct {
	subscribers map[string][]subscription
	nextID      int
	mutex       sync.RWMutex
}

type EventHandler func(data interface{})

type subscription struct {
	id      int
	handler EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]subscription),
	}
}

// Subscribe registers handler for eventType and returns a function that
// removes just this handler.
func (bus *EventBus) Subscribe(eventType string, handler EventHandler) func() {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	bus.nextID++
	id := bus.nextID
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{id: id, handler: handler})

	return func() {
		bus.mutex.Lock()
		defer bus.mutex.Unlock()

		subs := bus.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				bus.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (bus *EventBus) Publish(eventType string, data interface{}) {
	bus.mutex.RLock()
	subs := bus.subscribers[eventType]
	bus.mutex.RUnlock()

	for _, s := range subs {
		s.handler(data)
	}
}

func (bus *EventBus) Unsubscribe(eventType string) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	delete(bus.subscribers, eventType)
}
