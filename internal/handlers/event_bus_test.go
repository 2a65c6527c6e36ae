package handlers

import (
	"reflect"
	"testing"
)

func TestPublishOrder(t *testing.T) {
	bus := NewEventBus()

	var got []string
	bus.Subscribe(EventStateChanged, func(data interface{}) { got = append(got, "first:"+data.(string)) })
	bus.Subscribe(EventStateChanged, func(data interface{}) { got = append(got, "second:"+data.(string)) })
	bus.Subscribe(EventTrackChanged, func(data interface{}) { got = append(got, "track") })

	bus.Publish(EventStateChanged, "x")

	expected := []string{"first:x", "second:x"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestSubscribeCancel(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	cancel := bus.Subscribe(EventLoadFailed, func(interface{}) { calls++ })
	other := 0
	bus.Subscribe(EventLoadFailed, func(interface{}) { other++ })

	bus.Publish(EventLoadFailed, nil)
	cancel()
	bus.Publish(EventLoadFailed, nil)

	if calls != 1 {
		t.Errorf("expected cancelled handler to run once, ran %d times", calls)
	}
	if other != 2 {
		t.Errorf("expected remaining handler to run twice, ran %d times", other)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventTrackChanged, func(interface{}) { calls++ })
	bus.Unsubscribe(EventTrackChanged)
	bus.Publish(EventTrackChanged, 1)

	if calls != 0 {
		t.Errorf("expected no calls after Unsubscribe, got %d", calls)
	}
}
