package eventbus

import (
	"testing"
	"time"

	"github.com/kilianp07/dockflow/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(events.StationStarted{StationID: 7})
	v := <-ch
	ev, ok := v.(events.StationStarted)
	if !ok || ev.StationID != 7 {
		t.Fatalf("unexpected event %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusKeepsEveryEventInOrder(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	const n = 5000
	for i := 0; i < n; i++ {
		bus.Publish(i)
	}
	bus.Close()
	got := 0
	for v := range ch {
		if v != got {
			t.Fatalf("event %d out of order: %v", got, v)
		}
		got++
	}
	if got != n {
		t.Fatalf("expected %d events, got %d", n, got)
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribe after close should return a closed channel")
	}
	bus.Publish("ignored")
}

func TestBusUnsubscribeDiscardsPending(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	for i := 0; i < 10; i++ {
		bus.Publish(i)
	}
	bus.Unsubscribe(ch)
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel not closed after Unsubscribe")
		}
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(1)
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
	bus.Unsubscribe(ch)
}

func TestNopBus(t *testing.T) {
	var b EventBus = Nop{}
	b.Publish("ignored")
	if _, ok := <-b.Subscribe(); ok {
		t.Fatalf("nop subscription should be closed")
	}
	b.Close()
}
