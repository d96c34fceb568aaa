package eventbus

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := New()
	defer bus.Close()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish("hello")

	for _, sub := range []<-chan Event{a, b} {
		select {
		case ev := <-sub:
			if ev != "hello" {
				t.Fatalf("unexpected event: %v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := New()
	defer bus.Close()
	sub := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	_ = sub
}

func TestCloseIsTerminal(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	bus.Close()
	if _, ok := <-sub; ok {
		t.Fatal("existing subscriber channel should close with the bus")
	}
	late := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("subscribing to a closed bus should yield a closed channel")
	}
	bus.Publish("after") // must not panic
	bus.Close()          // idempotent
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("expected a closed channel")
	}
	bus.Publish("after") // must not panic
	bus.Close()
}
