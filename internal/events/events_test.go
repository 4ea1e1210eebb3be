package events

import (
	"testing"
	"time"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(ChannelEvent, 1)

	bus.Publish(ChannelEvent, "cycle.succeeded")

	select {
	case evt := <-ch:
		if evt.Channel != ChannelEvent || evt.Payload != "cycle.succeeded" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestPublishToChannelWithNoSubscribersDoesNotBlock(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})
	go func() {
		bus.Publish(ChannelStats, map[string]int{"total": 1})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestPublishDropsOnFullSubscriberChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(ChannelLogs, 1)

	bus.Publish(ChannelLogs, "first")
	done := make(chan struct{})
	go func() {
		bus.Publish(ChannelLogs, "second") // channel already full, must not block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel instead of dropping")
	}

	evt := <-ch
	if evt.Payload != "first" {
		t.Fatalf("expected the first event to survive, got %+v", evt)
	}
}

func TestSubscribersAreIsolatedByChannel(t *testing.T) {
	bus := NewBus()
	logs := bus.Subscribe(ChannelLogs, 1)
	stats := bus.Subscribe(ChannelStats, 1)

	bus.Publish(ChannelLogs, "only logs")

	select {
	case <-stats:
		t.Fatal("stats subscriber received an event meant for the logs channel")
	default:
	}

	select {
	case evt := <-logs:
		if evt.Payload != "only logs" {
			t.Fatalf("unexpected payload: %v", evt.Payload)
		}
	default:
		t.Fatal("logs subscriber did not receive its event")
	}
}
