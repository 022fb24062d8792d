package messaging

import (
	"context"
	"testing"

	"agora/internal/shared/events"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)

	first, cancelFirst := hub.Subscribe(4)
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe(4)
	defer cancelSecond()

	event := events.New(events.TypeStageChanged, "election", "voting", "voting")
	if err := hub.Publish(ctx, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	for i, sub := range []<-chan events.Envelope{first, second} {
		select {
		case got := <-sub:
			if got.EventID != event.EventID {
				t.Fatalf("subscriber %d got wrong event: %+v", i, got)
			}
		default:
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestPublishDropsForFullSubscriber(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)

	slow, cancelSlow := hub.Subscribe(1)
	defer cancelSlow()
	fast, cancelFast := hub.Subscribe(4)
	defer cancelFast()

	for i := 0; i < 3; i++ {
		event := events.New(events.TypeUpdatedEther, "candidates", "alice", i)
		if err := hub.Publish(ctx, event); err != nil {
			t.Fatalf("publish #%d failed: %v", i+1, err)
		}
	}

	if got := len(slow); got != 1 {
		t.Fatalf("expected slow subscriber capped at 1 buffered event, got %d", got)
	}
	if got := len(fast); got != 3 {
		t.Fatalf("expected fast subscriber to hold all 3 events, got %d", got)
	}
}

func TestCancelDetachesSubscriber(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)

	sub, cancel := hub.Subscribe(4)
	cancel()

	if err := hub.Publish(ctx, events.New(events.TypeNewCandidate, "candidates", "alice", nil)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if got := len(sub); got != 0 {
		t.Fatalf("expected nothing delivered after cancel, got %d", got)
	}
}
