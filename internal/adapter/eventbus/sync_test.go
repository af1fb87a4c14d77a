package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lucverdier/minuet/internal/domain"
)

func testTrack() domain.Track {
	return domain.Track{Kind: domain.KindLocal, Path: "/test/a.mp3", Title: "Test"}
}

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	var callCount int

	subID := bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
		received = event
		callCount++
	})

	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))

	if callCount != 1 {
		t.Errorf("Expected handler to be called once, got %d", callCount)
	}
	if received == nil {
		t.Fatal("Handler did not receive event")
	}
	if received.Type() != domain.EventTrackStarted {
		t.Errorf("Expected EventTrackStarted, got %s", received.Type())
	}

	event := received.(domain.TrackStartedEvent)
	if event.Track.Key() != "/test/a.mp3" {
		t.Errorf("Expected track key /test/a.mp3, got %s", event.Track.Key())
	}
}

// TestMultipleSubscribers tests multiple handlers for the same event type.
func TestMultipleSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var count1, count2 int32

	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { atomic.AddInt32(&count1, 1) })
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { atomic.AddInt32(&count2, 1) })

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))

	if atomic.LoadInt32(&count1) != 1 || atomic.LoadInt32(&count2) != 1 {
		t.Errorf("Expected both handlers called once, got %d and %d", count1, count2)
	}
}

// TestUnsubscribe tests unsubscribing handlers.
func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32

	subID := bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))
	bus.Unsubscribe(subID)
	bus.Publish(domain.NewTrackStartedEvent(testTrack()))

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("Expected 1 call after unsubscribe, got %d", callCount)
	}

	// Unknown ids are a no-op, not a panic.
	bus.Unsubscribe("invalid-id")
	bus.Unsubscribe("")
}

// TestSubscribeAll tests wildcard subscriptions.
func TestSubscribeAll(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received []domain.Event
	var mu sync.Mutex

	bus.SubscribeAll(func(event domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
	})

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))
	bus.Publish(domain.NewTrackPausedEvent(testTrack(), 10*time.Second))
	bus.Publish(domain.NewVolumeChangedEvent(0.5))

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 3 {
		t.Errorf("Expected 3 events, got %d", len(received))
	}
}

// TestHandlerPanic tests that panicking handlers don't crash the bus.
func TestHandlerPanic(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32

	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { panic("test panic") })
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { atomic.AddInt32(&callCount, 1) })

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("Expected normal handler to run despite panic, got %d calls", callCount)
	}
}

// TestClose tests that a closed bus drops publishes.
func TestClose(t *testing.T) {
	bus := NewSyncEventBus()

	var callCount int32
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	if err := bus.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))

	if atomic.LoadInt32(&callCount) != 0 {
		t.Errorf("Expected no calls after close, got %d", callCount)
	}
}

// TestNilEvent tests publishing nil event (should be no-op).
func TestNilEvent(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	bus.Publish(nil)

	if atomic.LoadInt32(&callCount) != 0 {
		t.Errorf("Handler should not be called for nil event, got %d calls", callCount)
	}
}

// TestConcurrentPublish tests concurrent event publishing (race condition test).
func TestConcurrentPublish(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var eventCount int32
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		atomic.AddInt32(&eventCount, 1)
	})

	const numGoroutines = 10
	const eventsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				bus.Publish(domain.NewTrackStartedEvent(testTrack()))
			}
		}()
	}

	wg.Wait()

	expected := int32(numGoroutines * eventsPerGoroutine)
	if atomic.LoadInt32(&eventCount) != expected {
		t.Errorf("Expected %d events, got %d", expected, eventCount)
	}
}

// TestDifferentEventTypes tests that subscribers only receive their event type.
func TestDifferentEventTypes(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var startedCount, pausedCount int32

	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { atomic.AddInt32(&startedCount, 1) })
	bus.Subscribe(domain.EventTrackPaused, func(domain.Event) { atomic.AddInt32(&pausedCount, 1) })

	bus.Publish(domain.NewTrackStartedEvent(testTrack()))
	bus.Publish(domain.NewTrackPausedEvent(testTrack(), 5*time.Second))

	if atomic.LoadInt32(&startedCount) != 1 {
		t.Errorf("Expected 1 started event, got %d", startedCount)
	}
	if atomic.LoadInt32(&pausedCount) != 1 {
		t.Errorf("Expected 1 paused event, got %d", pausedCount)
	}
}
