package server

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestBrokerRoutesByTopic(t *testing.T) {
	b := NewBroker()

	a := b.Subscribe("team-a")
	other := b.Subscribe("team-b")

	b.Publish("team-a", Event{Type: "challenge_active", ChallengeID: "c1", Status: "active"})

	select {
	case data := <-a:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.ChallengeID != "c1" || ev.Status != "active" {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("subscriber did not receive event")
	}

	select {
	case data := <-other:
		t.Fatalf("other topic received %s", data)
	default:
	}

	b.Unsubscribe("team-a", a)
	b.Unsubscribe("team-b", other)
	if n := b.subscribers("team-a"); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(ScoreboardTopic)
	defer b.Unsubscribe(ScoreboardTopic, ch)

	// Publishing past the buffer must not block.
	for range cap(ch) + 5 {
		b.Publish(ScoreboardTopic, Event{Type: "scoreboard"})
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected full buffer of %d, got %d", cap(ch), len(ch))
	}
}

func TestKeyedMutexSerialisesPerKey(t *testing.T) {
	k := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("c1")
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one holder, saw %d", maxSeen)
	}
	if n := k.size(); n != 0 {
		t.Errorf("expected lock table to drain, %d entries left", n)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()
	<-done // would deadlock if keys shared a lock
	unlockA()
}
