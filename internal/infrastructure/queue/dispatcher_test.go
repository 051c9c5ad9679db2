package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/auth-server/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AccountEvent
	err    error
	block  chan struct{}
}

func (s *recordingService) Process(_ context.Context, e domain.AccountEvent) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingService) snapshot() []domain.AccountEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AccountEvent, len(s.events))
	copy(out, s.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcher_PreservesPerAccountOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	seq := []domain.AccountEventType{
		domain.EventRegistered,
		domain.EventLoginSucceeded,
		domain.EventUpdated,
		domain.EventDeleted,
	}
	for _, typ := range seq {
		d.Record(domain.AccountEvent{Type: typ, AccountID: "acc-1"})
	}

	waitFor(t, func() bool { return len(svc.snapshot()) == len(seq) })
	cancel()
	d.Wait()

	for i, e := range svc.snapshot() {
		if e.Type != seq[i] {
			t.Fatalf("event %d: expected %s, got %s", i, seq[i], e.Type)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())

	first := d.shardIndex("acc-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("acc-42"); got != first {
			t.Fatalf("shard moved from %d to %d", first, got)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard %d out of range", first)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingService{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_RecordDropsWhenFull(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())

	// Workers are not started, so the single queue fills up.
	for i := 0; i < channelBuffer+10; i++ {
		done := make(chan struct{})
		go func() {
			d.Record(domain.AccountEvent{Type: domain.EventLoginFailed, Email: "a@x.io"})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Record blocked on event %d", i)
		}
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected full queue of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ProcessErrorDoesNotStopWorker(t *testing.T) {
	svc := &recordingService{err: errors.New("mongo down")}
	d := NewDispatcher(1, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AccountEvent{Type: domain.EventUpdated, AccountID: "acc-1"})
	d.Record(domain.AccountEvent{Type: domain.EventDeleted, AccountID: "acc-1"})

	waitFor(t, func() bool { return len(svc.snapshot()) == 2 })
}

func TestDispatcher_CloseDrainsQueuedEvents(t *testing.T) {
	release := make(chan struct{})
	svc := &recordingService{block: release}
	d := NewDispatcher(2, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		d.Record(domain.AccountEvent{Type: domain.EventLoginSucceeded, AccountID: fmt.Sprintf("acc-%d", i)})
	}
	close(release)
	d.Close()

	if got := len(svc.snapshot()); got != 20 {
		t.Fatalf("expected all 20 events processed before Close returned, got %d", got)
	}

	// Recording after Close must neither panic nor block.
	d.Record(domain.AccountEvent{Type: domain.EventDeleted, AccountID: "late"})
	if got := len(svc.snapshot()); got != 20 {
		t.Fatalf("late event was processed")
	}
}
