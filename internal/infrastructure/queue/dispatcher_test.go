package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

type recordingService struct {
	mu   sync.Mutex
	seen map[string][]string // shard key -> activity ids in processing order
	done chan struct{}
	want int
	n    int
}

func newRecordingService(want int) *recordingService {
	return &recordingService{seen: make(map[string][]string), done: make(chan struct{}), want: want}
}

func (s *recordingService) Process(_ context.Context, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := shardKey(a)
	s.seen[k] = append(s.seen[k], a.ID)
	s.n++
	if s.n == s.want {
		close(s.done)
	}
	return nil
}

func TestDispatcher_PreservesPerTicketOrder(t *testing.T) {
	const perTicket = 50
	tickets := []string{"TCK-1", "TCK-2", "TCK-3", "TCK-4"}
	svc := newRecordingService(perTicket * len(tickets))

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(3, svc, zerolog.Nop())
	d.Start(ctx)

	var batch []domain.Activity
	for i := 0; i < perTicket; i++ {
		for _, tk := range tickets {
			batch = append(batch, domain.Activity{ID: fmt.Sprintf("%s-%03d", tk, i), TicketID: tk})
		}
	}
	d.EnqueueBatch(batch)

	select {
	case <-svc.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for activities")
	}
	cancel()
	d.Wait()

	for _, tk := range tickets {
		ids := svc.seen[tk]
		if len(ids) != perTicket {
			t.Fatalf("%s: expected %d activities, got %d", tk, perTicket, len(ids))
		}
		for i, id := range ids {
			if want := fmt.Sprintf("%s-%03d", tk, i); id != want {
				t.Fatalf("%s: out of order at %d: got %s want %s", tk, i, id, want)
			}
		}
	}
}

func TestShardKey(t *testing.T) {
	if k := shardKey(domain.Activity{TicketID: "T1", UserID: "3"}); k != "T1" {
		t.Fatalf("expected ticket key, got %q", k)
	}
	if k := shardKey(domain.Activity{UserID: "3"}); k != "3" {
		t.Fatalf("expected user key, got %q", k)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, nil, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	for _, key := range []string{"", "TCK-1", "a-very-long-ticket-identifier"} {
		i := d.shardIndex(key)
		if i < 0 || i >= defaultWorkers || i != d.shardIndex(key) {
			t.Fatalf("unstable or out of range index %d for %q", i, key)
		}
	}
}
