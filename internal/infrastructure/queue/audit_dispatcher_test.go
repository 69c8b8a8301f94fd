package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

type collectingSink struct {
	mu      sync.Mutex
	entries []ports.AuditEntry
	done    chan struct{}
	want    int
}

func newCollectingSink(want int) *collectingSink {
	return &collectingSink{done: make(chan struct{}), want: want}
}

func (s *collectingSink) Record(_ context.Context, entry ports.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if len(s.entries) == s.want {
		close(s.done)
	}
	return nil
}

func TestAuditDispatcher_DeliversEntries(t *testing.T) {
	sink := newCollectingSink(5)
	d := NewAuditDispatcher(2, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := int64(1); i <= 5; i++ {
		if err := d.Record(ctx, ports.AuditEntry{UserID: i, Action: domain.ActionUserLogin}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("entries not delivered: got %d of 5", len(sink.entries))
	}
}

func TestAuditDispatcher_SameUserKeepsOrder(t *testing.T) {
	sink := newCollectingSink(3)
	d := NewAuditDispatcher(4, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	sequence := []domain.Action{
		domain.ActionUserRegistered,
		domain.ActionUserLogin,
		domain.ActionUserLogout,
	}
	for _, action := range sequence {
		if err := d.Record(ctx, ports.AuditEntry{UserID: 9, Action: action}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("entries not delivered")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i, action := range sequence {
		if sink.entries[i].Action != action {
			t.Fatalf("out of order: expected %v, got %v", sequence, sink.entries)
		}
	}
}

func TestAuditDispatcher_DropsWhenShardFull(t *testing.T) {
	// Never started, so the single shard only holds its buffer.
	d := NewAuditDispatcher(1, newCollectingSink(0), zerolog.Nop())
	ctx := context.Background()

	var dropped bool
	for i := 0; i < channelBuffer+1; i++ {
		if err := d.Record(ctx, ports.AuditEntry{UserID: 1, Action: domain.ActionUserLogin}); err != nil {
			if !errors.Is(err, ErrQueueFull) {
				t.Fatalf("expected ErrQueueFull, got %v", err)
			}
			dropped = true
		}
	}
	if !dropped {
		t.Fatalf("expected a drop after %d buffered entries", channelBuffer)
	}
}
