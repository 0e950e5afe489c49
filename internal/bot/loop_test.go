package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/labbridge/labbridge/internal/notify"
	"github.com/labbridge/labbridge/internal/recipients"
	"github.com/labbridge/labbridge/internal/registry"
)

func TestLoop_RepliesAndExitsOnClose(t *testing.T) {
	d := NewDispatcher(registry.New("http://127.0.0.1:1", 100*time.Millisecond), recipients.New(), nil)

	var mu sync.Mutex
	var replies []string
	n := notify.Func(func(_ context.Context, _ int64, text string) error {
		mu.Lock()
		replies = append(replies, text)
		mu.Unlock()
		return nil
	})

	updates := make(chan notify.Incoming, 2)
	updates <- notify.Incoming{ChatID: 1, Text: "/help"}
	updates <- notify.Incoming{ChatID: 1, Text: "  "} // ignored — no reply
	close(updates)

	done := make(chan struct{})
	go func() {
		Loop(context.Background(), updates, d, n)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Loop did not exit after channel close")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(replies) != 1 {
		t.Fatalf("replies: got %d, want 1", len(replies))
	}
}

func TestLoop_ExitsOnCancel(t *testing.T) {
	d := NewDispatcher(registry.New("http://127.0.0.1:1", 100*time.Millisecond), recipients.New(), nil)
	n := notify.Func(func(context.Context, int64, string) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Loop(ctx, make(chan notify.Incoming), d, n)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Loop did not exit after cancel")
	}
}
