package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"pet-medical-records/internal/ports/notify"
)

type recordingGateway struct {
	mu   sync.Mutex
	sent []string
}

func (g *recordingGateway) SendExpiryNotice(ctx context.Context, n notify.ExpiryNotice) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, n.RecipientEmail)
	return nil
}

func (g *recordingGateway) SendRecordAddedNotice(ctx context.Context, n notify.RecordAddedNotice) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, n.RecipientEmail)
	return nil
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func TestAsyncGateway_DeliversInBackground(t *testing.T) {
	inner := &recordingGateway{}
	g := NewAsyncGateway(inner)

	err := g.SendExpiryNotice(context.Background(), notify.ExpiryNotice{RecipientEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for inner.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if inner.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", inner.count())
	}
	g.Close()
}

func TestAsyncGateway_CloseDrainsQueue(t *testing.T) {
	inner := &recordingGateway{}
	g := NewAsyncGateway(inner)

	for i := 0; i < 20; i++ {
		_ = g.SendRecordAddedNotice(context.Background(), notify.RecordAddedNotice{RecipientEmail: "a@example.com"})
	}

	g.Close()

	if inner.count() != 20 {
		t.Fatalf("close must drain the queue: delivered %d of 20", inner.count())
	}
}

func TestAsyncGateway_SendAfterCloseIsDropped(t *testing.T) {
	inner := &recordingGateway{}
	g := NewAsyncGateway(inner)
	g.Close()

	if err := g.SendExpiryNotice(context.Background(), notify.ExpiryNotice{RecipientEmail: "a@example.com"}); err != nil {
		t.Fatalf("send after close must not error: %v", err)
	}
	if inner.count() != 0 {
		t.Fatalf("nothing should be delivered after close, got %d", inner.count())
	}
}
