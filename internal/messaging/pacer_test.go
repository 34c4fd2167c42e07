package messaging

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	sent []string
	to   []string
}

func (r *recordingSender) SendMessage(ctx context.Context, to string, body string) error {
	r.to = append(r.to, to)
	r.sent = append(r.sent, body)
	return nil
}

func newFastPacer(sender ChunkSender) *Pacer {
	p := NewPacer(sender)
	p.delay = time.Millisecond
	return p
}

func TestSplitChunksProperties(t *testing.T) {
	cases := []struct {
		length     int
		wantChunks int
	}{
		{0, 1},
		{1, 1},
		{4000, 1},
		{4001, 2},
		{8000, 2},
		{8001, 3},
		{10000, 3},
	}
	for _, c := range cases {
		text := strings.Repeat("a", c.length)
		chunks := SplitChunks(text, DefaultChunkLength)
		if len(chunks) != c.wantChunks {
			t.Errorf("len=%d: got %d chunks, want %d", c.length, len(chunks), c.wantChunks)
		}
		for i, chunk := range chunks {
			if len(chunk) > DefaultChunkLength {
				t.Errorf("len=%d: chunk %d exceeds limit (%d chars)", c.length, i, len(chunk))
			}
		}
		if strings.Join(chunks, "") != text {
			t.Errorf("len=%d: chunks do not concatenate back to the original", c.length)
		}
	}
}

func TestSplitChunksRuneSafe(t *testing.T) {
	text := strings.Repeat("💙", 10)
	chunks := SplitChunks(text, 3)
	if strings.Join(chunks, "") != text {
		t.Fatalf("multibyte text mangled by chunking")
	}
	for i, chunk := range chunks {
		if !strings.HasPrefix(chunk, "💙") {
			t.Errorf("chunk %d starts mid-rune: %q", i, chunk)
		}
	}
}

func TestPacerSingleSendForShortMessages(t *testing.T) {
	sender := &recordingSender{}
	p := newFastPacer(sender)
	if err := p.SendMessage(context.Background(), "+1", "short"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "short" {
		t.Errorf("short message must go out as a single send: %v", sender.sent)
	}
}

func TestPacerChunksInOrder(t *testing.T) {
	sender := &recordingSender{}
	p := newFastPacer(sender)
	text := strings.Repeat("a", DefaultChunkLength) + strings.Repeat("b", DefaultChunkLength) + "c"

	if err := p.SendMessage(context.Background(), "+1", text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(sender.sent))
	}
	if strings.Join(sender.sent, "") != text {
		t.Errorf("chunks arrived out of order or incomplete")
	}
	if !strings.HasPrefix(sender.sent[0], "a") || !strings.HasPrefix(sender.sent[1], "b") || sender.sent[2] != "c" {
		t.Errorf("chunk order wrong: prefixes %q %q %q", sender.sent[0][:1], sender.sent[1][:1], sender.sent[2])
	}
}

type concurrentSender struct {
	mu    sync.Mutex
	order []string
}

func (c *concurrentSender) SendMessage(ctx context.Context, to string, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = append(c.order, body[:1])
	return nil
}

func TestPacerShortSendWaitsForInFlightChunks(t *testing.T) {
	sender := &concurrentSender{}
	p := NewPacer(sender)
	p.delay = 50 * time.Millisecond
	long := strings.Repeat("a", DefaultChunkLength+1)

	done := make(chan struct{})
	go func() {
		p.SendMessage(context.Background(), "+1", long)
		close(done)
	}()
	// Land inside the inter-chunk delay: wait for the first chunk to go out.
	for {
		sender.mu.Lock()
		n := len(sender.order)
		sender.mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := p.SendMessage(context.Background(), "+1", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-done

	got := strings.Join(sender.order, "")
	if got != "aab" {
		t.Errorf("short message interleaved with another message's chunks: order %q, want %q", got, "aab")
	}
}

func TestPacerContextCancellation(t *testing.T) {
	sender := &recordingSender{}
	p := NewPacer(sender) // real 1s delay, cancelled before it elapses
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- p.SendMessage(ctx, "+1", strings.Repeat("a", DefaultChunkLength+1))
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected context cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pacer did not honor context cancellation")
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected only the first chunk before cancellation, got %d", len(sender.sent))
	}
}
