package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Delivery pacing constants.
const (
	// DefaultChunkLength is the transport-safe chunk size in characters.
	DefaultChunkLength = 4000
	// DefaultChunkDelay is the fixed pause between chunk sends, respecting
	// transport rate limits and preserving arrival order.
	DefaultChunkDelay = 1000 * time.Millisecond
)

// ChunkSender is the underlying single-message send primitive.
type ChunkSender interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// Pacer splits oversized replies into fixed-size chunks and paces their
// transmission. Chunks of one message are sent strictly in sequence, and a
// per-destination lock keeps two messages to the same recipient from
// interleaving their chunks.
type Pacer struct {
	sender      ChunkSender
	chunkLength int
	delay       time.Duration

	mu    sync.Mutex
	dests map[string]*sync.Mutex
}

// NewPacer creates a pacer with the default chunk size and delay.
func NewPacer(sender ChunkSender) *Pacer {
	return &Pacer{
		sender:      sender,
		chunkLength: DefaultChunkLength,
		delay:       DefaultChunkDelay,
		dests:       make(map[string]*sync.Mutex),
	}
}

// SendMessage delivers text to a destination. Short messages go out as a
// single send; anything larger is chunked and paced. Every send takes the
// per-destination lock so a short message cannot land between the chunks of
// an in-flight long one.
func (p *Pacer) SendMessage(ctx context.Context, to string, body string) error {
	chunks := SplitChunks(body, p.chunkLength)

	lock := p.destLock(to)
	lock.Lock()
	defer lock.Unlock()

	if len(chunks) <= 1 {
		return p.sender.SendMessage(ctx, to, body)
	}

	slog.Debug("Pacer.SendMessage: sending chunked message", "to", to, "chunks", len(chunks), "length", len(body))
	for i, chunk := range chunks {
		if err := p.sender.SendMessage(ctx, to, chunk); err != nil {
			return err
		}
		if i < len(chunks)-1 {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// destLock returns the per-destination serialization lock.
func (p *Pacer) destLock(to string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.dests[to]
	if !ok {
		lock = &sync.Mutex{}
		p.dests[to] = lock
	}
	return lock
}

// SplitChunks splits text into rune-safe chunks of at most chunkLength
// characters, in order, concatenating back to the original text.
func SplitChunks(text string, chunkLength int) []string {
	if text == "" {
		return []string{""}
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += chunkLength {
		end := start + chunkLength
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
