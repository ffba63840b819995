package scan

import (
	"sync"

	"github.com/wonny/fundwatch/internal/contracts"
)

// ProgressBroker fans progress updates out to subscribers (CLI output,
// websocket hub). Slow subscribers are skipped, never blocked on.
type ProgressBroker struct {
	mu   sync.RWMutex
	subs map[int]chan contracts.Progress
	next int
	last *contracts.Progress
}

// NewProgressBroker creates an empty broker
func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{subs: make(map[int]chan contracts.Progress)}
}

// Subscribe registers a subscriber. The returned cancel func must be
// called when done.
func (b *ProgressBroker) Subscribe() (<-chan contracts.Progress, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan contracts.Progress, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers a progress update to all subscribers
func (b *ProgressBroker) Publish(p contracts.Progress) {
	b.mu.Lock()
	b.last = &p
	b.mu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- p:
		default:
			// Subscriber buffer full, drop the update
		}
	}
}

// Last returns the most recently published progress, if any
func (b *ProgressBroker) Last() (contracts.Progress, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return contracts.Progress{}, false
	}
	return *b.last, true
}
