// Package gossip is the broadcast sink the accumulator supervisor
// forwards newly minted template patterns to. The inter-node wire
// protocol is out of scope; only the fan-out contract (one
// broadcaster, many subscribers, idempotent pattern import on receipt)
// lives here, so a real transport can be slotted in later without
// touching the supervisor.
package gossip

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// NodeID identifies this process in a cluster. It is generated once
// at startup.
type NodeID string

// NewNodeID mints a random node identifier.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Broadcaster fans newly discovered patterns out to any number of
// subscribers. Sends never block a slow subscriber out of the whole
// broadcast: each subscriber gets its own buffered channel and a full
// one is logged and skipped rather than stalling the sender.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan string]struct{}
	logger *slog.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{subs: make(map[chan string]struct{}), logger: logger}
}

// Subscribe registers a new listener and returns its receive channel
// along with an unsubscribe function.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish broadcasts pattern to every current subscriber.
func (b *Broadcaster) Publish(pattern string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- pattern:
		default:
			b.logger.Warn("gossip: subscriber channel full, dropping pattern", "pattern", pattern)
		}
	}
}

// PatternImporter is satisfied by anything that can absorb a pattern
// learned from a peer without re-discovering it locally (Chunk's
// ImportPattern method fits this).
type PatternImporter interface {
	ImportPattern(pattern string)
}

// Importer drains a subscription channel and applies every pattern it
// receives to target. Import is idempotent by construction
// (TemplateTable.InternPattern reuses an existing id), so replays and
// duplicate gossip from multiple peers are harmless.
func Importer(patterns <-chan string, target PatternImporter, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for pattern := range patterns {
		logger.Debug("gossip: importing pattern from peer", "pattern", pattern)
		target.ImportPattern(pattern)
	}
}
