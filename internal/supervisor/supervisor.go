// Package supervisor drives the single-threaded core: it owns the
// current chunk exclusively, receives ParsedEvents off the bounded
// ingest queue, seals and flushes on a threshold or on shutdown, and
// forwards newly discovered patterns to the gossip broadcaster.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/brask/logshrink/internal/gossip"
	"github.com/brask/logshrink/internal/ingest"
	"github.com/brask/logshrink/internal/logshrink"
)

// Config controls seal thresholds and output location.
type Config struct {
	// SealThreshold is the number of raw events that triggers a seal
	// and flush. The default is 10, sized for correctness tests; a
	// production deployment sets this much higher.
	SealThreshold int

	// OutputDir is the directory chunk archives are written into.
	OutputDir string
}

// ChunkFileName returns the path a sealed chunk numbered seq is
// written to.
func (c Config) ChunkFileName(seq int) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf("chunk-%08d.lshrink", seq))
}

// Supervisor is the sole owner of the in-memory chunk; there is never
// concurrent access to it. The core stays single-threaded so that the
// discoverer's tie-breaking, and therefore the emitted pattern set,
// is deterministic.
type Supervisor struct {
	cfg         Config
	queue       *ingest.Queue
	broadcaster *gossip.Broadcaster
	logger      *slog.Logger
	onEvent     func(logshrink.ParsedEvent)
	imports     chan string

	chunk *logshrink.Chunk
	seq   int
}

// importQueueCapacity bounds the backlog of patterns awaiting import
// into the supervisor's current chunk (seed-pattern hot reloads,
// gossip imports); when the queue is full, ImportPatternAsync logs and
// drops the incoming pattern rather than blocking its sender.
const importQueueCapacity = 256

// New creates a Supervisor with a fresh, empty current chunk.
func New(cfg Config, queue *ingest.Queue, broadcaster *gossip.Broadcaster, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SealThreshold <= 0 {
		cfg.SealThreshold = 10
	}
	return &Supervisor{
		cfg:         cfg,
		queue:       queue,
		broadcaster: broadcaster,
		logger:      logger,
		chunk:       logshrink.NewChunk(),
		imports:     make(chan string, importQueueCapacity),
	}
}

// OnEvent registers a hook invoked with every accepted event before it
// is appended to the current chunk, used to tap a live copy out to the
// UI boundary's SSE hub without coupling the supervisor to it directly.
func (s *Supervisor) OnEvent(fn func(logshrink.ParsedEvent)) {
	s.onEvent = fn
}

// ImportPattern seeds the current chunk's template table directly.
// It is safe only before Run starts (e.g. at process startup), since
// the chunk is otherwise owned exclusively by the Run goroutine.
// Callers that may race with Run — a seed-pattern file watcher, a
// gossip subscriber — must use ImportPatternAsync instead.
func (s *Supervisor) ImportPattern(pattern string) {
	s.chunk.ImportPattern(pattern)
}

// ImportPatternAsync enqueues pattern for import into whichever chunk
// the Run loop currently owns, applied on the supervisor's own
// goroutine rather than the caller's. This is the concurrency-safe
// path for imports arriving after Run has started; serve calls it from
// its config.SeedPatternsWatcher callback. It does not satisfy
// gossip.PatternImporter, whose method is ImportPattern: passing a
// Supervisor to gossip.Importer calls ImportPattern, not this method.
func (s *Supervisor) ImportPatternAsync(pattern string) {
	select {
	case s.imports <- pattern:
	default:
		s.logger.Warn("supervisor: import queue full, dropping pattern", "pattern", pattern)
	}
}

// Run multiplexes the ingest queue, the pattern import queue and ctx
// cancellation, the only suspension points the supervisor has. It
// returns when ctx is
// cancelled, after sealing and flushing whatever chunk is in flight.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		select {
		case event, ok := <-s.queue.C():
			if !ok {
				s.sealAndFlush()
				return nil
			}
			if s.onEvent != nil {
				s.onEvent(event)
			}
			if err := s.chunk.AddMessage(event); err != nil {
				// The only failure mode is adding to an already-sealed
				// chunk, which cannot happen here since seal always
				// replaces s.chunk with a fresh one.
				s.logger.Error("unexpected AddMessage failure", "err", err)
				continue
			}
			if s.chunk.Len() >= s.cfg.SealThreshold {
				s.sealAndFlush()
			}

		case pattern := <-s.imports:
			s.chunk.ImportPattern(pattern)

		case <-ctx.Done():
			s.sealAndFlush()
			return nil
		}
	}
}

// sealAndFlush implements Seal-empty: an empty chunk is not sealed or
// written at all, avoiding a zero-record file on every idle shutdown
// or threshold tick that finds nothing queued. An encode failure drops
// that one chunk — logged, never fatal — and the loop continues with a
// fresh one.
func (s *Supervisor) sealAndFlush() {
	if s.chunk.Len() == 0 {
		return
	}

	newPatterns := s.chunk.FinishAndProcess()
	path := s.cfg.ChunkFileName(s.seq)
	if err := logshrink.Encode(s.chunk, path); err != nil {
		s.logger.Error("chunk flush failed, dropping chunk", "seq", s.seq, "path", path, "records", len(s.chunk.Records()), "err", err)
		s.seq++
		s.chunk = logshrink.NewChunk()
		return
	}
	s.logger.Info("chunk flushed", "seq", s.seq, "path", path, "records", len(s.chunk.Records()), "new_patterns", len(newPatterns))

	for _, pattern := range newPatterns {
		s.broadcaster.Publish(pattern)
	}

	s.seq++
	s.chunk = logshrink.NewChunk()
}

// TickerInterval is how often Run's caller should additionally check
// for a time-based seal in deployments that want a "seal every N
// seconds regardless of volume" policy layered on top of the count
// threshold. The core Run loop above only implements the
// count-threshold and shutdown triggers; time-based flushing is an
// optional production knob left to the caller via RunWithTicker.
const TickerInterval = 30 * time.Second

// RunWithTicker behaves like Run but additionally seals on a fixed
// wall-clock interval, so a lightly loaded deployment still flushes
// periodically instead of only at shutdown.
func (s *Supervisor) RunWithTicker(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = TickerInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-s.queue.C():
			if !ok {
				s.sealAndFlush()
				return nil
			}
			if s.onEvent != nil {
				s.onEvent(event)
			}
			if err := s.chunk.AddMessage(event); err != nil {
				s.logger.Error("unexpected AddMessage failure", "err", err)
				continue
			}
			if s.chunk.Len() >= s.cfg.SealThreshold {
				s.sealAndFlush()
			}

		case pattern := <-s.imports:
			s.chunk.ImportPattern(pattern)

		case <-ticker.C:
			s.sealAndFlush()

		case <-ctx.Done():
			s.sealAndFlush()
			return nil
		}
	}
}
