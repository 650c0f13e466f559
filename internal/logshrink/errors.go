package logshrink

import "errors"

// Sentinel error kinds. Parse-reject and queue-full are boundary
// concerns (internal/syslogparse, internal/ingest) and have no
// sentinel here; seal-empty is a no-op, not an error, handled by the
// supervisor skipping the call entirely.
var (
	// ErrChunkSealed is returned by AddMessage once FinishAndProcess
	// has run; a sealed chunk is read-only.
	ErrChunkSealed = errors.New("logshrink: chunk is sealed")

	// ErrFormatCorrupt is returned by Decode when the archive fails a
	// structural check: mismatched column lengths, an out-of-range
	// template id, or a decompression failure.
	ErrFormatCorrupt = errors.New("logshrink: archive format is corrupt")
)
