package logshrink

import "time"

// Chunk is a bounded batch of events plus the template table and
// string pool valid for that batch — the unit of seal, encode, decode
// and archive file. A chunk is owned exclusively by whichever goroutine
// created it; nothing here is safe for concurrent use.
type Chunk struct {
	raw       []ParsedEvent
	templates *TemplateTable
	strings   *StringInterner
	records   []LogRecord
	sealed    bool
}

// NewChunk creates an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		templates: NewTemplateTable(),
		strings:   NewStringInterner(),
	}
}

// AddMessage appends event to the chunk's raw buffer, stamping it with
// the current wall clock if it carries no timestamp. It fails if the
// chunk has already been sealed.
func (c *Chunk) AddMessage(event ParsedEvent) error {
	if c.sealed {
		return ErrChunkSealed
	}
	if event.Timestamp == nil {
		now := time.Now()
		event.Timestamp = &now
	}
	c.raw = append(c.raw, event)
	return nil
}

// Len reports the number of raw, not-yet-sealed messages buffered.
func (c *Chunk) Len() int { return len(c.raw) }

// ImportPattern registers an externally-learned pattern (e.g. received
// over the gossip sink) before the next seal, so that the next
// finish_and_process call reuses its id instead of minting a new one.
func (c *Chunk) ImportPattern(pattern string) {
	c.templates.ImportPattern(pattern)
}

// FinishAndProcess seals the chunk exactly once: it runs the template
// discoverer over the raw buffer, clears the buffer, and returns the
// patterns newly minted during this seal (the list broadcast to the
// gossip sink). Calling it again is a no-op returning nil, since a
// sealed chunk is read-only.
func (c *Chunk) FinishAndProcess() []string {
	if c.sealed {
		return nil
	}
	c.sealed = true

	records, newPatterns := discoverAndMaterialize(c.raw, c.templates, c.strings)
	c.records = records
	c.raw = nil
	return newPatterns
}

// Sealed reports whether FinishAndProcess has run.
func (c *Chunk) Sealed() bool { return c.sealed }

// Records returns the materialised records of a sealed chunk, in
// emission order: grouped by length bucket rather than global arrival
// order.
func (c *Chunk) Records() []LogRecord { return c.records }

// Templates returns the chunk's (id, pattern) pairs in id order.
func (c *Chunk) Templates() []Template { return c.templates.Templates() }

// Pattern resolves a template id to its pattern string.
func (c *Chunk) Pattern(id uint32) (string, bool) { return c.templates.Pattern(id) }

// StringPool returns the chunk's deduplicated header-string pool.
func (c *Chunk) StringPool() []string { return c.strings.Pool() }

// ResolveString resolves a string pool id, by direct indexing.
func (c *Chunk) ResolveString(id uint32) (string, bool) { return c.strings.Resolve(id) }

// fromParts rebuilds a sealed chunk from decoded archive data; used
// only by the decoder.
func fromParts(templates []Template, stringPool []string, records []LogRecord) *Chunk {
	c := &Chunk{
		templates: NewTemplateTable(),
		strings:   NewStringInterner(),
		records:   records,
		sealed:    true,
	}
	c.templates.loadTemplates(templates)
	c.strings.loadPool(stringPool)
	return c
}
