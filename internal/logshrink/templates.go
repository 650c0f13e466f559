package logshrink

// Template is the (id, pattern) pair referenced from a LogRecord.
type Template struct {
	ID      uint32
	Pattern string
}

// TemplateTable is a bidirectional mapping between pattern strings
// (tokens joined by single spaces, with "<*>" placeholders) and dense
// uint32 ids, scoped to a single chunk. Patterns compare by exact
// string equality of their joined form.
type TemplateTable struct {
	patterns []string
	index    map[string]uint32
}

// NewTemplateTable creates an empty template table.
func NewTemplateTable() *TemplateTable {
	return &TemplateTable{index: make(map[string]uint32)}
}

// InternPattern returns the id for pattern, minting a new dense id if
// this exact joined form has not been seen before.
func (t *TemplateTable) InternPattern(pattern string) uint32 {
	if id, ok := t.index[pattern]; ok {
		return id
	}
	id := uint32(len(t.patterns))
	t.patterns = append(t.patterns, pattern)
	t.index[pattern] = id
	return id
}

// ImportPattern idempotently registers an externally-learned pattern:
// it assigns a new id if the pattern is absent, and is a no-op
// otherwise.
func (t *TemplateTable) ImportPattern(pattern string) {
	t.InternPattern(pattern)
}

// Has reports whether pattern is already present in the table.
func (t *TemplateTable) Has(pattern string) bool {
	_, ok := t.index[pattern]
	return ok
}

// Pattern resolves id to its pattern string.
func (t *TemplateTable) Pattern(id uint32) (string, bool) {
	if int(id) >= len(t.patterns) {
		return "", false
	}
	return t.patterns[id], true
}

// Len reports the number of distinct patterns.
func (t *TemplateTable) Len() int { return len(t.patterns) }

// Templates returns the (id, pattern) pairs in id order.
func (t *TemplateTable) Templates() []Template {
	out := make([]Template, len(t.patterns))
	for id, pattern := range t.patterns {
		out[id] = Template{ID: uint32(id), Pattern: pattern}
	}
	return out
}

// loadTemplates rebuilds the table from a decoded template list, used
// by the decoder. Ids are trusted to already be dense and ascending.
func (t *TemplateTable) loadTemplates(templates []Template) {
	t.patterns = make([]string, len(templates))
	t.index = make(map[string]uint32, len(templates))
	for _, tpl := range templates {
		t.patterns[tpl.ID] = tpl.Pattern
		t.index[tpl.Pattern] = tpl.ID
	}
}
