package logshrink

// StringInterner is a bidirectional mapping between arbitrary strings
// and dense uint32 ids, scoped to a single chunk. Strings are never
// removed.
type StringInterner struct {
	pool  []string
	index map[string]uint32
}

// NewStringInterner creates an empty interner.
func NewStringInterner() *StringInterner {
	return &StringInterner{index: make(map[string]uint32)}
}

// Intern returns the id for value, minting a new one if value has not
// been seen before in this chunk. A nil value interns to a nil id.
func (s *StringInterner) Intern(value *string) *uint32 {
	if value == nil {
		return nil
	}
	if id, ok := s.index[*value]; ok {
		return &id
	}
	id := uint32(len(s.pool))
	s.pool = append(s.pool, *value)
	s.index[*value] = id
	return &id
}

// Resolve returns the string for id by direct indexing.
func (s *StringInterner) Resolve(id uint32) (string, bool) {
	if int(id) >= len(s.pool) {
		return "", false
	}
	return s.pool[id], true
}

// Pool returns the ordered, deduplicated sequence of interned strings.
func (s *StringInterner) Pool() []string { return s.pool }

// Len reports the number of distinct strings interned.
func (s *StringInterner) Len() int { return len(s.pool) }

// loadPool rebuilds the interner from a decoded string pool, used by
// the decoder to reconstruct a sealed chunk.
func (s *StringInterner) loadPool(pool []string) {
	s.pool = pool
	s.index = make(map[string]uint32, len(pool))
	for i, v := range pool {
		s.index[v] = uint32(i)
	}
}
