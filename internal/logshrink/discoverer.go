package logshrink

import (
	"sort"
	"strings"
	"time"
)

// wildcard is the placeholder token marking a variable slot in a
// pattern.
const wildcard = "<*>"

// candidate is a mutable in-progress template: a token vector widened
// towards "<*>" as members disagree, plus the raw-buffer indices of
// the events assigned to it, in insertion order.
type candidate struct {
	tokens  []string
	members []int
}

// tokenize splits a message into whitespace-separated tokens. Extra
// delimiters are deliberately not supported: similarity is defined
// purely over whitespace tokens.
func tokenize(message string) []string {
	return strings.Fields(message)
}

// similarity is the fraction of same-indexed positions where the
// candidate already agrees with tokens, either literally or because
// the candidate slot is already a wildcard. Two empty token vectors
// are vacuously fully similar.
func similarity(candidateTokens, tokens []string) float64 {
	n := len(candidateTokens)
	if n == 0 {
		return 1.0
	}
	matched := 0
	for i := 0; i < n; i++ {
		if candidateTokens[i] == tokens[i] || candidateTokens[i] == wildcard {
			matched++
		}
	}
	return float64(matched) / float64(n)
}

const similarityThreshold = 0.5

// mergeInto widens template in place towards tokens: any position
// where the two disagree and the template slot isn't already a
// wildcard becomes one.
func mergeInto(templateTokens, tokens []string) {
	for i := range templateTokens {
		if templateTokens[i] != tokens[i] && templateTokens[i] != wildcard {
			templateTokens[i] = wildcard
		}
	}
}

// eventTimestampMillis resolves a ParsedEvent's timestamp to ms since
// the Unix epoch, falling back to wall clock when the event carries
// none.
func eventTimestampMillis(e ParsedEvent) int64 {
	if e.Timestamp != nil {
		return e.Timestamp.UnixMilli()
	}
	return time.Now().UnixMilli()
}

// discoverAndMaterialize runs the online template discoverer over raw
// in insertion order, interning newly-finalised patterns into
// templates and headers into interner, and returns the materialised
// records (grouped by length bucket, then by candidate — not global
// arrival order; callers that need it sort by timestamp) plus the
// patterns newly minted by this call.
func discoverAndMaterialize(raw []ParsedEvent, templates *TemplateTable, interner *StringInterner) ([]LogRecord, []string) {
	if len(raw) == 0 {
		return nil, nil
	}

	tokensByIndex := make([][]string, len(raw))
	buckets := make(map[int][]int)
	for idx, event := range raw {
		toks := tokenize(event.Message)
		tokensByIndex[idx] = toks
		buckets[len(toks)] = append(buckets[len(toks)], idx)
	}

	lengths := make([]int, 0, len(buckets))
	for n := range buckets {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	patternsBefore := templates.Len()
	records := make([]LogRecord, 0, len(raw))

	for _, n := range lengths {
		var candidates []*candidate
		for _, idx := range buckets[n] {
			toks := tokensByIndex[idx]

			matchIdx := -1
			for ci, c := range candidates {
				if similarity(c.tokens, toks) >= similarityThreshold {
					matchIdx = ci
					break
				}
			}

			if matchIdx >= 0 {
				c := candidates[matchIdx]
				mergeInto(c.tokens, toks)
				c.members = append(c.members, idx)
				continue
			}

			candidates = append(candidates, &candidate{
				tokens:  append([]string(nil), toks...),
				members: []int{idx},
			})
		}

		for _, c := range candidates {
			pattern := strings.Join(c.tokens, " ")
			templateID := templates.InternPattern(pattern)

			for _, idx := range c.members {
				event := raw[idx]
				eventTokens := tokensByIndex[idx]

				var variables []string
				for i, tok := range c.tokens {
					if tok != wildcard {
						continue
					}
					// Merging never changes a candidate's length, so
					// every member of the bucket has len(c.tokens)
					// tokens and this bound holds; a shorter event
					// would leave the slot uncaptured rather than
					// fail.
					if i < len(eventTokens) {
						variables = append(variables, eventTokens[i])
					}
				}

				records = append(records, LogRecord{
					Timestamp:        eventTimestampMillis(event),
					Priority:         event.Priority,
					HostnameID:       interner.Intern(event.Hostname),
					AppNameID:        interner.Intern(event.AppName),
					ProcIDID:         interner.Intern(event.ProcID),
					MsgIDID:          interner.Intern(event.MsgID),
					StructuredDataID: interner.Intern(event.StructuredData),
					TemplateID:       templateID,
					Variables:        variables,
					IsRFC5424:        event.IsRFC5424,
				})
			}
		}
	}

	var newPatterns []string
	for _, t := range templates.Templates()[patternsBefore:] {
		newPatterns = append(newPatterns, t.Pattern)
	}

	return records, newPatterns
}
