package logshrink

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func msg(text string) ParsedEvent {
	now := time.Now()
	return ParsedEvent{
		Priority:  34,
		Timestamp: &now,
		Hostname:  strPtr("host"),
		Message:   text,
	}
}

func TestTemplateDiscoveryS1(t *testing.T) {
	chunk := NewChunk()
	for _, m := range []string{
		"User alice logged in from 192.168.1.1",
		"User bob logged in from 192.168.1.2",
		"System restart",
	} {
		if err := chunk.AddMessage(msg(m)); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	chunk.FinishAndProcess()

	if got, want := len(chunk.Templates()), 2; got != want {
		t.Fatalf("len(templates) = %d, want %d", got, want)
	}

	var patterns []string
	for _, tpl := range chunk.Templates() {
		patterns = append(patterns, tpl.Pattern)
	}
	wantPatterns := map[string]bool{
		"User <*> logged in from <*>": false,
		"System restart":              false,
	}
	for _, p := range patterns {
		if _, ok := wantPatterns[p]; ok {
			wantPatterns[p] = true
		}
	}
	for p, found := range wantPatterns {
		if !found {
			t.Errorf("expected pattern %q among %v", p, patterns)
		}
	}

	if got, want := len(chunk.Records()), 3; got != want {
		t.Fatalf("len(records) = %d, want %d", got, want)
	}

	var alice *LogRecord
	for i := range chunk.Records() {
		r := chunk.Records()[i]
		if len(r.Variables) == 2 && r.Variables[0] == "alice" {
			alice = &r
		}
	}
	if alice == nil {
		t.Fatal("no record found for alice")
	}
	if got, want := alice.Variables, []string{"alice", "192.168.1.1"}; !equalStrings(got, want) {
		t.Errorf("alice.Variables = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEmptyChunkSealIsNoOp(t *testing.T) {
	chunk := NewChunk()
	newPatterns := chunk.FinishAndProcess()
	if len(newPatterns) != 0 {
		t.Fatalf("newPatterns = %v, want empty", newPatterns)
	}
	if len(chunk.Records()) != 0 {
		t.Fatalf("records = %v, want empty", chunk.Records())
	}
	if len(chunk.Templates()) != 0 {
		t.Fatalf("templates = %v, want empty", chunk.Templates())
	}
}

func TestAddMessageAfterSealFails(t *testing.T) {
	chunk := NewChunk()
	chunk.FinishAndProcess()
	if err := chunk.AddMessage(msg("too late")); err != ErrChunkSealed {
		t.Fatalf("AddMessage after seal = %v, want ErrChunkSealed", err)
	}
}

func TestImportedPatternReused(t *testing.T) {
	chunk := NewChunk()
	chunk.ImportPattern("System restart")
	if err := chunk.AddMessage(msg("System restart")); err != nil {
		t.Fatal(err)
	}
	newPatterns := chunk.FinishAndProcess()
	if len(newPatterns) != 0 {
		t.Fatalf("newPatterns = %v, want none (pattern was imported)", newPatterns)
	}
	if got, want := len(chunk.Templates()), 1; got != want {
		t.Fatalf("len(templates) = %d, want %d", got, want)
	}
}

func TestEmptyMessageSharesOneTemplate(t *testing.T) {
	chunk := NewChunk()
	for i := 0; i < 3; i++ {
		if err := chunk.AddMessage(msg("")); err != nil {
			t.Fatal(err)
		}
	}
	chunk.FinishAndProcess()
	if got, want := len(chunk.Templates()), 1; got != want {
		t.Fatalf("len(templates) = %d, want %d", got, want)
	}
	if got, want := chunk.Templates()[0].Pattern, ""; got != want {
		t.Fatalf("pattern = %q, want %q", got, want)
	}
	for _, r := range chunk.Records() {
		if len(r.Variables) != 0 {
			t.Errorf("variables = %v, want empty", r.Variables)
		}
	}
}
