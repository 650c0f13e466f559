package hyperloglog_test

import (
	"fmt"

	"github.com/brask/logshrink/pkg/hyperloglog"
)

// Example shows basic HyperLogLog usage for estimating how many
// distinct hostnames appear in a stream of syslog messages.
func Example() {
	hosts := hyperloglog.New(14)

	hosts.Add("web-01")
	hosts.Add("web-02")
	hosts.Add("web-03")
	hosts.Add("web-01") // Duplicate

	fmt.Printf("Distinct hosts: ~%d\n", hosts.Count())
	// Output: Distinct hosts: ~3
}

// Example_merge shows combining the hostname sketches of two chunks
// into an estimate of distinct hosts seen across both.
func Example_merge() {
	chunkA := hyperloglog.New(14)
	chunkB := hyperloglog.New(14)

	chunkA.Add("web-01")
	chunkA.Add("web-02")
	chunkA.Add("web-03")

	chunkB.Add("web-03")
	chunkB.Add("db-01")
	chunkB.Add("db-02")

	chunkA.Merge(chunkB)

	fmt.Printf("Total distinct hosts: ~%d\n", chunkA.Count())
	// Output: Total distinct hosts: ~5
}

// Example_templateCardinality shows tracking how many distinct
// discovered templates and hostnames a chunk contains without storing
// every value seen, the way bench reports approximate cardinality
// alongside the exact compression numbers.
func Example_templateCardinality() {
	templates := hyperloglog.New(14)
	hosts := hyperloglog.New(14)

	records := []struct {
		hostname string
		pattern  string
	}{
		{"web-01", "User <*> logged in from <*>"},
		{"web-02", "User <*> logged in from <*>"},
		{"web-01", "System restart"},
		{"web-03", "User <*> logged in from <*>"},
	}

	for _, r := range records {
		hosts.Add(r.hostname)
		templates.Add(r.pattern)
	}

	fmt.Printf("Distinct hosts: ~%d\n", hosts.Count())
	fmt.Printf("Distinct templates: ~%d\n", templates.Count())
	// Output:
	// Distinct hosts: ~3
	// Distinct templates: ~2
}
