// Package config loads the seed pattern file a chunk's template table
// is pre-populated with at startup, and watches it for edits so an
// operator can add known patterns without a restart. It follows
// internal/patterns/patterns.go's YAML shape, repurposed: instead of
// compiling regexes for inline redaction, each entry is a discoverer
// pattern string (with <*> wildcards already in place) that is
// imported into the template table verbatim.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedPattern is one pre-seeded template pattern.
type SeedPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

// SeedPatternsFile is the on-disk shape of the seed patterns YAML.
type SeedPatternsFile struct {
	Patterns []SeedPattern `yaml:"patterns"`
}

// LoadSeedPatterns reads and parses a seed patterns file.
func LoadSeedPatterns(path string) (*SeedPatternsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed patterns file: %w", err)
	}

	var file SeedPatternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing seed patterns YAML: %w", err)
	}
	for _, p := range file.Patterns {
		if p.Pattern == "" {
			return nil, fmt.Errorf("seed pattern %q has an empty pattern string", p.Name)
		}
	}
	return &file, nil
}

// DefaultSeedPatterns returns the built-in fallback used when no seed
// patterns file is configured.
func DefaultSeedPatterns() *SeedPatternsFile {
	return &SeedPatternsFile{
		Patterns: []SeedPattern{
			{Name: "restart", Pattern: "System restart", Description: "unadorned restart notice"},
		},
	}
}
