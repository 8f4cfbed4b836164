// Package glossary loads the registry of recognized domain terms and
// abbreviations that contracts are cross-checked against.
package glossary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one registered term definition.
type Entry struct {
	Definition string `json:"definition" yaml:"definition"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Glossary maps terms and abbreviations to their definitions. It is
// loaded once per batch run and read-only afterwards, so concurrent
// lookups from linter workers need no locking.
type Glossary struct {
	Version string           `json:"version" yaml:"version"`
	Terms   map[string]Entry `json:"terms" yaml:"terms"`
}

// LoadFile reads a glossary from a JSON or YAML file, keyed on extension.
func LoadFile(path string) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glossary %s: %w", path, err)
	}

	var g Glossary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("parse glossary %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("parse glossary %s: %w", path, err)
		}
	}

	if g.Terms == nil {
		g.Terms = map[string]Entry{}
	}
	return &g, nil
}

// Has reports whether term is registered. Lookup is case-sensitive
// exact match; there is no fuzzy matching.
func (g *Glossary) Has(term string) bool {
	_, ok := g.Terms[term]
	return ok
}

// Len returns the number of registered terms.
func (g *Glossary) Len() int { return len(g.Terms) }
