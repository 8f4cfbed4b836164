// Package batch discovers contract files and validates them concurrently,
// aggregating per-file results into one report.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Workspace files that share a directory with contracts but are never
// themselves contracts: catalogues, glossaries, schema documents and the
// engine's own report artifacts. Exclusion wins over every other rule so
// a run can never lint its own output.
var (
	excludedPrefixes = []string{"katalog_", "glossary_", "contract_schema_"}
	excludedSuffixes = []string{"_lint.json", "_report.json"}
	excludedNames    = []string{"summary.json"}
)

// Decision says whether a filename takes part in a run and why not.
type Decision struct {
	Include bool
	Reason  string
}

// Classify decides from the base filename alone whether a file is a
// lintable contract. Naming-convention conformance is NOT required
// here: a stray contract with a wrong name must still be discovered so
// the linter can flag it.
func Classify(name string) Decision {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, ".json") {
		return Decision{Reason: "not a JSON file"}
	}
	for _, n := range excludedNames {
		if base == n {
			return Decision{Reason: "report artifact"}
		}
	}
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(base, p) {
			return Decision{Reason: "workspace file (" + p + "*)"}
		}
	}
	for _, s := range excludedSuffixes {
		if strings.HasSuffix(base, s) {
			return Decision{Reason: "report artifact (*" + s + ")"}
		}
	}
	return Decision{Include: true}
}

// Discover expands the given paths into a sorted, deduplicated list of
// contract files. Directories are walked recursively with Classify
// filtering; explicitly named files are taken as-is, trusting the
// caller over the exclusion patterns.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if Classify(path).Include {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}
