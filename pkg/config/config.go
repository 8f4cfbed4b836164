// Package config loads the kontra.yaml workspace manifest: defaults for
// the schema document, glossary, report output and worker count so batch
// runs need no repeated flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Workspace is a kontra.yaml manifest.
type Workspace struct {
	Schema   string   `yaml:"schema,omitempty"   json:"schema,omitempty"`
	Glossary string   `yaml:"glossary,omitempty" json:"glossary,omitempty"`
	OutDir   string   `yaml:"out,omitempty"      json:"out,omitempty"`
	Workers  int      `yaml:"workers,omitempty"  json:"workers,omitempty"`
	Paths    []string `yaml:"paths,omitempty"    json:"paths,omitempty"`

	// Root is the absolute path of the directory holding kontra.yaml.
	// Set after loading, not from YAML.
	Root string `yaml:"-" json:"-"`
}

// OutDirOrDefault returns the report directory (default: "reports").
func (w *Workspace) OutDirOrDefault() string {
	if w != nil && w.OutDir != "" {
		return w.OutDir
	}
	return "reports"
}

// LoadFile reads one manifest. Relative paths inside the manifest are
// resolved against its own directory, not the process working dir.
func LoadFile(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace manifest: %w", err)
	}

	var w Workspace
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse workspace manifest: %w", err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	w.Root = root
	w.Schema = w.resolve(w.Schema)
	w.Glossary = w.resolve(w.Glossary)
	w.OutDir = w.resolve(w.OutDir)
	for i, p := range w.Paths {
		w.Paths[i] = w.resolve(p)
	}
	return &w, nil
}

// Discover walks up from startPath to the nearest kontra.yaml. Returns
// nil without error when no manifest exists; callers fall back to flag
// defaults.
func Discover(startPath string) (*Workspace, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		candidate := filepath.Join(dir, "kontra.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (w *Workspace) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.Root, p)
}
