// Package schema loads and compiles the versioned JSON Schema contracts
// are validated against. The schema is immutable once loaded for a run;
// when no schema file is supplied, a built-in schema generated from the
// Go contract types takes its place.
package schema

import (
	"bytes"
	"fmt"
	"os"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled structural contract plus its declared version.
type Schema struct {
	Compiled *sjsonschema.Schema
	Version  string
	Source   string // file path or "builtin"
}

// LoadFile reads, parses and compiles a schema document (draft 2020-12).
// Any failure here is fatal to the whole batch: every validation depends
// on the schema.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := FromBytes(data, path)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// FromBytes compiles schema bytes under the given resource name.
func FromBytes(data []byte, name string) (*Schema, error) {
	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Schema{
		Compiled: compiled,
		Version:  documentVersion(doc),
		Source:   name,
	}, nil
}

// Builtin compiles the schema generated from the Go contract types.
func Builtin() (*Schema, error) {
	data, err := Generate()
	if err != nil {
		return nil, err
	}
	s, err := FromBytes(data, "contract_schema_builtin.json")
	if err != nil {
		return nil, err
	}
	s.Source = "builtin"
	return s, nil
}

// documentVersion extracts a version marker from the schema document,
// preferring an explicit "version" field over "$id".
func documentVersion(doc any) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := m["version"].(string); ok && v != "" {
		return v
	}
	if id, ok := m["$id"].(string); ok {
		return id
	}
	return ""
}
