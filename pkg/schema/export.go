package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/kvarta-studio/kontra/pkg/contract"
)

// Generate produces a JSON Schema Draft 2020-12 document from the Go
// Contract struct using invopop/jsonschema. Unknown fields fail the
// generated schema's additionalProperties check, which the linter
// downgrades to a warning so forward-compatible extensions stay usable.
func Generate() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&contract.Contract{})
	s.ID = "https://github.com/kvarta-studio/kontra/schemas/contract-stagea-v4.json"
	s.Title = "Stage A Module Contract v4"
	s.Description = "Schema for Stage A contract JSON documents (Draft 2020-12)"

	// The identity patterns contain backslashes, which a struct tag
	// string cannot carry (the whole jsonschema tag would be dropped),
	// so they are set on the reflected definition here.
	def, ok := s.Definitions["Contract"]
	if !ok {
		return nil, fmt.Errorf("reflected schema has no Contract definition")
	}
	for _, p := range []struct{ name, pattern string }{
		{"module_id", contract.ModuleIDPattern},
		{"module_abbr", contract.AbbrPattern},
		{"version", contract.VersionPattern},
	} {
		prop, ok := def.Properties.Get(p.name)
		if !ok {
			return nil, fmt.Errorf("reflected schema lost property %q", p.name)
		}
		prop.Pattern = p.pattern
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
