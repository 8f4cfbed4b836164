// Package scaffold generates starter contract documents that already
// satisfy every validation pass, so module authors edit a passing file
// instead of fighting an empty one.
package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kvarta-studio/kontra/pkg/contract"
)

// Params identifies the module to scaffold.
type Params struct {
	ModuleID string
	Abbr     string
	Type     string // PROCESS, RULESET or BRIDGE
	NameUK   string
	NameEN   string
}

func (p Params) validate() error {
	if !contract.ValidModuleID(p.ModuleID) {
		return fmt.Errorf("invalid module_id %q", p.ModuleID)
	}
	if !contract.ValidAbbr(p.Abbr) {
		return fmt.Errorf("invalid module_abbr %q", p.Abbr)
	}
	switch p.Type {
	case contract.TypeProcess, contract.TypeRuleset, contract.TypeBridge:
	default:
		return fmt.Errorf("invalid module_type %q", p.Type)
	}
	return nil
}

// New builds a minimal passing contract for the given identity.
func New(p Params) (*contract.Contract, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.NameUK == "" {
		p.NameUK = "Новий модуль"
	}
	if p.NameEN == "" {
		p.NameEN = "New module"
	}
	now := time.Now().In(time.FixedZone("", 2*3600)).Format("2006-01-02T15:04:05-07:00")
	def := 0.5

	c := &contract.Contract{
		ModuleID:    p.ModuleID,
		Abbr:        p.Abbr,
		Type:        p.Type,
		Name:        contract.LocalizedName{UK: p.NameUK, EN: p.NameEN},
		Version:     "0.1.0",
		Description: "Describe what this module does.",
		IO: contract.IOContract{
			Inputs:  []contract.Artifact{{ArtifactID: "source", Type: "json", Scope: "public"}},
			Outputs: []contract.Artifact{{ArtifactID: "result", Type: "json", Scope: "public"}},
		},
		Parameters: map[string]*contract.Parameter{
			"intensity": {Type: "float", Unit: "ratio", Description: "Effect intensity", Min: f(0), Max: f(1), Default: def},
		},
		ParameterGroups: map[string][]string{"core": {"intensity"}},
		Constraints: []contract.Constraint{
			{Expr: "intensity >= 0 && intensity <= 1", ErrorCode: "E001", Description: "intensity stays in range"},
		},
		Validation: contract.Validation{Rules: []contract.Rule{
			{Name: "intensity_headroom", Condition: "intensity <= 0.9", Severity: "warning",
				Message: "intensity close to the ceiling", ErrorCode: "W001"},
		}},
		ErrorCodes: []contract.ErrorCode{
			{Code: "E001", Level: "error", Title: "Intensity out of range", Message: "intensity must be within [0, 1]"},
			{Code: "W001", Level: "warning", Title: "Intensity headroom", Message: "intensity above 0.9"},
		},
		Algorithm: contract.Algorithm{
			Steps: []contract.Step{
				{ID: "S001", Name: "apply", Type: "transform", Uses: []string{"source", "intensity"},
					Produces: []string{"result"}, Description: "Apply the effect to the source artifact."},
			},
			ArtifactRegistry: []contract.RegistryArtifact{{ArtifactID: "result", Type: "json", Scope: "public"}},
		},
		Relations: contract.Relations{DependsOn: []string{}, Influences: []string{}, ConflictsWith: []string{}},
		TestCases: []contract.TestCase{
			{ID: "TC-1", Type: "positive", Name: "nominal intensity",
				Input: map[string]any{"intensity": 0.5}, Expected: map[string]any{"ok": true}},
			{ID: "TC-2", Type: "negative", Name: "intensity out of range",
				Input: map[string]any{"intensity": 1.5}, Expected: map[string]any{"ok": false}},
			{ID: "TC-3", Type: "warning", Name: "intensity near ceiling",
				Input: map[string]any{"intensity": 0.95}, Expected: map[string]any{"ok": true}},
		},
		Policies: contract.Policies{UnitPolicy: "strict", ConstraintsDSL: "stageA-v1",
			GlossaryPolicy: "warn", I18NPolicy: "uk-en"},
	}
	c.Schema = contract.SchemaInfo{
		Name:                "contract_schema_stageA",
		Version:             "4.0.0",
		Stage:               "A",
		MaturityStage:       "draft",
		UnderpaintingIntent: "structure_only",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return c, nil
}

// WriteFile scaffolds a contract into dir under its canonical filename.
// Refuses to overwrite an existing file.
func WriteFile(dir string, p Params) (string, error) {
	c, err := New(p)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, contract.ExpectedFilename(c.ModuleID, c.Abbr))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode contract: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write contract: %w", err)
	}
	return path, nil
}

func f(v float64) *float64 { return &v }
