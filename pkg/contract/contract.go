// Package contract defines the Go struct types for Stage A contract
// documents and provides JSON loading.
package contract

import (
	"encoding/json"
	"fmt"
	"os"
)

// Module type enum values.
const (
	TypeProcess = "PROCESS"
	TypeRuleset = "RULESET"
	TypeBridge  = "BRIDGE"
)

// Contract is the top-level document declaring one pipeline module:
// its identity, I/O surface, parameters, hard constraints, soft
// validation rules, algorithm outline and test cases. The engine
// validates contracts; it never executes the declared algorithm.
type Contract struct {
	// The identity patterns (ModuleIDPattern etc.) contain backslash
	// escapes a struct tag cannot hold, so schema.Generate stamps them
	// onto the reflected definition instead of a pattern= tag here.
	Schema          SchemaInfo            `json:"_schema" jsonschema:"required"`
	ModuleID        string                `json:"module_id" jsonschema:"required"`
	Abbr            string                `json:"module_abbr" jsonschema:"required"`
	Type            string                `json:"module_type" jsonschema:"required,enum=PROCESS,enum=RULESET,enum=BRIDGE"`
	Name            LocalizedName         `json:"module_name" jsonschema:"required"`
	Version         string                `json:"version" jsonschema:"required"`
	Description     string                `json:"description" jsonschema:"required"`
	IO              IOContract            `json:"io_contract" jsonschema:"required"`
	Parameters      map[string]*Parameter `json:"parameters" jsonschema:"required"`
	ParameterGroups map[string][]string   `json:"parameter_groups" jsonschema:"required"`
	Constraints     []Constraint          `json:"constraints" jsonschema:"required"`
	Validation      Validation            `json:"validation" jsonschema:"required"`
	ErrorCodes      []ErrorCode           `json:"error_codes" jsonschema:"required"`
	Algorithm       Algorithm             `json:"algorithm" jsonschema:"required"`
	Relations       Relations             `json:"relations" jsonschema:"required"`
	TestCases       []TestCase            `json:"test_cases" jsonschema:"required"`
	Policies        Policies              `json:"policies" jsonschema:"required"`
	GlossaryTerms   []string              `json:"glossary_terms,omitempty"`
}

// SchemaInfo is the contract's self-declared schema envelope. It is
// independent of the schema document the engine validates against.
type SchemaInfo struct {
	Name                string `json:"name" jsonschema:"required,enum=contract_schema_stageA"`
	Version             string `json:"version" jsonschema:"required"`
	Stage               string `json:"stage" jsonschema:"required,enum=A"`
	MaturityStage       string `json:"maturity_stage" jsonschema:"required,enum=pilot,enum=draft,enum=stable"`
	StaticFrameOnly     bool   `json:"static_frame_only"`
	UnderpaintingIntent string `json:"underpainting_intent" jsonschema:"required,enum=structure_only,enum=structure_plus_masks,enum=structure_plus_metadata"`
	CreatedAt           string `json:"created_at" jsonschema:"required"`
	UpdatedAt           string `json:"updated_at" jsonschema:"required"`
}

// LocalizedName carries the bilingual module name.
type LocalizedName struct {
	UK string `json:"uk" jsonschema:"required"`
	EN string `json:"en" jsonschema:"required"`
}

// IOContract declares the module's named, typed inputs and outputs.
type IOContract struct {
	Inputs  []Artifact `json:"inputs" jsonschema:"required"`
	Outputs []Artifact `json:"outputs" jsonschema:"required"`
}

// Artifact is one named input or output with its type, unit and scope.
type Artifact struct {
	ArtifactID  string `json:"artifact_id" jsonschema:"required"`
	Type        string `json:"type" jsonschema:"required"`
	Scope       string `json:"scope" jsonschema:"required"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

// Parameter declares one tunable value with its type, unit and range.
type Parameter struct {
	Type        string   `json:"type" jsonschema:"required,enum=float,enum=int,enum=boolean,enum=enum,enum=string"`
	Unit        string   `json:"unit" jsonschema:"required"`
	Description string   `json:"description" jsonschema:"required"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Constraint is one hard rule: a DSL expression that must hold, tied to
// a declared error code.
type Constraint struct {
	Expr        string `json:"expr" jsonschema:"required"`
	ErrorCode   string `json:"error_code" jsonschema:"required"`
	Description string `json:"description,omitempty"`
}

// Validation groups the soft rules whose violation warns but never fails
// a contract.
type Validation struct {
	Rules []Rule `json:"rules"`
}

// Rule is one soft validation rule.
type Rule struct {
	Name      string `json:"name" jsonschema:"required"`
	Condition string `json:"condition" jsonschema:"required"`
	Severity  string `json:"severity" jsonschema:"required,enum=warning"`
	Message   string `json:"message" jsonschema:"required"`
	ErrorCode string `json:"error_code" jsonschema:"required"`
}

// ErrorCode registers one diagnostic code a module may raise.
type ErrorCode struct {
	Code    string `json:"code" jsonschema:"required"`
	Level   string `json:"level" jsonschema:"required,enum=error,enum=warning"`
	Title   string `json:"title" jsonschema:"required"`
	Message string `json:"message" jsonschema:"required"`
}

// Algorithm is the ordered step outline plus the registry of artifacts
// the steps produce.
type Algorithm struct {
	Steps            []Step             `json:"steps" jsonschema:"required"`
	ArtifactRegistry []RegistryArtifact `json:"artifact_registry,omitempty"`
}

// Step is one algorithm step with its data-flow declaration.
type Step struct {
	ID          string   `json:"id" jsonschema:"required,pattern=^S[0-9]{3}$"`
	Name        string   `json:"name" jsonschema:"required"`
	Type        string   `json:"type" jsonschema:"required,enum=load,enum=transform,enum=filter,enum=validate,enum=normalize,enum=classify,enum=export,enum=validate_module"`
	Uses        []string `json:"uses" jsonschema:"required"`
	Produces    []string `json:"produces" jsonschema:"required"`
	Description string   `json:"description" jsonschema:"required"`
}

// RegistryArtifact is one artifact registry entry.
type RegistryArtifact struct {
	ArtifactID string `json:"artifact_id" jsonschema:"required"`
	Type       string `json:"type,omitempty"`
	Scope      string `json:"scope,omitempty"`
}

// Relations declares inter-module dependencies.
type Relations struct {
	DependsOn     []string `json:"depends_on"`
	Influences    []string `json:"influences"`
	ConflictsWith []string `json:"conflicts_with"`
}

// TestCase is one declared input/expected-output pair. The engine uses
// its input binding to exercise constraint expressions.
type TestCase struct {
	ID       string         `json:"id" jsonschema:"required"`
	Type     string         `json:"type" jsonschema:"required,enum=positive,enum=negative,enum=warning"`
	Name     string         `json:"name" jsonschema:"required"`
	Input    map[string]any `json:"input" jsonschema:"required"`
	Expected map[string]any `json:"expected" jsonschema:"required"`
}

// Policies declares contract-wide policy switches.
type Policies struct {
	UnitPolicy     string `json:"unit_policy" jsonschema:"required,enum=strict"`
	ConstraintsDSL string `json:"constraints_dsl" jsonschema:"required"`
	GlossaryPolicy string `json:"glossary_policy" jsonschema:"required,enum=off,enum=warn,enum=strict"`
	I18NPolicy     string `json:"i18n_policy" jsonschema:"required"`
}

// Load reads and decodes a contract file. A syntax error here is fatal
// for the file's whole validation pipeline; structural problems beyond
// syntax are the schema validator's concern, so unknown fields pass
// through undisturbed.
func Load(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses contract bytes.
func Decode(data []byte) (*Contract, error) {
	var c Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode contract: %w", err)
	}
	return &c, nil
}
