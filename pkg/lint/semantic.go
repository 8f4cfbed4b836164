package lint

import (
	"fmt"
	"regexp"

	"github.com/kvarta-studio/kontra/pkg/contract"
)

var (
	errorCodeRe   = regexp.MustCompile(`^E\d{3}$`)
	warningCodeRe = regexp.MustCompile(`^W\d{3}$`)
	timestampRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\+02:00$`)
)

// checkSemantics runs the lint rules that need the typed contract rather
// than the raw document tree: identity formats, error-code coverage,
// parameter grouping, algorithm data flow, I/O scoping and test-case
// coverage.
func checkSemantics(c *contract.Contract) []Finding {
	var findings []Finding
	findings = append(findings, checkIdentity(c)...)
	findings = append(findings, checkErrorCodes(c)...)
	findings = append(findings, checkParameters(c)...)
	findings = append(findings, checkAlgorithm(c)...)
	findings = append(findings, checkIOContract(c)...)
	findings = append(findings, checkTestCases(c)...)
	return findings
}

func checkIdentity(c *contract.Contract) []Finding {
	var findings []Finding

	if c.ModuleID != "" && !contract.ValidModuleID(c.ModuleID) {
		findings = append(findings, errorf(CodeIdentityFormat, "$.module_id",
			"invalid module_id format: %q", c.ModuleID))
	}
	if c.Abbr != "" && !contract.ValidAbbr(c.Abbr) {
		findings = append(findings, errorf(CodeIdentityFormat, "$.module_abbr",
			"invalid module_abbr format: %q", c.Abbr))
	}
	if c.Version != "" && !contract.ValidVersion(c.Version) {
		findings = append(findings, errorf(CodeIdentityFormat, "$.version",
			"invalid version format: %q", c.Version))
	}
	if c.Name.UK == "" || c.Name.EN == "" {
		findings = append(findings, errorf(CodeIdentityName, "$.module_name",
			"module_name requires non-empty 'uk' and 'en' names"))
	}
	for _, ts := range []struct{ field, value string }{
		{"created_at", c.Schema.CreatedAt},
		{"updated_at", c.Schema.UpdatedAt},
	} {
		if ts.value != "" && !timestampRe.MatchString(ts.value) {
			findings = append(findings, errorf(CodeIdentityFormat, "$._schema."+ts.field,
				"_schema.%s must be ISO8601 with +02:00 offset", ts.field))
		}
	}

	// module_type gates which sections are mandatory: rule-checking
	// modules must declare soft rules.
	if c.Type == contract.TypeRuleset && len(c.Validation.Rules) == 0 {
		findings = append(findings, errorf(CodeRulesEmpty, "$.validation.rules",
			"RULESET contracts require non-empty validation.rules"))
	}

	return findings
}

// checkErrorCodes verifies the error_codes registry (format, level
// consistency, uniqueness) and that every code referenced by constraints
// and validation rules is declared there.
func checkErrorCodes(c *contract.Contract) []Finding {
	var findings []Finding

	declared := make(map[string]bool, len(c.ErrorCodes))
	for i, ec := range c.ErrorCodes {
		path := fmt.Sprintf("$.error_codes[%d]", i)
		isErr := errorCodeRe.MatchString(ec.Code)
		isWarn := warningCodeRe.MatchString(ec.Code)
		if !isErr && !isWarn {
			findings = append(findings, errorf(CodeCodesFormat, path+".code",
				"code %q must match E### or W###", ec.Code))
		}
		if isErr && ec.Level != "error" {
			findings = append(findings, errorf(CodeCodesLevel, path+".level",
				"code %s must have level 'error'", ec.Code))
		}
		if isWarn && ec.Level != "warning" {
			findings = append(findings, errorf(CodeCodesLevel, path+".level",
				"code %s must have level 'warning'", ec.Code))
		}
		if declared[ec.Code] {
			findings = append(findings, errorf(CodeCodesDuplicate, path+".code",
				"duplicate error code %q", ec.Code))
		}
		declared[ec.Code] = true
	}

	for i, con := range c.Constraints {
		path := fmt.Sprintf("$.constraints[%d].error_code", i)
		if con.ErrorCode == "" {
			continue // required-field finding comes from the schema pass
		}
		if !errorCodeRe.MatchString(con.ErrorCode) {
			findings = append(findings, errorf(CodeCodesFormat, path,
				"constraint error_code %q must match E###", con.ErrorCode))
		} else if !declared[con.ErrorCode] {
			findings = append(findings, errorf(CodeCodesUndeclared, path,
				"constraint error_code %s not declared in error_codes", con.ErrorCode))
		}
	}

	for i, rule := range c.Validation.Rules {
		path := fmt.Sprintf("$.validation.rules[%d].error_code", i)
		if rule.ErrorCode == "" {
			continue
		}
		if !warningCodeRe.MatchString(rule.ErrorCode) {
			findings = append(findings, errorf(CodeCodesFormat, path,
				"validation rule error_code %q must match W###", rule.ErrorCode))
		} else if !declared[rule.ErrorCode] {
			findings = append(findings, errorf(CodeCodesUndeclared, path,
				"validation rule error_code %s not declared in error_codes", rule.ErrorCode))
		}
	}

	return findings
}

func checkParameters(c *contract.Contract) []Finding {
	var findings []Finding

	names := sortedParamNames(c)
	for _, name := range names {
		p := c.Parameters[name]
		if p == nil {
			continue
		}
		if p.Type == "enum" && len(p.Enum) == 0 {
			findings = append(findings, errorf(CodeParamEnum, "$.parameters."+name+".enum",
				"parameter %q with type 'enum' must declare enum values", name))
		}
	}

	// Grouping coverage is curation advice, not a blocker.
	grouped := make(map[string]bool)
	for _, members := range c.ParameterGroups {
		for _, m := range members {
			grouped[m] = true
		}
	}
	if len(c.ParameterGroups) > 0 {
		for _, name := range names {
			if !grouped[name] {
				findings = append(findings, warnf(CodeParamGroup, "$.parameters."+name,
					"parameter %q is not in any parameter_group", name))
			}
		}
	}

	return findings
}

// checkAlgorithm verifies step data flow: every used artifact must be an
// input, a parameter or produced by an earlier step, every declared
// output must be produced, and the artifact registry must cover outputs.
func checkAlgorithm(c *contract.Contract) []Finding {
	var findings []Finding
	if len(c.Algorithm.Steps) == 0 {
		return findings // emptiness is the schema pass's concern
	}

	available := make(map[string]bool)
	for _, in := range c.IO.Inputs {
		available[in.ArtifactID] = true
	}
	for name := range c.Parameters {
		available[name] = true
	}

	produced := make(map[string]bool)
	for i, step := range c.Algorithm.Steps {
		for _, artifact := range step.Uses {
			if !available[artifact] && !produced[artifact] {
				findings = append(findings, errorf(CodeAlgoFlow, fmt.Sprintf("$.algorithm.steps[%d].uses", i),
					"step %s uses unknown artifact %q", step.ID, artifact))
			}
		}
		for _, artifact := range step.Produces {
			produced[artifact] = true
		}
	}

	registry := make(map[string]bool, len(c.Algorithm.ArtifactRegistry))
	for _, r := range c.Algorithm.ArtifactRegistry {
		registry[r.ArtifactID] = true
	}
	for _, out := range c.IO.Outputs {
		if !produced[out.ArtifactID] {
			findings = append(findings, errorf(CodeAlgoOutput, "$.io_contract.outputs",
				"output %q is not produced by any step", out.ArtifactID))
		}
		if !registry[out.ArtifactID] {
			findings = append(findings, errorf(CodeAlgoRegistry, "$.algorithm.artifact_registry",
				"output %q is missing from artifact_registry", out.ArtifactID))
		}
	}

	return findings
}

func checkIOContract(c *contract.Contract) []Finding {
	var findings []Finding
	if len(c.IO.Inputs) == 0 {
		findings = append(findings, errorf(CodeIOEmpty, "$.io_contract.inputs",
			"io_contract.inputs must be non-empty"))
	}
	if len(c.IO.Outputs) == 0 {
		findings = append(findings, errorf(CodeIOEmpty, "$.io_contract.outputs",
			"io_contract.outputs must be non-empty"))
	}
	for i, out := range c.IO.Outputs {
		if out.Scope != "" && out.Scope != "public" {
			findings = append(findings, errorf(CodeIOScope, fmt.Sprintf("$.io_contract.outputs[%d].scope", i),
				"output %q must have scope 'public'", out.ArtifactID))
		}
	}
	return findings
}

func checkTestCases(c *contract.Contract) []Finding {
	var findings []Finding

	if len(c.TestCases) < 3 {
		findings = append(findings, errorf(CodeTestsCoverage, "$.test_cases",
			"test_cases must declare at least 3 cases, got %d", len(c.TestCases)))
	}

	types := make(map[string]bool)
	for _, tc := range c.TestCases {
		types[tc.Type] = true
	}
	if len(c.TestCases) > 0 {
		if !types["positive"] {
			findings = append(findings, errorf(CodeTestsCoverage, "$.test_cases",
				"test_cases must include at least one 'positive' case"))
		}
		if !types["negative"] {
			findings = append(findings, errorf(CodeTestsCoverage, "$.test_cases",
				"test_cases must include at least one 'negative' case"))
		}
		if !types["warning"] {
			findings = append(findings, warnf(CodeTestsWarningCase, "$.test_cases",
				"test_cases should include a 'warning' case"))
		}
	}

	return findings
}
