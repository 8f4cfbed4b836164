// Package lint implements the per-file contract validation pipeline:
// schema conformance, naming convention, constraint expressions, soft
// validation rules and glossary coverage, all reported as typed findings.
package lint

import "fmt"

// Severity classifies a finding. Warnings never fail a contract.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes. One code per field-path class so reports are
// deterministic and automation can gate on specific classes.
const (
	// File-level
	CodeDocumentParse = "E-DOC-PARSE" // malformed JSON, fatal for the file
	CodeNaming        = "E-NAMING"    // filename does not match module identity
	CodeDupIdentity   = "E-DUP-IDENTITY"

	// Schema conformance
	CodeSchemaRequired   = "E-SCHEMA-REQUIRED"
	CodeSchemaType       = "E-SCHEMA-TYPE"
	CodeSchemaEnum       = "E-SCHEMA-ENUM"
	CodeSchemaConstraint = "E-SCHEMA-CONSTRAINT"
	CodeSchemaRange      = "E-SCHEMA-RANGE"
	CodeSchemaUnknown    = "W-SCHEMA-UNKNOWN"

	// Constraint expressions
	CodeExprParse      = "E-EXPR-PARSE"
	CodeExprUnbound    = "E-EXPR-UNBOUND"
	CodeExprEval       = "E-EXPR-EVAL"
	CodeTestConstraint = "E-TEST-CONSTRAINT"
	CodeTestNegative   = "W-TEST-NEGATIVE"

	// Soft validation rules
	CodeRuleParse   = "W-RULE-PARSE"
	CodeRuleUnbound = "W-RULE-UNBOUND"
	CodeRulesEmpty  = "E-RULES-EMPTY"

	// Glossary
	CodeGlossaryUnknown = "W-GLOSSARY-UNKNOWN"
	CodeGlossaryStrict  = "E-GLOSSARY-UNKNOWN"

	// Semantic lint
	CodeIdentityFormat   = "E-IDENTITY-FORMAT"
	CodeIdentityName     = "E-IDENTITY-NAME"
	CodeCodesFormat      = "E-CODES-FORMAT"
	CodeCodesDuplicate   = "E-CODES-DUPLICATE"
	CodeCodesUndeclared  = "E-CODES-UNDECLARED"
	CodeCodesLevel       = "E-CODES-LEVEL"
	CodeParamEnum        = "E-PARAM-ENUM"
	CodeParamGroup       = "W-PARAM-GROUP"
	CodeAlgoFlow         = "E-ALGO-FLOW"
	CodeAlgoOutput       = "E-ALGO-OUTPUT"
	CodeAlgoRegistry     = "E-ALGO-REGISTRY"
	CodeIOScope          = "E-IO-SCOPE"
	CodeIOEmpty          = "E-IO-EMPTY"
	CodeTestsCoverage    = "E-TESTS-COVERAGE"
	CodeTestsWarningCase = "W-TESTS-WARNING-CASE"
)

// Finding is one immutable diagnostic: severity, code, message and the
// field path it refers to. File is filled in by the batch runner.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
	File     string   `json:"file,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", f.Severity, f.Code, f.Message, f.Path)
}

// NewFinding builds a finding for checks that live outside this package,
// such as the batch runner's cross-file passes.
func NewFinding(sev Severity, code, path, format string, args ...any) Finding {
	return Finding{Severity: sev, Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

// errorf builds an error-severity finding.
func errorf(code, path, format string, args ...any) Finding {
	return Finding{Severity: SeverityError, Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

// warnf builds a warning-severity finding.
func warnf(code, path, format string, args ...any) Finding {
	return Finding{Severity: SeverityWarning, Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Result is one file's validation outcome: the ordered findings plus the
// pass/fail verdict. Passed iff zero error-severity findings.
type Result struct {
	File     string    `json:"file_path"`
	Passed   bool      `json:"passed"`
	Score    int       `json:"score"`
	Findings []Finding `json:"findings"`
}

// Errors counts error-severity findings.
func (r *Result) Errors() int { return r.count(SeverityError) }

// Warnings counts warning-severity findings.
func (r *Result) Warnings() int { return r.count(SeverityWarning) }

func (r *Result) count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// AddFinding appends findings discovered outside the per-file pipeline,
// such as cross-file identity checks, and refreshes the verdict.
func (r *Result) AddFinding(fs ...Finding) {
	r.Findings = append(r.Findings, fs...)
	r.finalize()
}

// finalize stamps the verdict and score once all findings are collected.
func (r *Result) finalize() {
	errs := r.Errors()
	r.Passed = errs == 0
	r.Score = score(errs, r.Warnings())
}

// score maps finding counts to a 0-100 quality score: any error caps the
// score at 50 minus 10 per error; warnings shave 5 each off 100 with a
// floor of 70.
func score(errors, warnings int) int {
	if errors > 0 {
		s := 50 - errors*10
		if s < 0 {
			s = 0
		}
		return s
	}
	s := 100 - warnings*5
	if s < 70 {
		s = 70
	}
	return s
}
