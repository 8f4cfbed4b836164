package lint

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/kvarta-studio/kontra/pkg/contract"
	"github.com/kvarta-studio/kontra/pkg/glossary"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

// Linter validates one contract document at a time. It is stateless
// apart from the compiled schema and optional glossary, so a single
// instance is safe to share across batch workers.
type Linter struct {
	schema   *schema.Schema
	glossary *glossary.Glossary
}

// New builds a linter. The glossary may be nil, which skips glossary
// coverage checks regardless of the contract's policy.
func New(sch *schema.Schema, gl *glossary.Glossary) *Linter {
	return &Linter{schema: sch, glossary: gl}
}

// LintFile reads and validates a single contract file. I/O failures are
// reported as findings on the result, never as a Go error: one broken
// file must not abort a batch.
func (l *Linter) LintFile(path string) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		r := &Result{File: path, Findings: []Finding{
			errorf(CodeDocumentParse, "$", "read contract: %v", err),
		}}
		r.finalize()
		return r
	}
	return l.Lint(path, data)
}

// Lint runs the full pipeline over one document: JSON parse, schema
// conformance, filename convention, constraint expressions, soft rules,
// semantic checks and glossary coverage. Malformed JSON is fatal for
// the file and short-circuits everything else.
func (l *Linter) Lint(path string, data []byte) *Result {
	r := &Result{File: path}

	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		r.Findings = append(r.Findings, errorf(CodeDocumentParse, "$", "malformed JSON: %v", err))
		r.finalize()
		return r
	}

	r.Findings = append(r.Findings, validateSchema(l.schema, doc)...)

	c, err := contract.Decode(data)
	if err != nil {
		// Shape is too far off to type; keep whatever the schema pass
		// said, and make sure at least one error explains the bail-out.
		if r.Errors() == 0 {
			r.Findings = append(r.Findings, errorf(CodeSchemaType, "$",
				"document does not fit the contract shape: %v", err))
		}
		r.finalize()
		return r
	}

	r.Findings = append(r.Findings, checkParameterRanges(c)...)
	r.Findings = append(r.Findings, checkNaming(path, c)...)
	r.Findings = append(r.Findings, checkConstraints(c)...)
	r.Findings = append(r.Findings, checkRules(c)...)
	r.Findings = append(r.Findings, checkSemantics(c)...)
	r.Findings = append(r.Findings, l.checkGlossary(c)...)

	r.finalize()
	return r
}

// checkNaming compares the on-disk filename against the one implied by
// the module identity. It only fires when both identity fields already
// have valid formats, so a malformed module_id is reported once, not
// twice.
func checkNaming(path string, c *contract.Contract) []Finding {
	if !contract.ValidModuleID(c.ModuleID) || !contract.ValidAbbr(c.Abbr) {
		return nil
	}
	base := filepath.Base(path)
	expected := contract.ExpectedFilename(c.ModuleID, c.Abbr)
	if base == expected {
		return nil
	}
	return []Finding{errorf(CodeNaming, "$",
		"filename %q does not match module identity, expected %q", base, expected)}
}

// checkGlossary verifies the module abbreviation and every declared
// glossary term against the loaded glossary. The contract's policy
// picks the severity: off skips, strict escalates to errors, anything
// else (including unset) warns.
func (l *Linter) checkGlossary(c *contract.Contract) []Finding {
	if l.glossary == nil {
		return nil
	}
	policy := c.Policies.GlossaryPolicy
	if policy == "off" {
		return nil
	}

	mk := warnf
	code := CodeGlossaryUnknown
	if policy == "strict" {
		mk = errorf
		code = CodeGlossaryStrict
	}

	var findings []Finding
	if c.Abbr != "" && !l.glossary.Has(c.Abbr) {
		findings = append(findings, mk(code, "$.module_abbr",
			"abbreviation %q is not a glossary term", c.Abbr))
	}
	for i, term := range c.GlossaryTerms {
		if !l.glossary.Has(term) {
			findings = append(findings, mk(code, fmt.Sprintf("$.glossary_terms[%d]", i),
				"term %q is not in the glossary", term))
		}
	}
	return findings
}
