package lint

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kvarta-studio/kontra/pkg/glossary"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

const validContract = `{
  "_schema": {
    "name": "contract_schema_stageA",
    "version": "4.0.0",
    "stage": "A",
    "maturity_stage": "stable",
    "static_frame_only": true,
    "underpainting_intent": "structure_only",
    "created_at": "2025-06-01T10:00:00+02:00",
    "updated_at": "2025-06-10T10:00:00+02:00"
  },
  "module_id": "A-IV-7",
  "module_abbr": "ECU",
  "module_type": "PROCESS",
  "module_name": {"uk": "Кадрування великим планом", "en": "Extreme close-up framing"},
  "version": "1.2.0",
  "description": "Plans the crop window for extreme close-up shots.",
  "io_contract": {
    "inputs": [{"artifact_id": "src_image", "type": "raster", "scope": "public"}],
    "outputs": [{"artifact_id": "frame_plan", "type": "json", "scope": "public"}]
  },
  "parameters": {
    "framing_tightness": {"type": "float", "unit": "ratio", "description": "Crop tightness", "min": 0, "max": 1, "default": 0.5},
    "ecu_enabled": {"type": "boolean", "unit": "none", "description": "Enable extreme close-up", "default": false}
  },
  "parameter_groups": {"core": ["framing_tightness", "ecu_enabled"]},
  "constraints": [
    {"expr": "ecu_enabled => framing_tightness >= 0.25", "error_code": "E001", "description": "ECU needs a tight frame"}
  ],
  "validation": {
    "rules": [
      {"name": "tightness_headroom", "condition": "framing_tightness <= 0.9", "severity": "warning", "message": "leave headroom for reframing", "error_code": "W001"}
    ]
  },
  "error_codes": [
    {"code": "E001", "level": "error", "title": "Frame too loose", "message": "ECU requires framing_tightness >= 0.25"},
    {"code": "W001", "level": "warning", "title": "Tightness headroom", "message": "framing_tightness above 0.9"}
  ],
  "algorithm": {
    "steps": [
      {"id": "S001", "name": "plan_frame", "type": "transform", "uses": ["src_image", "framing_tightness"], "produces": ["frame_plan"], "description": "Derive the crop plan from the source image."}
    ],
    "artifact_registry": [{"artifact_id": "frame_plan", "type": "json", "scope": "public"}]
  },
  "relations": {"depends_on": [], "influences": [], "conflicts_with": []},
  "test_cases": [
    {"id": "TC-1", "type": "positive", "name": "ecu on, tight frame", "input": {"ecu_enabled": true, "framing_tightness": 0.4}, "expected": {"ok": true}},
    {"id": "TC-2", "type": "negative", "name": "ecu on, loose frame", "input": {"ecu_enabled": true, "framing_tightness": 0.1}, "expected": {"ok": false}},
    {"id": "TC-3", "type": "warning", "name": "very tight frame", "input": {"ecu_enabled": false, "framing_tightness": 0.95}, "expected": {"ok": true}}
  ],
  "policies": {"unit_policy": "strict", "constraints_dsl": "stageA-v1", "glossary_policy": "warn", "i18n_policy": "uk-en"}
}`

const validFilename = "A-IV-7_ECU_contract_stageA_FINAL.json"

func newTestLinter(t *testing.T) *Linter {
	t.Helper()
	sch, err := schema.Builtin()
	if err != nil {
		t.Fatalf("builtin schema: %v", err)
	}
	return New(sch, nil)
}

// mutate decodes the valid fixture, applies fn to the document tree and
// re-encodes it.
func mutate(t *testing.T, fn func(m map[string]any)) []byte {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(validContract), &m); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	fn(m)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("re-encode fixture: %v", err)
	}
	return data
}

func hasCode(r *Result, code string) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func codes(r *Result) string {
	var out []string
	for _, f := range r.Findings {
		out = append(out, f.String())
	}
	return strings.Join(out, "\n")
}

func TestLintValidContract(t *testing.T) {
	l := newTestLinter(t)
	r := l.Lint(validFilename, []byte(validContract))
	if !r.Passed {
		t.Fatalf("expected pass, got findings:\n%s", codes(r))
	}
	if r.Score != 100 {
		t.Errorf("score = %d, want 100", r.Score)
	}
}

func TestLintMalformedJSON(t *testing.T) {
	l := newTestLinter(t)
	r := l.Lint("broken.json", []byte(`{"module_id": `))
	if r.Passed {
		t.Fatal("expected fail")
	}
	if len(r.Findings) != 1 || r.Findings[0].Code != CodeDocumentParse {
		t.Fatalf("expected single %s finding, got:\n%s", CodeDocumentParse, codes(r))
	}
	if r.Score != 40 {
		t.Errorf("score = %d, want 40", r.Score)
	}
}

func TestLintMissingRequiredField(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) { delete(m, "version") })
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeSchemaRequired) {
		t.Fatalf("expected %s, got:\n%s", CodeSchemaRequired, codes(r))
	}
	if r.Passed {
		t.Error("expected fail")
	}
}

func TestLintUnknownFieldWarns(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) { m["x_custom"] = "extension" })
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeSchemaUnknown) {
		t.Fatalf("expected %s, got:\n%s", CodeSchemaUnknown, codes(r))
	}
	if !r.Passed {
		t.Errorf("unknown fields must not fail a contract:\n%s", codes(r))
	}
	if r.Score != 95 {
		t.Errorf("score = %d, want 95", r.Score)
	}
}

// Identity formats must hold at the schema layer too, not only in the
// semantic pass, so external consumers of the exported schema get the
// same verdicts.
func TestLintIdentityPatternViaSchema(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) { m["module_abbr"] = "ecu" })
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeSchemaConstraint) {
		t.Fatalf("expected %s for lowercase module_abbr, got:\n%s", CodeSchemaConstraint, codes(r))
	}
	if !hasCode(r, CodeIdentityFormat) {
		t.Fatalf("expected %s, got:\n%s", CodeIdentityFormat, codes(r))
	}
}

func TestLintSchemaEnvelopePinned(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		m["_schema"].(map[string]any)["name"] = "contract_schema_stageB"
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeSchemaEnum) {
		t.Fatalf("expected %s for wrong _schema.name, got:\n%s", CodeSchemaEnum, codes(r))
	}
	if r.Passed {
		t.Error("expected fail")
	}
}

func TestLintFilenameMismatch(t *testing.T) {
	l := newTestLinter(t)
	r := l.Lint("wrong_name.json", []byte(validContract))
	if !hasCode(r, CodeNaming) {
		t.Fatalf("expected %s, got:\n%s", CodeNaming, codes(r))
	}
}

func TestLintConstraintParseError(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		cons := m["constraints"].([]any)
		cons[0].(map[string]any)["expr"] = "ecu_enabled =>"
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeExprParse) {
		t.Fatalf("expected %s, got:\n%s", CodeExprParse, codes(r))
	}
	// Unparseable constraints are skipped, never evaluated.
	if hasCode(r, CodeExprEval) || hasCode(r, CodeTestConstraint) {
		t.Errorf("parse failure must skip evaluation:\n%s", codes(r))
	}
}

func TestLintConstraintUnboundParameter(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		cons := m["constraints"].([]any)
		cons[0].(map[string]any)["expr"] = "zoom_level > 2"
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeExprUnbound) {
		t.Fatalf("expected %s, got:\n%s", CodeExprUnbound, codes(r))
	}
}

func TestLintPositiveCaseViolatesConstraint(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		tc := m["test_cases"].([]any)[0].(map[string]any)
		tc["input"].(map[string]any)["framing_tightness"] = 0.1
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeTestConstraint) {
		t.Fatalf("expected %s, got:\n%s", CodeTestConstraint, codes(r))
	}
}

func TestLintNegativeCaseViolatesNothing(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		tc := m["test_cases"].([]any)[1].(map[string]any)
		tc["input"].(map[string]any)["framing_tightness"] = 0.8
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeTestNegative) {
		t.Fatalf("expected %s, got:\n%s", CodeTestNegative, codes(r))
	}
	if !r.Passed {
		t.Errorf("negative-case gap is a warning, not an error:\n%s", codes(r))
	}
}

func TestLintUndeclaredErrorCode(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		cons := m["constraints"].([]any)
		cons[0].(map[string]any)["error_code"] = "E999"
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeCodesUndeclared) {
		t.Fatalf("expected %s, got:\n%s", CodeCodesUndeclared, codes(r))
	}
}

func TestLintAlgorithmDataFlow(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		steps := m["algorithm"].(map[string]any)["steps"].([]any)
		steps[0].(map[string]any)["uses"] = []any{"ghost_artifact"}
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeAlgoFlow) {
		t.Fatalf("expected %s, got:\n%s", CodeAlgoFlow, codes(r))
	}
}

func TestLintGlossaryPolicy(t *testing.T) {
	sch, err := schema.Builtin()
	if err != nil {
		t.Fatalf("builtin schema: %v", err)
	}
	gl := &glossary.Glossary{Terms: map[string]glossary.Entry{
		"ECU": {Definition: "extreme close-up"},
	}}
	l := New(sch, gl)

	r := l.Lint(validFilename, []byte(validContract))
	if hasCode(r, CodeGlossaryUnknown) || hasCode(r, CodeGlossaryStrict) {
		t.Fatalf("ECU is in the glossary:\n%s", codes(r))
	}

	data := mutate(t, func(m map[string]any) {
		m["glossary_terms"] = []any{"BOKEH"}
	})
	r = l.Lint(validFilename, data)
	if !hasCode(r, CodeGlossaryUnknown) {
		t.Fatalf("expected %s for unknown term, got:\n%s", CodeGlossaryUnknown, codes(r))
	}
	if !r.Passed {
		t.Error("glossary_policy 'warn' must not fail the contract")
	}

	data = mutate(t, func(m map[string]any) {
		m["glossary_terms"] = []any{"BOKEH"}
		m["policies"].(map[string]any)["glossary_policy"] = "strict"
	})
	r = l.Lint(validFilename, data)
	if !hasCode(r, CodeGlossaryStrict) {
		t.Fatalf("expected %s under strict policy, got:\n%s", CodeGlossaryStrict, codes(r))
	}
	if r.Passed {
		t.Error("glossary_policy 'strict' must fail on unknown terms")
	}

	data = mutate(t, func(m map[string]any) {
		m["glossary_terms"] = []any{"BOKEH"}
		m["policies"].(map[string]any)["glossary_policy"] = "off"
	})
	r = l.Lint(validFilename, data)
	if hasCode(r, CodeGlossaryUnknown) || hasCode(r, CodeGlossaryStrict) {
		t.Errorf("glossary_policy 'off' must skip the check:\n%s", codes(r))
	}
}

func TestLintRulesetRequiresRules(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		m["module_type"] = "RULESET"
		m["validation"].(map[string]any)["rules"] = []any{}
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeRulesEmpty) {
		t.Fatalf("expected %s, got:\n%s", CodeRulesEmpty, codes(r))
	}
}

func TestLintParameterRange(t *testing.T) {
	l := newTestLinter(t)
	data := mutate(t, func(m map[string]any) {
		p := m["parameters"].(map[string]any)["framing_tightness"].(map[string]any)
		p["min"] = 0.9
		p["max"] = 0.1
	})
	r := l.Lint(validFilename, data)
	if !hasCode(r, CodeSchemaRange) {
		t.Fatalf("expected %s, got:\n%s", CodeSchemaRange, codes(r))
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		errors, warnings, want int
	}{
		{0, 0, 100},
		{0, 1, 95},
		{0, 3, 85},
		{0, 10, 70},
		{1, 0, 40},
		{2, 5, 30},
		{6, 0, 0},
	}
	for _, c := range cases {
		if got := score(c.errors, c.warnings); got != c.want {
			t.Errorf("score(%d, %d) = %d, want %d", c.errors, c.warnings, got, c.want)
		}
	}
}
