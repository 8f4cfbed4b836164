package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kvarta-studio/kontra/pkg/glossary"
	"github.com/kvarta-studio/kontra/pkg/lint"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

const fixtureContract = `{
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
    {"expr": "ecu_enabled => framing_tightness >= 0.25", "error_code": "E001"}
  ],
  "validation": {
    "rules": [
      {"name": "tightness_headroom", "condition": "framing_tightness <= 0.9", "severity": "warning", "message": "leave headroom", "error_code": "W001"}
    ]
  },
  "error_codes": [
    {"code": "E001", "level": "error", "title": "Frame too loose", "message": "ECU requires framing_tightness >= 0.25"},
    {"code": "W001", "level": "warning", "title": "Tightness headroom", "message": "framing_tightness above 0.9"}
  ],
  "algorithm": {
    "steps": [
      {"id": "S001", "name": "plan_frame", "type": "transform", "uses": ["src_image", "framing_tightness"], "produces": ["frame_plan"], "description": "Derive the crop plan."}
    ],
    "artifact_registry": [{"artifact_id": "frame_plan", "type": "json", "scope": "public"}]
  },
  "relations": {"depends_on": [], "influences": [], "conflicts_with": []},
  "test_cases": [
    {"id": "TC-1", "type": "positive", "name": "tight", "input": {"ecu_enabled": true, "framing_tightness": 0.4}, "expected": {"ok": true}},
    {"id": "TC-2", "type": "negative", "name": "loose", "input": {"ecu_enabled": true, "framing_tightness": 0.1}, "expected": {"ok": false}},
    {"id": "TC-3", "type": "warning", "name": "very tight", "input": {"ecu_enabled": false, "framing_tightness": 0.95}, "expected": {"ok": true}}
  ],
  "policies": {"unit_policy": "strict", "constraints_dsl": "stageA-v1", "glossary_policy": "off", "i18n_policy": "uk-en"}
}`

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	sch, err := schema.Builtin()
	if err != nil {
		t.Fatalf("builtin schema: %v", err)
	}
	var gl *glossary.Glossary
	return NewRunner(lint.New(sch, gl), sch, opts)
}

func writeContract(t *testing.T, dir, name, moduleID, abbr string) string {
	t.Helper()
	doc := strings.ReplaceAll(fixtureContract, "A-IV-7", moduleID)
	doc = strings.ReplaceAll(doc, "ECU", abbr)
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func hasCode(rs *lint.Result, code string) bool {
	for _, f := range rs.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func TestRunnerAggregates(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "A-IV-7_ECU_contract_stageA_FINAL.json", "A-IV-7", "ECU")
	broken := filepath.Join(dir, "A-IV-8_XYZ_contract_stageA_FINAL.json")
	if err := os.WriteFile(broken, []byte(`{"module_id": `), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, Options{Workers: 4})
	rep, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Summary.Total != 2 || rep.Summary.Passed != 1 || rep.Summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 2 total / 1 passed / 1 failed", rep.Summary)
	}
	if rep.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", rep.ExitCode())
	}
	for i := 1; i < len(rep.Results); i++ {
		if rep.Results[i-1].File >= rep.Results[i].File {
			t.Error("results not sorted by path")
		}
	}
	for _, res := range rep.Results {
		for _, f := range res.Findings {
			if f.File != res.File {
				t.Errorf("finding missing file attribution: %+v", f)
			}
		}
	}
}

func TestRunnerDuplicateIdentity(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "A-IV-7_ECU_contract_stageA_FINAL.json", "A-IV-7", "ECU")
	writeContract(t, dir, "copies/A-IV-7_ECU_contract_stageA_FINAL.json", "A-IV-7", "ECU")

	r := newTestRunner(t, Options{Workers: 2})
	rep, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Summary.Total != 2 {
		t.Fatalf("total = %d, want 2", rep.Summary.Total)
	}
	for _, res := range rep.Results {
		if !hasCode(res, lint.CodeDupIdentity) {
			t.Errorf("%s: expected %s on both sides of the collision", res.File, lint.CodeDupIdentity)
		}
		if res.Passed {
			t.Errorf("%s: duplicate identity must fail the file", res.File)
		}
	}
}

func TestRunnerFilter(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "A-IV-7_ECU_contract_stageA_FINAL.json", "A-IV-7", "ECU")
	writeContract(t, dir, "A-IV-9_ZOOM_contract_stageA_FINAL.json", "A-IV-9", "ZOOM")

	f, err := NewFilter(`module_abbr == "ZOOM"`)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	r := newTestRunner(t, Options{Workers: 2, Filter: f})
	rep, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Summary.Total != 1 {
		t.Fatalf("total = %d, want 1 after filtering", rep.Summary.Total)
	}
	if !strings.Contains(rep.Results[0].File, "ZOOM") {
		t.Errorf("wrong file kept: %s", rep.Results[0].File)
	}
}

func TestRunnerRepeatable(t *testing.T) {
	dir := t.TempDir()
	for i, id := range []string{"A-I-1", "A-I-2", "A-I-3", "A-I-4"} {
		abbr := strings.Repeat(string(rune('A'+i)), 3)
		writeContract(t, dir, id+"_"+abbr+"_contract_stageA_FINAL.json", id, abbr)
	}

	r := newTestRunner(t, Options{Workers: 3})
	first, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first.Results) != len(second.Results) {
		t.Fatal("run size differs between identical runs")
	}
	for i := range first.Results {
		if first.Results[i].File != second.Results[i].File ||
			first.Results[i].Score != second.Results[i].Score ||
			len(first.Results[i].Findings) != len(second.Results[i].Findings) {
			t.Errorf("result %d differs between identical runs", i)
		}
	}
}

func TestRunnerCancelled(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "A-IV-7_ECU_contract_stageA_FINAL.json", "A-IV-7", "ECU")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newTestRunner(t, Options{Workers: 1})
	if _, err := r.Run(ctx, []string{dir}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
