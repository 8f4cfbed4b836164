package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "kontra.yaml")
	body := "schema: schemas/contract_schema_stageA_v4.json\nglossary: glossary_terms.yaml\nout: reports\nworkers: 6\npaths:\n  - contracts\n"
	if err := os.WriteFile(manifest, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadFile(manifest)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if w.Workers != 6 {
		t.Errorf("workers = %d", w.Workers)
	}
	if want := filepath.Join(dir, "schemas", "contract_schema_stageA_v4.json"); w.Schema != want {
		t.Errorf("schema = %q, want %q", w.Schema, want)
	}
	if want := filepath.Join(dir, "contracts"); len(w.Paths) != 1 || w.Paths[0] != want {
		t.Errorf("paths = %v", w.Paths)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "kontra.yaml"), []byte("out: reports\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if w == nil {
		t.Fatal("manifest not found")
	}
	if w.Root != root {
		t.Errorf("root = %q, want %q", w.Root, root)
	}
}

func TestDiscoverNoManifest(t *testing.T) {
	w, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if w != nil {
		t.Fatalf("expected nil workspace, got %+v", w)
	}
}

func TestOutDirDefault(t *testing.T) {
	var w *Workspace
	if got := w.OutDirOrDefault(); got != "reports" {
		t.Errorf("nil workspace default = %q", got)
	}
}
