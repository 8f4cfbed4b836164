package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteJSON writes the whole report as one indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteArtifacts writes the per-file artifacts next to a summary.json
// under dir: each contract gets <stem>_lint.json with its own result.
// The artifact names match the batch discovery exclusion patterns, so a
// later run over the same directory never lints its own output.
func (r *Report) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	for _, res := range r.Results {
		stem := strings.TrimSuffix(filepath.Base(res.File), filepath.Ext(res.File))
		path := filepath.Join(dir, stem+"_lint.json")
		if err := writeJSONFile(path, res); err != nil {
			return err
		}
	}
	return writeJSONFile(filepath.Join(dir, "summary.json"), r)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteMarkdown renders the report as a markdown summary with one
// section per failed file.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# Contract Validation Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Summary.GeneratedAt)
	if r.Summary.SchemaVersion != "" {
		fmt.Fprintf(&b, "Schema: %s\n\n", r.Summary.SchemaVersion)
	}

	b.WriteString("| Files | Passed | Failed | Errors | Warnings |\n")
	b.WriteString("|------:|-------:|-------:|-------:|---------:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n",
		r.Summary.Total, r.Summary.Passed, r.Summary.Failed, r.Summary.Errors, r.Summary.Warnings)

	for _, res := range r.Results {
		if len(res.Findings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (score %d)\n\n", filepath.Base(res.File), res.Score)
		for _, f := range res.Findings {
			fmt.Fprintf(&b, "- `%s` **%s** %s", f.Severity, f.Code, f.Message)
			if f.Path != "" {
				fmt.Fprintf(&b, " (`%s`)", f.Path)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
