package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvarta-studio/kontra/pkg/batch"
	"github.com/kvarta-studio/kontra/pkg/config"
	"github.com/kvarta-studio/kontra/pkg/lint"
)

var (
	runSchemaPath   string
	runGlossaryPath string
	runFilter       string
	runWorkers      int
	runOutDir       string
	runJSON         bool
	runMarkdown     bool
	runVerbose      bool
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Validate every contract under the given paths and aggregate a report",
	Long: `Walks the given files and directories (default: workspace manifest paths,
then the current directory), lints every contract concurrently and prints
an aggregated report. Catalogue, glossary, schema and report files are
skipped automatically.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	ws, err := config.Discover(".")
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 && ws != nil && len(ws.Paths) > 0 {
		paths = ws.Paths
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if runWorkers == 0 && ws != nil {
		runWorkers = ws.Workers
	}
	if runOutDir == "" && ws != nil {
		runOutDir = ws.OutDir
	}

	sch, gl, err := loadSchemaAndGlossary(runSchemaPath, runGlossaryPath)
	if err != nil {
		return err
	}

	var filter *batch.Filter
	if runFilter != "" {
		filter, err = batch.NewFilter(runFilter)
		if err != nil {
			return err
		}
	}

	runner := batch.NewRunner(lint.New(sch, gl), sch, batch.Options{
		Workers: runWorkers,
		Filter:  filter,
	})
	rep, err := runner.Run(cmd.Context(), paths)
	if err != nil {
		return err
	}

	switch {
	case runJSON:
		if err := rep.WriteJSON(os.Stdout); err != nil {
			return err
		}
	case runMarkdown:
		if err := rep.WriteMarkdown(os.Stdout); err != nil {
			return err
		}
	default:
		if err := rep.Render(os.Stdout, runVerbose); err != nil {
			return err
		}
	}

	if runOutDir != "" {
		if err := rep.WriteArtifacts(runOutDir); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report artifacts written to %s\n", runOutDir)
	}

	if rep.ExitCode() != 0 {
		return fmt.Errorf("%d of %d file(s): %w",
			rep.Summary.Failed, rep.Summary.Total, errContractsFailed)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "", "Schema file (default: workspace manifest, then built-in)")
	runCmd.Flags().StringVar(&runGlossaryPath, "glossary", "", "Glossary file for term cross-checks")
	runCmd.Flags().StringVar(&runFilter, "filter", "", `Metadata filter expression, e.g. 'module_type == "PROCESS"'`)
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent linter workers (default: CPU count)")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "Write per-file *_lint.json artifacts and summary.json to this directory")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the full report as JSON")
	runCmd.Flags().BoolVar(&runMarkdown, "md", false, "Print the report as markdown")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Show findings for passing files too")
}
