package main

import (
	"github.com/spf13/cobra"

	"github.com/kvarta-studio/kontra/pkg/batch"
	"github.com/kvarta-studio/kontra/pkg/lint"
	"github.com/kvarta-studio/kontra/pkg/tui"
)

var (
	browseSchemaPath   string
	browseGlossaryPath string
	browseFilter       string
)

var browseCmd = &cobra.Command{
	Use:   "browse [paths...]",
	Short: "Validate contracts and browse the report interactively",
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	sch, gl, err := loadSchemaAndGlossary(browseSchemaPath, browseGlossaryPath)
	if err != nil {
		return err
	}

	var filter *batch.Filter
	if browseFilter != "" {
		filter, err = batch.NewFilter(browseFilter)
		if err != nil {
			return err
		}
	}

	runner := batch.NewRunner(lint.New(sch, gl), sch, batch.Options{Filter: filter})
	rep, err := runner.Run(cmd.Context(), paths)
	if err != nil {
		return err
	}
	return tui.Run(rep)
}

func init() {
	browseCmd.Flags().StringVar(&browseSchemaPath, "schema", "", "Schema file (default: workspace manifest, then built-in)")
	browseCmd.Flags().StringVar(&browseGlossaryPath, "glossary", "", "Glossary file for term cross-checks")
	browseCmd.Flags().StringVar(&browseFilter, "filter", "", "Metadata filter expression")
}
