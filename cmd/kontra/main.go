package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kvarta-studio/kontra/pkg/config"
	"github.com/kvarta-studio/kontra/pkg/glossary"
	"github.com/kvarta-studio/kontra/pkg/lint"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// errContractsFailed marks a run where the engine worked but contracts
// did not pass. It maps to exit code 1; every other failure is a
// run-level problem and exits 2.
var errContractsFailed = errors.New("contracts failed validation")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errContractsFailed) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

var rootCmd = &cobra.Command{
	Use:           "kontra",
	Short:         "Stage A contract validation engine",
	Long:          "kontra validates Stage A module contracts: schema conformance, constraint expressions, glossary coverage and batch reporting.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// --- validate ---

var (
	validateSchemaPath   string
	validateGlossaryPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate [contract.json...]",
	Short: "Validate contract files and print their findings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	sch, gl, err := loadSchemaAndGlossary(validateSchemaPath, validateGlossaryPath)
	if err != nil {
		return err
	}
	linter := lint.New(sch, gl)

	failed := 0
	for _, path := range args {
		res := linter.LintFile(path)
		printResult(res)
		if !res.Passed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s): %w", failed, len(args), errContractsFailed)
	}
	return nil
}

func printResult(res *lint.Result) {
	if res.Passed && len(res.Findings) == 0 {
		fmt.Printf("✓ %s (score %d)\n", res.File, res.Score)
		return
	}
	verdict := "✓"
	if !res.Passed {
		verdict = "✗"
	}
	fmt.Printf("%s %s (score %d, %d errors, %d warnings)\n",
		verdict, res.File, res.Score, res.Errors(), res.Warnings())
	for _, f := range res.Findings {
		marker := "  ✗"
		if f.Severity == lint.SeverityWarning {
			marker = "  ⚠"
		}
		fmt.Printf("%s [%s] %s\n", marker, f.Code, f.Message)
		if f.Path != "" {
			fmt.Printf("      at: %s\n", f.Path)
		}
	}
}

// loadSchemaAndGlossary resolves the schema and glossary from flags,
// falling back to the kontra.yaml workspace manifest and finally to the
// built-in schema generated from the contract types.
func loadSchemaAndGlossary(schemaPath, glossaryPath string) (*schema.Schema, *glossary.Glossary, error) {
	ws, err := config.Discover(".")
	if err != nil {
		return nil, nil, err
	}
	if schemaPath == "" && ws != nil {
		schemaPath = ws.Schema
	}
	if glossaryPath == "" && ws != nil {
		glossaryPath = ws.Glossary
	}

	var sch *schema.Schema
	if schemaPath != "" {
		sch, err = schema.LoadFile(schemaPath)
	} else {
		sch, err = schema.Builtin()
	}
	if err != nil {
		return nil, nil, err
	}

	var gl *glossary.Glossary
	if glossaryPath != "" {
		gl, err = glossary.LoadFile(glossaryPath)
		if err != nil {
			return nil, nil, err
		}
	}
	return sch, gl, nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kontra %s (build: %s)\n", version, commit)
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the built-in contract JSON Schema to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := schema.Generate()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		fmt.Println(strings.TrimRight(string(data), "\n"))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Schema file (default: workspace manifest, then built-in)")
	validateCmd.Flags().StringVar(&validateGlossaryPath, "glossary", "", "Glossary file for term cross-checks")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(versionCmd)
}
