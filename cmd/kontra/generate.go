package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvarta-studio/kontra/pkg/scaffold"
)

var (
	generateID     string
	generateAbbr   string
	generateType   string
	generateNameUK string
	generateNameEN string
	generateDir    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Scaffold a new contract that passes validation out of the box",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path, err := scaffold.WriteFile(generateDir, scaffold.Params{
		ModuleID: generateID,
		Abbr:     generateAbbr,
		Type:     generateType,
		NameUK:   generateNameUK,
		NameEN:   generateNameEN,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s\n", path)
	return nil
}

func init() {
	generateCmd.Flags().StringVar(&generateID, "id", "", "Module ID, e.g. A-IV-7 (required)")
	generateCmd.Flags().StringVar(&generateAbbr, "abbr", "", "Module abbreviation, e.g. ECU (required)")
	generateCmd.Flags().StringVar(&generateType, "type", "PROCESS", "Module type: PROCESS, RULESET or BRIDGE")
	generateCmd.Flags().StringVar(&generateNameUK, "name-uk", "", "Ukrainian module name")
	generateCmd.Flags().StringVar(&generateNameEN, "name-en", "", "English module name")
	generateCmd.Flags().StringVar(&generateDir, "dir", ".", "Target directory")
	_ = generateCmd.MarkFlagRequired("id")
	_ = generateCmd.MarkFlagRequired("abbr")
}
