package main

import (
	"github.com/spf13/cobra"

	"github.com/kvarta-studio/kontra/pkg/contract"
	"github.com/kvarta-studio/kontra/pkg/repl"
)

var replContractPath string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive constraint-expression shell",
	Long: `Starts an interactive shell for the constraint DSL: parse and
evaluate expressions against an editable variable binding. With
--contract, the contract's parameter defaults seed the binding.`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	var c *contract.Contract
	if replContractPath != "" {
		var err error
		c, err = contract.Load(replContractPath)
		if err != nil {
			return err
		}
	}
	return repl.New(c).Run()
}

func init() {
	replCmd.Flags().StringVar(&replContractPath, "contract", "", "Seed the binding from this contract's parameter defaults")
}
