package batch

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kvarta-studio/kontra/pkg/contract"
)

// Filter selects contracts by an expression over identity metadata,
// e.g. `module_type == "PROCESS" && maturity == "stable"`. A nil filter
// matches everything.
type Filter struct {
	src     string
	program *vm.Program
}

// filterEnv names the variables a filter expression may reference.
func filterEnv(c *contract.Contract) map[string]any {
	if c == nil {
		return map[string]any{
			"module_id":   "",
			"module_abbr": "",
			"module_type": "",
			"version":     "",
			"maturity":    "",
		}
	}
	return map[string]any{
		"module_id":   c.ModuleID,
		"module_abbr": c.Abbr,
		"module_type": c.Type,
		"version":     c.Version,
		"maturity":    c.Schema.MaturityStage,
	}
}

// NewFilter compiles a filter expression. Compilation is strict about
// both the variable set and the boolean result type, so typos fail the
// run up front instead of silently matching nothing.
func NewFilter(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Filter{src: src, program: program}, nil
}

// Match runs the filter against one contract's metadata.
func (f *Filter) Match(c *contract.Contract) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(c))
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", f.src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.src
}
