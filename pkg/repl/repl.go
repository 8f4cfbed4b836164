// Package repl implements the interactive constraint-expression shell:
// parse, inspect and evaluate DSL expressions against an editable
// binding, optionally seeded from a contract's parameter defaults.
package repl

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/kvarta-studio/kontra/pkg/contract"
	"github.com/kvarta-studio/kontra/pkg/dsl"
)

// Repl holds the session state: the current binding and the last parsed
// expression.
type Repl struct {
	binding dsl.Binding
	last    dsl.Node
	output  io.Writer
	rl      *readline.Instance
}

// New creates a session. When a contract is given, its parameter
// defaults seed the binding.
func New(c *contract.Contract) *Repl {
	binding := make(dsl.Binding)
	if c != nil {
		for name, p := range c.Parameters {
			if p == nil || p.Default == nil {
				continue
			}
			if v, err := dsl.FromAny(p.Default); err == nil {
				binding[name] = v
			}
		}
	}
	return &Repl{binding: binding, output: os.Stdout}
}

// Run starts the interactive loop.
func (r *Repl) Run() error {
	commands := []string{"set", "unset", "vars", "ast", "eval", "help", "quit"}
	completer := readline.NewPrefixCompleter()
	for _, cmd := range commands {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dsl> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	r.rl = rl
	defer rl.Close()

	fmt.Fprintf(r.output, "constraint DSL shell, %d bound variables\n", len(r.binding))
	fmt.Fprintf(r.output, "Type an expression to evaluate it, 'help' for commands.\n\n")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.Execute(line) {
			return nil
		}
	}
}

// Execute runs one line and reports whether the session should end.
func (r *Repl) Execute(line string) bool {
	parts := strings.Fields(line)
	switch parts[0] {
	case "set":
		r.handleSet(parts)
	case "unset":
		r.handleUnset(parts)
	case "vars", "v":
		r.handleVars()
	case "ast":
		r.handleAst(parts)
	case "eval":
		r.handleEval(strings.TrimSpace(strings.TrimPrefix(line, "eval")))
	case "help", "?":
		r.handleHelp()
	case "quit", "q", "exit":
		fmt.Fprintln(r.output, "bye")
		return true
	default:
		// Bare input is an expression.
		r.handleEval(line)
	}
	return false
}

func (r *Repl) handleSet(parts []string) {
	if len(parts) != 3 {
		fmt.Fprintln(r.output, "usage: set <name> <value>   (value: number, 'string' or true/false)")
		return
	}
	name, raw := parts[1], parts[2]
	switch {
	case raw == "true" || raw == "false":
		r.binding[name] = dsl.BoolValue(raw == "true")
	case strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") && len(raw) >= 2:
		r.binding[name] = dsl.StringValue(strings.Trim(raw, "'"))
	default:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fmt.Fprintf(r.output, "cannot parse value %q: %v\n", raw, err)
			return
		}
		r.binding[name] = dsl.NumberValue(n)
	}
	fmt.Fprintf(r.output, "%s = %s\n", name, formatValue(r.binding[name]))
}

func (r *Repl) handleUnset(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintln(r.output, "usage: unset <name>")
		return
	}
	delete(r.binding, parts[1])
}

func (r *Repl) handleVars() {
	if len(r.binding) == 0 {
		fmt.Fprintln(r.output, "no variables bound")
		return
	}
	names := make([]string, 0, len(r.binding))
	for name := range r.binding {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.output, "  %-24s %s\n", name, formatValue(r.binding[name]))
	}
}

func (r *Repl) handleAst(parts []string) {
	node := r.last
	if len(parts) > 1 {
		parsed, err := dsl.Parse(strings.Join(parts[1:], " "))
		if err != nil {
			fmt.Fprintf(r.output, "parse error: %v\n", err)
			return
		}
		node = parsed
	}
	if node == nil {
		fmt.Fprintln(r.output, "nothing parsed yet")
		return
	}
	fmt.Fprintln(r.output, node.String())
}

func (r *Repl) handleEval(src string) {
	if src == "" {
		fmt.Fprintln(r.output, "usage: eval <expression>")
		return
	}
	node, err := dsl.Parse(src)
	if err != nil {
		fmt.Fprintf(r.output, "parse error: %v\n", err)
		return
	}
	r.last = node

	ok, err := dsl.Eval(node, r.binding)
	if err != nil {
		fmt.Fprintf(r.output, "eval error: %v\n", err)
		return
	}
	fmt.Fprintln(r.output, ok)
}

func (r *Repl) handleHelp() {
	fmt.Fprint(r.output, `Commands:
  <expression>        parse and evaluate against the current binding
  eval <expression>   same, explicit form
  ast [expression]    print the parse tree (defaults to the last expression)
  set <name> <value>  bind a variable (number, 'string' or true/false)
  unset <name>        remove a binding
  vars                list bound variables
  quit                leave the shell
`)
}

func formatValue(v dsl.Value) string {
	switch v.Kind {
	case dsl.KindBool:
		return strconv.FormatBool(v.Bool)
	case dsl.KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return "'" + v.Str + "'"
	}
}
