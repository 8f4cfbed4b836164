package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kvarta-studio/kontra/pkg/contract"
)

func newTestRepl() (*Repl, *bytes.Buffer) {
	var buf bytes.Buffer
	r := New(nil)
	r.output = &buf
	return r, &buf
}

func TestExecuteSetAndEval(t *testing.T) {
	r, buf := newTestRepl()
	r.Execute("set framing_tightness 0.4")
	r.Execute("set ecu_enabled true")
	buf.Reset()

	r.Execute("ecu_enabled => framing_tightness >= 0.25")
	if got := strings.TrimSpace(buf.String()); got != "true" {
		t.Fatalf("eval output = %q, want true", got)
	}

	buf.Reset()
	r.Execute("set framing_tightness 0.1")
	buf.Reset()
	r.Execute("ecu_enabled => framing_tightness >= 0.25")
	if got := strings.TrimSpace(buf.String()); got != "false" {
		t.Fatalf("eval output = %q, want false", got)
	}
}

func TestExecuteParseError(t *testing.T) {
	r, buf := newTestRepl()
	r.Execute("a &&")
	if !strings.Contains(buf.String(), "parse error") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestExecuteUnbound(t *testing.T) {
	r, buf := newTestRepl()
	r.Execute("ghost > 1")
	if !strings.Contains(buf.String(), "eval error") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestExecuteQuit(t *testing.T) {
	r, _ := newTestRepl()
	if !r.Execute("quit") {
		t.Fatal("quit must end the session")
	}
	if r.Execute("vars") {
		t.Fatal("vars must not end the session")
	}
}

func TestNewSeedsFromContractDefaults(t *testing.T) {
	def := 0.5
	c := &contract.Contract{Parameters: map[string]*contract.Parameter{
		"intensity": {Type: "float", Default: def},
		"label":     {Type: "string", Default: "soft"},
		"nodefault": {Type: "float"},
	}}
	r := New(c)
	r.output = &bytes.Buffer{}
	if len(r.binding) != 2 {
		t.Fatalf("binding size = %d, want 2", len(r.binding))
	}

	var buf bytes.Buffer
	r.output = &buf
	r.Execute("intensity == 0.5 && label == 'soft'")
	if got := strings.TrimSpace(buf.String()); got != "true" {
		t.Fatalf("eval output = %q, want true", got)
	}
}
