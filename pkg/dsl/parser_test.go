package dsl

import (
	"strings"
	"testing"
)

// TestParseDeterminism checks that parsing the same expression twice
// yields structurally equal trees.
func TestParseDeterminism(t *testing.T) {
	exprs := []string{
		"shot_type == 'ECU' => framing_tightness >= 0.85",
		"!enabled || (count > 3 && count < 10)",
		"a == 'x' => b == 'y' => c == 'z'",
		"true",
		"framing_tightness >= 0.85",
	}
	for _, src := range exprs {
		first, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		second, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) second pass: %v", src, err)
		}
		if !first.Equal(second) {
			t.Errorf("Parse(%q) not deterministic:\n  %s\n  %s", src, first, second)
		}
	}
}

// TestParsePrecedence checks the operator tiers: => below || below && below
// comparison, with ! binding tighter than &&.
func TestParsePrecedence(t *testing.T) {
	node, err := Parse("a == 1 || b == 2 && !c => d == 3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	im, ok := node.(*Implies)
	if !ok {
		t.Fatalf("root is %T, want *Implies", node)
	}
	or, ok := im.Left.(*Or)
	if !ok {
		t.Fatalf("antecedent is %T, want *Or", im.Left)
	}
	and, ok := or.Right.(*And)
	if !ok {
		t.Fatalf("right of || is %T, want *And", or.Right)
	}
	if _, ok := and.Right.(*Not); !ok {
		t.Errorf("right of && is %T, want *Not", and.Right)
	}
}

// TestParseImpliesRightAssociative checks a => b => c parses as a => (b => c).
func TestParseImpliesRightAssociative(t *testing.T) {
	node, err := Parse("a => b => c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	im, ok := node.(*Implies)
	if !ok {
		t.Fatalf("root is %T, want *Implies", node)
	}
	if _, ok := im.Right.(*Implies); !ok {
		t.Errorf("right child is %T, want *Implies (right-associative)", im.Right)
	}
	if _, ok := im.Left.(*Ident); !ok {
		t.Errorf("left child is %T, want *Ident", im.Left)
	}
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{"'ECU'", StringValue("ECU")},
		{"0.85", NumberValue(0.85)},
		{"42", NumberValue(42)},
		{"true", BoolValue(true)},
		{"false", BoolValue(false)},
	}
	for _, tc := range cases {
		node, err := Parse(tc.src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.src, err)
		}
		lit, ok := node.(*Literal)
		if !ok {
			t.Fatalf("Parse(%q) is %T, want *Literal", tc.src, node)
		}
		if lit.Value != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.src, lit.Value, tc.want)
		}
	}
}

// TestParseErrors checks rejection of malformed expressions, with the
// offending token reported.
func TestParseErrors(t *testing.T) {
	cases := []struct {
		src     string
		wantMsg string
	}{
		{"", "empty expression"},
		{"   ", "empty expression"},
		{"(a == 1", "unbalanced parenthesis"},
		{"a = 1", "unknown operator"},
		{"a & b", "unknown operator"},
		{"a | b", "unknown operator"},
		{"a < b < c", "non-associative"},
		{"a ==", "unexpected end of expression"},
		{"a == 1 extra", "unexpected trailing input"},
		{"'unterminated", "unterminated string"},
		{"(a && b) > 1", "operand must be a parameter or literal"},
	}
	for _, tc := range cases {
		_, err := Parse(tc.src)
		if err == nil {
			t.Errorf("Parse(%q): expected error containing %q", tc.src, tc.wantMsg)
			continue
		}
		pe, ok := err.(*ParseError)
		if !ok {
			t.Errorf("Parse(%q): error is %T, want *ParseError", tc.src, err)
			continue
		}
		if !strings.Contains(pe.Error(), tc.wantMsg) {
			t.Errorf("Parse(%q) = %q, want substring %q", tc.src, pe.Error(), tc.wantMsg)
		}
	}
}

// TestParseIdentsCollection checks static identifier extraction used by
// the linter's unresolved-reference check.
func TestParseIdentsCollection(t *testing.T) {
	node, err := Parse("shot_type == 'ECU' => framing_tightness >= 0.85 && !manual_override")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := Idents(node)
	want := []string{"framing_tightness", "manual_override", "shot_type"}
	if len(got) != len(want) {
		t.Fatalf("Idents = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Idents[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
