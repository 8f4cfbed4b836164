// Package dsl implements the constraints expression language used in
// Stage A contracts. Expressions combine comparisons over contract
// parameters with boolean connectives and implication, e.g.
//
//	shot_type == 'ECU' => framing_tightness >= 0.85
//
// Parsing and evaluation are two separate phases: Parse produces an
// immutable tree that can be evaluated any number of times against
// different parameter bindings.
package dsl

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
	KindString
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Value is a concrete operand value: a bool, a number or a string.
type Value struct {
	Kind Kind
	Bool bool
	Num  float64
	Str  string
}

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NumberValue wraps a float64.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// FromAny converts a JSON-decoded value into a Value.
// Supported: bool, float64, int, int64 and string.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case bool:
		return BoolValue(val), nil
	case float64:
		return NumberValue(val), nil
	case int:
		return NumberValue(float64(val)), nil
	case int64:
		return NumberValue(float64(val)), nil
	case string:
		return StringValue(val), nil
	default:
		return Value{}, fmt.Errorf("unsupported binding type %T", v)
	}
}

// String renders the value in expression syntax.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return "'" + v.Str + "'"
	}
	return "?"
}

// Binding maps parameter names to concrete values for evaluation.
type Binding map[string]Value

// BindAny converts a map of JSON-decoded values into a Binding.
func BindAny(m map[string]any) (Binding, error) {
	b := make(Binding, len(m))
	for k, v := range m {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", k, err)
		}
		b[k] = val
	}
	return b, nil
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "=="
	OpNe CompareOp = "!="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
)

// Node is an expression tree node. The tree is immutable after Parse;
// the same string always parses to a structurally equal tree.
type Node interface {
	// Equal reports structural equality with another node.
	Equal(Node) bool
	String() string
	node()
}

// Literal is a constant leaf: number, string or boolean.
type Literal struct {
	Value Value
}

// Ident references a parameter declared in the contract's parameters section.
type Ident struct {
	Name string
}

// Compare is a non-associative comparison whose operands are
// identifiers or literals.
type Compare struct {
	Op    CompareOp
	Left  Node
	Right Node
}

// Not negates a boolean operand.
type Not struct {
	X Node
}

// And is short-circuit conjunction.
type And struct {
	Left  Node
	Right Node
}

// Or is short-circuit disjunction.
type Or struct {
	Left  Node
	Right Node
}

// Implies is right-associative implication: false antecedent yields true
// without evaluating the consequent.
type Implies struct {
	Left  Node
	Right Node
}

func (*Literal) node() {}
func (*Ident) node()   {}
func (*Compare) node() {}
func (*Not) node()     {}
func (*And) node()     {}
func (*Or) node()      {}
func (*Implies) node() {}

func (l *Literal) String() string { return l.Value.String() }
func (i *Ident) String() string   { return i.Name }
func (c *Compare) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}
func (n *Not) String() string { return "!" + n.X.String() }
func (a *And) String() string {
	return fmt.Sprintf("(%s && %s)", a.Left, a.Right)
}
func (o *Or) String() string {
	return fmt.Sprintf("(%s || %s)", o.Left, o.Right)
}
func (im *Implies) String() string {
	return fmt.Sprintf("(%s => %s)", im.Left, im.Right)
}

func (l *Literal) Equal(other Node) bool {
	o, ok := other.(*Literal)
	return ok && l.Value == o.Value
}

func (i *Ident) Equal(other Node) bool {
	o, ok := other.(*Ident)
	return ok && i.Name == o.Name
}

func (c *Compare) Equal(other Node) bool {
	o, ok := other.(*Compare)
	return ok && c.Op == o.Op && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

func (n *Not) Equal(other Node) bool {
	o, ok := other.(*Not)
	return ok && n.X.Equal(o.X)
}

func (a *And) Equal(other Node) bool {
	o, ok := other.(*And)
	return ok && a.Left.Equal(o.Left) && a.Right.Equal(o.Right)
}

func (or *Or) Equal(other Node) bool {
	o, ok := other.(*Or)
	return ok && or.Left.Equal(o.Left) && or.Right.Equal(o.Right)
}

func (im *Implies) Equal(other Node) bool {
	o, ok := other.(*Implies)
	return ok && im.Left.Equal(o.Left) && im.Right.Equal(o.Right)
}

// Idents returns the sorted set of parameter names referenced by the tree.
// Used for static resolution against a contract's parameters section.
func Idents(n Node) []string {
	seen := make(map[string]bool)
	collectIdents(n, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectIdents(n Node, seen map[string]bool) {
	switch v := n.(type) {
	case *Ident:
		seen[v.Name] = true
	case *Compare:
		collectIdents(v.Left, seen)
		collectIdents(v.Right, seen)
	case *Not:
		collectIdents(v.X, seen)
	case *And:
		collectIdents(v.Left, seen)
		collectIdents(v.Right, seen)
	case *Or:
		collectIdents(v.Left, seen)
		collectIdents(v.Right, seen)
	case *Implies:
		collectIdents(v.Left, seen)
		collectIdents(v.Right, seen)
	}
}
