package dsl

import "fmt"

// EvalError reports an evaluation failure: an unbound identifier or a
// type mismatch. Evaluation never coerces: comparing a string to a
// number is an error, not false.
type EvalError struct {
	Msg     string
	Unbound string // set when the failure is an unbound identifier
}

func (e *EvalError) Error() string { return "eval error: " + e.Msg }

// Eval evaluates the tree against a binding and returns the boolean
// result. Evaluation is deterministic and side-effect free: && and ||
// short-circuit, and a => b yields true without touching b when a is
// false.
func Eval(n Node, binding Binding) (bool, error) {
	v, err := evalValue(n, binding)
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, &EvalError{Msg: fmt.Sprintf("expression yields %s, want boolean", v.Kind)}
	}
	return v.Bool, nil
}

func evalValue(n Node, binding Binding) (Value, error) {
	switch node := n.(type) {
	case *Literal:
		return node.Value, nil

	case *Ident:
		v, ok := binding[node.Name]
		if !ok {
			return Value{}, &EvalError{
				Msg:     fmt.Sprintf("unbound identifier %q", node.Name),
				Unbound: node.Name,
			}
		}
		return v, nil

	case *Compare:
		left, err := evalValue(node.Left, binding)
		if err != nil {
			return Value{}, err
		}
		right, err := evalValue(node.Right, binding)
		if err != nil {
			return Value{}, err
		}
		b, err := compare(node.Op, left, right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil

	case *Not:
		x, err := evalBool(node.X, binding, "operand of !")
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!x), nil

	case *And:
		left, err := evalBool(node.Left, binding, "left operand of &&")
		if err != nil {
			return Value{}, err
		}
		if !left {
			return BoolValue(false), nil // short-circuit
		}
		right, err := evalBool(node.Right, binding, "right operand of &&")
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right), nil

	case *Or:
		left, err := evalBool(node.Left, binding, "left operand of ||")
		if err != nil {
			return Value{}, err
		}
		if left {
			return BoolValue(true), nil // short-circuit
		}
		right, err := evalBool(node.Right, binding, "right operand of ||")
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right), nil

	case *Implies:
		left, err := evalBool(node.Left, binding, "antecedent of =>")
		if err != nil {
			return Value{}, err
		}
		if !left {
			return BoolValue(true), nil // vacuously true, consequent untouched
		}
		return evalValue(node.Right, binding)

	default:
		return Value{}, &EvalError{Msg: fmt.Sprintf("unknown node type %T", n)}
	}
}

func evalBool(n Node, binding Binding, context string) (bool, error) {
	v, err := evalValue(n, binding)
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, &EvalError{Msg: fmt.Sprintf("%s is %s, want boolean", context, v.Kind)}
	}
	return v.Bool, nil
}

// compare applies op using the natural ordering of the operand type.
// Booleans support only equality; ordering two booleans is an error.
func compare(op CompareOp, left, right Value) (bool, error) {
	if left.Kind != right.Kind {
		return false, &EvalError{
			Msg: fmt.Sprintf("cannot compare %s to %s", left.Kind, right.Kind),
		}
	}

	switch left.Kind {
	case KindNumber:
		return orderResult(op, cmpFloat(left.Num, right.Num)), nil
	case KindString:
		return orderResult(op, cmpString(left.Str, right.Str)), nil
	case KindBool:
		switch op {
		case OpEq:
			return left.Bool == right.Bool, nil
		case OpNe:
			return left.Bool != right.Bool, nil
		default:
			return false, &EvalError{Msg: fmt.Sprintf("operator %s is not defined for booleans", op)}
		}
	}
	return false, &EvalError{Msg: "unknown operand kind"}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func orderResult(op CompareOp, c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	}
	return false
}
