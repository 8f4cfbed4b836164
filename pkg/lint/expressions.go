package lint

import (
	"fmt"

	"github.com/kvarta-studio/kontra/pkg/contract"
	"github.com/kvarta-studio/kontra/pkg/dsl"
)

type parsedConstraint struct {
	index int
	expr  string
	node  dsl.Node
}

// checkConstraints parses every constraint expression, statically
// resolves its identifiers against the parameters section, and exercises
// the successfully parsed constraints against test-case bindings.
// A parse failure skips evaluation for that expression only.
func checkConstraints(c *contract.Contract) []Finding {
	var findings []Finding
	var parsed []parsedConstraint

	for i, con := range c.Constraints {
		if con.Expr == "" {
			continue // presence is the schema pass's concern
		}
		path := fmt.Sprintf("$.constraints[%d].expr", i)
		node, err := dsl.Parse(con.Expr)
		if err != nil {
			findings = append(findings, errorf(CodeExprParse, path, "constraint %q: %v", con.Expr, err))
			continue
		}
		for _, name := range dsl.Idents(node) {
			if _, ok := c.Parameters[name]; !ok {
				findings = append(findings, errorf(CodeExprUnbound, path,
					"constraint references undeclared parameter %q", name))
			}
		}
		parsed = append(parsed, parsedConstraint{index: i, expr: con.Expr, node: node})
	}

	findings = append(findings, evalAgainstTestCases(c, parsed)...)
	return findings
}

// checkRules runs the same parse and static-resolution pass over the
// soft validation rules. Rule findings are warnings: they surface
// curation problems but never fail a contract.
func checkRules(c *contract.Contract) []Finding {
	var findings []Finding
	for i, rule := range c.Validation.Rules {
		if rule.Condition == "" {
			continue
		}
		path := fmt.Sprintf("$.validation.rules[%d].condition", i)
		node, err := dsl.Parse(rule.Condition)
		if err != nil {
			findings = append(findings, warnf(CodeRuleParse, path, "rule %q: %v", rule.Name, err))
			continue
		}
		for _, name := range dsl.Idents(node) {
			if _, ok := c.Parameters[name]; !ok {
				findings = append(findings, warnf(CodeRuleUnbound, path,
					"rule %q references undeclared parameter %q", rule.Name, name))
			}
		}
	}
	return findings
}

// evalAgainstTestCases exercises parsed constraints with each test
// case's input binding. Positive cases must satisfy every constraint;
// negative cases must violate at least one (an evaluation failure on
// deliberately broken inputs counts as a violation); warning cases
// target validation.rules and are not evaluated here.
func evalAgainstTestCases(c *contract.Contract, parsed []parsedConstraint) []Finding {
	if len(parsed) == 0 || len(c.TestCases) == 0 {
		return nil
	}

	defaults := make(dsl.Binding)
	for name, p := range c.Parameters {
		if p == nil || p.Default == nil {
			continue
		}
		if v, err := dsl.FromAny(p.Default); err == nil {
			defaults[name] = v
		}
	}

	var findings []Finding
	for j, tc := range c.TestCases {
		binding := make(dsl.Binding, len(defaults)+len(tc.Input))
		for k, v := range defaults {
			binding[k] = v
		}
		for k, raw := range tc.Input {
			if v, err := dsl.FromAny(raw); err == nil {
				binding[k] = v
			}
		}

		casePath := fmt.Sprintf("$.test_cases[%d]", j)
		switch tc.Type {
		case "positive":
			for _, pc := range parsed {
				ok, err := dsl.Eval(pc.node, binding)
				if err != nil {
					findings = append(findings, errorf(CodeExprEval,
						fmt.Sprintf("$.constraints[%d].expr", pc.index),
						"test case %q: %v", tc.ID, err))
					continue
				}
				if !ok {
					findings = append(findings, errorf(CodeTestConstraint, casePath,
						"positive test case %q violates constraint %q", tc.ID, pc.expr))
				}
			}
		case "negative":
			violated := false
			for _, pc := range parsed {
				ok, err := dsl.Eval(pc.node, binding)
				if err != nil || !ok {
					violated = true
					break
				}
			}
			if !violated {
				findings = append(findings, warnf(CodeTestNegative, casePath,
					"negative test case %q violates no constraint", tc.ID))
			}
		}
	}
	return findings
}
