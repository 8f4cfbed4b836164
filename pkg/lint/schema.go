package lint

import (
	"sort"
	"strconv"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/kvarta-studio/kontra/pkg/contract"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

// validateSchema checks the decoded document against the compiled schema
// and maps each leaf violation to a finding with a deterministic code.
// Unknown fields (additionalProperties) are warnings so contracts can
// carry forward-compatible extensions; everything else is an error.
func validateSchema(sch *schema.Schema, doc any) []Finding {
	err := sch.Compiled.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []Finding{errorf(CodeSchemaConstraint, "$", "schema validation: %v", err)}
	}

	var findings []Finding
	for _, cause := range flattenCauses(ve) {
		path := instancePath(cause.InstanceLocation)
		switch k := cause.ErrorKind.(type) {
		case *kind.Required:
			// One finding per missing field, never fewer.
			for _, missing := range k.Missing {
				findings = append(findings, errorf(CodeSchemaRequired, path+"."+missing,
					"missing required field %q", missing))
			}
		case *kind.Type:
			findings = append(findings, errorf(CodeSchemaType, path, "%s", cause.Error()))
		case *kind.Enum:
			findings = append(findings, errorf(CodeSchemaEnum, path, "%s", cause.Error()))
		case *kind.AdditionalProperties:
			for _, prop := range k.Properties {
				findings = append(findings, warnf(CodeSchemaUnknown, path+"."+prop,
					"unknown field %q", prop))
			}
		default:
			findings = append(findings, errorf(CodeSchemaConstraint, path, "%s", cause.Error()))
		}
	}
	return findings
}

// checkParameterRanges verifies declared numeric ranges are sane
// (min <= max). Constraint expressions over the parameters are a
// separate pass.
func checkParameterRanges(c *contract.Contract) []Finding {
	var findings []Finding
	for _, name := range sortedParamNames(c) {
		p := c.Parameters[name]
		if p == nil || p.Min == nil || p.Max == nil {
			continue
		}
		if *p.Min > *p.Max {
			findings = append(findings, errorf(CodeSchemaRange, "$.parameters."+name,
				"parameter %q declares min %v > max %v", name, *p.Min, *p.Max))
		}
	}
	return findings
}

// sortedParamNames keeps parameter findings in a stable order.
func sortedParamNames(c *contract.Contract) []string {
	names := make([]string, 0, len(c.Parameters))
	for name := range c.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flattenCauses recursively collects all leaf validation errors.
func flattenCauses(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenCauses(cause)...)
	}
	return flat
}

// instancePath renders an instance location as a JSON-path-like string,
// e.g. []{"constraints","0","expr"} → "$.constraints[0].expr".
func instancePath(location []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range location {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		b.WriteString("." + seg)
	}
	return b.String()
}
