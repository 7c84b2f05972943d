// Package schema implements the declarative payload validators consumed
// by the step validator and the drafters.
//
// Validation is result-based, never panic-based: Parse returns the
// accepted values plus a list of structured issues. An empty issue list
// means the payload passed. Schemas are static registries keyed by
// entity type, the same shape as the step registry, and cross-checked
// against it in tests.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue codes. The step validator maps these to coaching suggestions,
// so new codes need a matching suggestion branch there.
const (
	CodeRequired    = "required"
	CodeTooShort    = "too_short"
	CodeTooFewItems = "too_few_items"
	CodeInvalidEnum = "invalid_enum"
	CodePattern     = "pattern"
	CodeRefinement  = "refinement"
)

// Issue is a single validation violation.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RefineFunc inspects an accepted string value and returns a violation
// message, or empty string if the value is fine. Refinements run only
// after the structural rules pass for that field.
type RefineFunc func(value string) string

// FieldRule declares the constraints for one payload field.
type FieldRule struct {
	Name     string
	Optional bool
	MinLen   int            // minimum length for string values
	MinItems int            // minimum length for list values
	Enum     []string       // allowed values, if non-empty
	Pattern  *regexp.Regexp // format constraint, if non-nil
	Hint     string         // human-readable format hint for pattern issues
	Refine   RefineFunc
}

// Schema is an ordered set of field rules for one step or item payload.
type Schema struct {
	Name   string
	Fields []FieldRule
}

// Parse validates data against the schema. It returns the subset of data
// covered by the schema's rules plus any issues found. Unknown keys in
// data are ignored, not rejected; callers merge freely.
func (s *Schema) Parse(data map[string]any) (map[string]any, []Issue) {
	accepted := make(map[string]any, len(s.Fields))
	var issues []Issue

	for _, rule := range s.Fields {
		raw, present := data[rule.Name]

		switch v := raw.(type) {
		case nil:
			if !rule.Optional {
				issues = append(issues, Issue{
					Field:   rule.Name,
					Code:    CodeRequired,
					Message: fmt.Sprintf("%s is required", rule.Name),
				})
			}

		case string:
			if strings.TrimSpace(v) == "" {
				if !rule.Optional {
					issues = append(issues, Issue{
						Field:   rule.Name,
						Code:    CodeRequired,
						Message: fmt.Sprintf("%s is required", rule.Name),
					})
				}
				continue
			}
			if iss, ok := rule.checkString(v); !ok {
				issues = append(issues, iss)
				continue
			}
			accepted[rule.Name] = v

		case []string:
			items := make([]any, len(v))
			for i := range v {
				items[i] = v[i]
			}
			if iss, ok := rule.checkList(items); !ok {
				issues = append(issues, iss)
				continue
			}
			accepted[rule.Name] = v

		case []any:
			if iss, ok := rule.checkList(v); !ok {
				issues = append(issues, iss)
				continue
			}
			accepted[rule.Name] = v

		default:
			if !present && rule.Optional {
				continue
			}
			issues = append(issues, Issue{
				Field:   rule.Name,
				Code:    CodeRequired,
				Message: fmt.Sprintf("%s has unsupported value type %T", rule.Name, raw),
			})
		}
	}

	return accepted, issues
}

// checkString applies string rules in order: length, enum, pattern,
// then refinement. First violation wins.
func (r FieldRule) checkString(v string) (Issue, bool) {
	if r.MinLen > 0 && len(strings.TrimSpace(v)) < r.MinLen {
		return Issue{
			Field:   r.Name,
			Code:    CodeTooShort,
			Message: fmt.Sprintf("%s must be at least %d characters", r.Name, r.MinLen),
		}, false
	}

	if len(r.Enum) > 0 {
		found := false
		for _, allowed := range r.Enum {
			if v == allowed {
				found = true
				break
			}
		}
		if !found {
			return Issue{
				Field:   r.Name,
				Code:    CodeInvalidEnum,
				Message: fmt.Sprintf("%s must be one of: %s (got %q)", r.Name, strings.Join(r.Enum, ", "), v),
			}, false
		}
	}

	if r.Pattern != nil && !r.Pattern.MatchString(v) {
		hint := r.Hint
		if hint == "" {
			hint = r.Pattern.String()
		}
		return Issue{
			Field:   r.Name,
			Code:    CodePattern,
			Message: fmt.Sprintf("%s does not match the expected format: %s", r.Name, hint),
		}, false
	}

	if r.Refine != nil {
		if msg := r.Refine(v); msg != "" {
			return Issue{
				Field:   r.Name,
				Code:    CodeRefinement,
				Message: fmt.Sprintf("%s: %s", r.Name, msg),
			}, false
		}
	}

	return Issue{}, true
}

// checkList applies list rules: minimum item count.
func (r FieldRule) checkList(items []any) (Issue, bool) {
	if r.MinItems > 0 && len(items) < r.MinItems {
		return Issue{
			Field:   r.Name,
			Code:    CodeTooFewItems,
			Message: fmt.Sprintf("%s must have at least %d item(s)", r.Name, r.MinItems),
		}, false
	}
	return Issue{}, true
}
