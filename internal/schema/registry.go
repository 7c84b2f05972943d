package schema

import (
	"fmt"
	"regexp"

	"github.com/HendryAvila/sdd-quill/internal/entity"
)

// stepSchemas maps (entity type, step id) to the schema for that step's
// answer payload. Synthetic list steps validate the item-description
// list; synthetic item steps reuse the field's item schema.
//
// The step registry and this table must agree on step ids; an
// exhaustiveness test enforces that, so a missing entry fails CI rather
// than surfacing as a runtime "unknown step".
var stepSchemas = map[entity.Type]map[string]*Schema{
	entity.Requirement: {
		"problem_identification": {
			Name: "requirement/problem_identification",
			Fields: []FieldRule{
				{Name: "problem", MinLen: 20, Refine: RejectVague},
			},
		},
		"solution_definition": {
			Name: "requirement/solution_definition",
			Fields: []FieldRule{
				{Name: "solution", MinLen: 20, Refine: RejectImplementationDetail},
			},
		},
		"priority_assignment": {
			Name: "requirement/priority_assignment",
			Fields: []FieldRule{
				{Name: "priority", Enum: []string{"critical", "required", "ideal", "optional"}},
			},
		},
		"stakeholder_analysis": {
			Name: "requirement/stakeholder_analysis",
			Fields: []FieldRule{
				{Name: "stakeholders", Optional: true, MinLen: 5},
			},
		},
		"acceptance_criteria_list": {
			Name: "requirement/acceptance_criteria_list",
			Fields: []FieldRule{
				{Name: "descriptions", MinItems: 1},
			},
		},
		"acceptance_criteria_item": nil, // filled from itemSchemas in init
	},
	entity.Component: {
		"purpose_definition": {
			Name: "component/purpose_definition",
			Fields: []FieldRule{
				{Name: "purpose", MinLen: 20, Refine: RejectVague},
			},
		},
		"responsibility_scope": {
			Name: "component/responsibility_scope",
			Fields: []FieldRule{
				{Name: "scope", MinLen: 10},
				{Name: "exclusions", Optional: true, MinLen: 5},
			},
		},
		"dependency_mapping": {
			Name: "component/dependency_mapping",
			Fields: []FieldRule{
				{Name: "dependencies", Optional: true, MinLen: 3},
			},
		},
		"capabilities_list": {
			Name: "component/capabilities_list",
			Fields: []FieldRule{
				{Name: "descriptions", MinItems: 1},
			},
		},
		"capabilities_item": nil,
		"interfaces_list": {
			Name: "component/interfaces_list",
			Fields: []FieldRule{
				{Name: "descriptions", MinItems: 1},
			},
		},
		"interfaces_item": nil,
	},
	entity.Plan: {
		"objective_definition": {
			Name: "plan/objective_definition",
			Fields: []FieldRule{
				{Name: "objective", MinLen: 20, Refine: RejectVague},
			},
		},
		"scope_boundaries": {
			Name: "plan/scope_boundaries",
			Fields: []FieldRule{
				{Name: "in_scope", MinLen: 10},
				{Name: "out_of_scope", Optional: true, MinLen: 5},
			},
		},
		"success_metrics": {
			Name: "plan/success_metrics",
			Fields: []FieldRule{
				{Name: "metrics", MinLen: 10, Refine: RequireMeasurable},
			},
		},
		"risk_assessment": {
			Name: "plan/risk_assessment",
			Fields: []FieldRule{
				{Name: "risks", Optional: true, MinLen: 10},
			},
		},
		"phases_list": {
			Name: "plan/phases_list",
			Fields: []FieldRule{
				{Name: "descriptions", MinItems: 1},
			},
		},
		"phases_item": nil,
	},
	entity.Constitution: {
		"preamble_drafting": {
			Name: "constitution/preamble_drafting",
			Fields: []FieldRule{
				{Name: "preamble", MinLen: 20},
			},
		},
		"scope_declaration": {
			Name: "constitution/scope_declaration",
			Fields: []FieldRule{
				{Name: "applies_to", MinLen: 5},
			},
		},
		"amendment_policy": {
			Name: "constitution/amendment_policy",
			Fields: []FieldRule{
				{Name: "amendment_process", Optional: true, MinLen: 10},
			},
		},
		"articles_list": {
			Name: "constitution/articles_list",
			Fields: []FieldRule{
				{Name: "descriptions", MinItems: 1},
			},
		},
		"articles_item": nil,
	},
	entity.Decision: {
		"question_framing": {
			Name: "decision/question_framing",
			Fields: []FieldRule{
				{Name: "question", MinLen: 10},
			},
		},
		"context_capture": {
			Name: "decision/context_capture",
			Fields: []FieldRule{
				{Name: "context", MinLen: 20},
			},
		},
		"outcome_recording": {
			Name: "decision/outcome_recording",
			Fields: []FieldRule{
				{Name: "decision", MinLen: 10},
			},
		},
		"rationale_statement": {
			Name: "decision/rationale_statement",
			Fields: []FieldRule{
				{Name: "rationale", MinLen: 15, Refine: RequireRationale},
			},
		},
		"alternatives_list": {
			Name: "decision/alternatives_list",
			Fields: []FieldRule{
				{Name: "descriptions", MinItems: 1},
			},
		},
		"alternatives_item": nil,
	},
}

// itemSchemas maps (entity type, array field) to the schema for one
// finalized item of that field. These are the authoritative validators
// behind FinalizeItemWithData.
var itemSchemas = map[entity.Type]map[string]*Schema{
	entity.Requirement: {
		"acceptance_criteria": {
			Name: "requirement/acceptance_criteria item",
			Fields: []FieldRule{
				{Name: "criterion", MinLen: 10, Refine: RequireMeasurable},
				{Name: "rationale", MinLen: 10, Refine: RequireRationale},
			},
		},
	},
	entity.Component: {
		"capabilities": {
			Name: "component/capabilities item",
			Fields: []FieldRule{
				{Name: "name", MinLen: 3},
				{Name: "description", MinLen: 10, Refine: RejectVague},
			},
		},
		"interfaces": {
			Name: "component/interfaces item",
			Fields: []FieldRule{
				{Name: "name", MinLen: 3},
				{Name: "contract", MinLen: 10},
				{Name: "direction", Enum: []string{"inbound", "outbound"}},
			},
		},
	},
	entity.Plan: {
		"phases": {
			Name: "plan/phases item",
			Fields: []FieldRule{
				{Name: "name", MinLen: 3},
				{Name: "deliverables", MinLen: 10},
				{Name: "exit_criteria", MinLen: 10, Refine: RequireMeasurable},
			},
		},
	},
	entity.Constitution: {
		"articles": {
			Name: "constitution/articles item",
			Fields: []FieldRule{
				{Name: "id", Pattern: regexp.MustCompile(`^art-\d{3}$`), Hint: "art-NNN (e.g. art-001)"},
				{Name: "title", MinLen: 3},
				{Name: "principle", MinLen: 10},
				{Name: "rationale", MinLen: 10, Refine: RequireRationale},
			},
		},
	},
	entity.Decision: {
		"alternatives": {
			Name: "decision/alternatives item",
			Fields: []FieldRule{
				{Name: "option", MinLen: 3},
				{Name: "reason_rejected", MinLen: 10, Refine: RequireRationale},
			},
		},
	},
}

func init() {
	// Item steps validate the same payload shape as item finalization,
	// so wire the nil placeholders to the item schemas. Done here
	// instead of inline to keep one source of truth per item shape.
	for t, fields := range itemSchemas {
		for field, s := range fields {
			stepSchemas[t][field+"_item"] = s
		}
	}
}

// StepSchema returns the schema for the given entity type and step id.
func StepSchema(t entity.Type, stepID string) (*Schema, error) {
	steps, ok := stepSchemas[t]
	if !ok {
		return nil, fmt.Errorf("no schemas registered for entity type %q", t)
	}
	s, ok := steps[stepID]
	if !ok || s == nil {
		return nil, fmt.Errorf("no schema for step %q of entity type %q", stepID, t)
	}
	return s, nil
}

// ItemSchema returns the item schema for the given entity type and
// array field.
func ItemSchema(t entity.Type, field string) (*Schema, error) {
	fields, ok := itemSchemas[t]
	if !ok {
		return nil, fmt.Errorf("no item schemas registered for entity type %q", t)
	}
	s, ok := fields[field]
	if !ok {
		return nil, fmt.Errorf("no item schema for field %q of entity type %q", field, t)
	}
	return s, nil
}

// StepIDs returns all registered step ids for a type, for
// exhaustiveness checks in tests.
func StepIDs(t entity.Type) []string {
	ids := make([]string, 0, len(stepSchemas[t]))
	for id := range stepSchemas[t] {
		ids = append(ids, id)
	}
	return ids
}
