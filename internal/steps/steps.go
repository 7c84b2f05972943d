// Package steps is the static step registry for the drafting flows.
//
// For each entity type it declares the ordered main questions, the
// array fields (each contributing one synthetic list step and one
// synthetic item step), and the per-item question templates. Pure data,
// no behavior; the drafters and the step validator both read from
// here, and tests enforce that every step has a matching schema.
package steps

import "github.com/HendryAvila/sdd-quill/internal/entity"

// Kind distinguishes the three step categories in a flow.
type Kind string

const (
	KindMain Kind = "main" // one scalar answer
	KindList Kind = "list" // collection question for an array field
	KindItem Kind = "item" // per-item structured finalization
)

// Definition describes one step in an entity type's drafting flow.
type Definition struct {
	ID             string   // step id, unique within the type
	Order          int      // 1-based position in the flow
	Name           string   // human-readable step name
	Prompt         string   // the question the agent relays to the user
	Guidance       string   // coaching for producing a good answer
	Field          string   // primary answer key in the draft data map
	RequiredFields []string // fields the answer payload must carry
	Optional       bool     // the question may be skipped
	Kind           Kind
	ArrayField     string // set for list/item steps
	NextStep       string // id of the following step, "" at the end
}

// ItemQuestion is the template for one free-text question asked per
// array item. Instances get the template id suffixed with "-item-N".
type ItemQuestion struct {
	ID       string
	Prompt   string
	Guidance string
	Optional bool
}

// ArrayField declares one list-valued field of an entity type.
type ArrayField struct {
	Name          string
	CollectionID  string // question id of the collection question
	ListPrompt    string // asks for the item descriptions
	ListGuidance  string
	ItemQuestions []ItemQuestion
}

// mainSteps holds the scalar questions per entity type, in flow order.
// Synthetic list/item steps are appended by Definitions.
var mainSteps = map[entity.Type][]Definition{
	entity.Requirement: {
		{
			ID: "problem_identification", Name: "Problem identification",
			Prompt:   "What problem does this requirement address? Describe the pain point, who experiences it, and when.",
			Guidance: "State the observable problem, not the solution. Avoid subjective words like 'slow' or 'hard' without context.",
			Field:    "problem", RequiredFields: []string{"problem"},
		},
		{
			ID: "solution_definition", Name: "Solution definition",
			Prompt:   "What should the system do about it? Describe the desired behavior.",
			Guidance: "Describe behavior, not technology. 'The system notifies the owner within a minute' beats 'use a message queue'.",
			Field:    "solution", RequiredFields: []string{"solution"},
		},
		{
			ID: "priority_assignment", Name: "Priority assignment",
			Prompt:   "How important is this requirement: critical, required, ideal, or optional?",
			Guidance: "critical = product fails without it; required = must ship; ideal = strong want; optional = nice to have.",
			Field:    "priority", RequiredFields: []string{"priority"},
		},
		{
			ID: "stakeholder_analysis", Name: "Stakeholder analysis",
			Prompt:   "Who is affected by this requirement besides the direct user? (You may skip this.)",
			Guidance: "Think of operators, support, compliance: anyone whose work changes.",
			Field:    "stakeholders", Optional: true,
		},
	},
	entity.Component: {
		{
			ID: "purpose_definition", Name: "Purpose definition",
			Prompt:   "What is this component for? One or two sentences on the job it owns.",
			Guidance: "A component with more than one purpose is two components.",
			Field:    "purpose", RequiredFields: []string{"purpose"},
		},
		{
			ID: "responsibility_scope", Name: "Responsibility scope",
			Prompt:   "What is inside this component's responsibility, and what is explicitly outside it?",
			Guidance: "Name the boundary. 'Owns session state; does not own user identity' is a boundary.",
			Field:    "scope", RequiredFields: []string{"scope"},
		},
		{
			ID: "dependency_mapping", Name: "Dependency mapping",
			Prompt:   "Which other components or external systems does it depend on? (You may skip this.)",
			Guidance: "List direct dependencies only; transitive ones belong to their owners.",
			Field:    "dependencies", Optional: true,
		},
	},
	entity.Plan: {
		{
			ID: "objective_definition", Name: "Objective definition",
			Prompt:   "What outcome should this plan achieve?",
			Guidance: "An objective is a state of the world, not a list of tasks.",
			Field:    "objective", RequiredFields: []string{"objective"},
		},
		{
			ID: "scope_boundaries", Name: "Scope boundaries",
			Prompt:   "What is in scope for this plan?",
			Guidance: "Be explicit: later phases will be cut against this line.",
			Field:    "in_scope", RequiredFields: []string{"in_scope"},
		},
		{
			ID: "success_metrics", Name: "Success metrics",
			Prompt:   "How will you measure that the plan worked?",
			Guidance: "Include a number, percentage, or concrete condition. 'Faster' is not a metric.",
			Field:    "metrics", RequiredFields: []string{"metrics"},
		},
		{
			ID: "risk_assessment", Name: "Risk assessment",
			Prompt:   "What could derail this plan? (You may skip this.)",
			Guidance: "Name the risk and the early signal you would watch for.",
			Field:    "risks", Optional: true,
		},
	},
	entity.Constitution: {
		{
			ID: "preamble_drafting", Name: "Preamble drafting",
			Prompt:   "Why does this project need a constitution? State its purpose and spirit.",
			Guidance: "The preamble is the tiebreaker when articles conflict, so write it to be quoted.",
			Field:    "preamble", RequiredFields: []string{"preamble"},
		},
		{
			ID: "scope_declaration", Name: "Scope declaration",
			Prompt:   "Who and what does this constitution govern?",
			Guidance: "Name the repositories, teams, or decisions it binds.",
			Field:    "applies_to", RequiredFields: []string{"applies_to"},
		},
		{
			ID: "amendment_policy", Name: "Amendment policy",
			Prompt:   "How can this constitution be changed later? (You may skip this.)",
			Guidance: "A constitution nobody can amend gets ignored instead.",
			Field:    "amendment_process", Optional: true,
		},
	},
	entity.Decision: {
		{
			ID: "question_framing", Name: "Question framing",
			Prompt:   "What question is this decision answering?",
			Guidance: "Frame it so a yes/no or pick-one answer is possible.",
			Field:    "question", RequiredFields: []string{"question"},
		},
		{
			ID: "context_capture", Name: "Context capture",
			Prompt:   "What is the situation that forces this decision now?",
			Guidance: "Capture the constraints that make the obvious answer non-obvious.",
			Field:    "context", RequiredFields: []string{"context"},
		},
		{
			ID: "outcome_recording", Name: "Outcome recording",
			Prompt:   "What was decided?",
			Guidance: "One sentence, active voice, no hedging.",
			Field:    "decision", RequiredFields: []string{"decision"},
		},
		{
			ID: "rationale_statement", Name: "Rationale statement",
			Prompt:   "Why is this the right call?",
			Guidance: "Explain the why: 'because', 'so that', 'prevents' are your friends.",
			Field:    "rationale", RequiredFields: []string{"rationale"},
		},
	},
}

// arrayFields declares the list-valued fields per entity type, in
// declaration order. Each contributes two synthetic steps to the flow.
var arrayFields = map[entity.Type][]ArrayField{
	entity.Requirement: {
		{
			Name:         "acceptance_criteria",
			CollectionID: "req-q-ac",
			ListPrompt:   "List the acceptance criteria for this requirement, one short description per criterion.",
			ListGuidance: "Each description becomes its own guided sub-flow, so keep them one-liner sized here.",
			ItemQuestions: []ItemQuestion{
				{ID: "req-ac-q-001", Prompt: "State this criterion as a verifiable condition.", Guidance: "Given/when/then or a measurable threshold."},
				{ID: "req-ac-q-002", Prompt: "Why does this criterion matter?", Guidance: "Tie it back to the problem statement."},
			},
		},
	},
	entity.Component: {
		{
			Name:         "capabilities",
			CollectionID: "comp-q-cap",
			ListPrompt:   "List this component's capabilities, one short description each.",
			ListGuidance: "A capability is something callers can observe, not an internal mechanism.",
			ItemQuestions: []ItemQuestion{
				{ID: "comp-cap-q-001", Prompt: "Describe what this capability does for its caller.", Guidance: "Observable behavior only."},
				{ID: "comp-cap-q-002", Prompt: "What inputs does it need and what does it produce?", Guidance: "Rough shape is enough; the schema comes at finalization."},
			},
		},
		{
			Name:         "interfaces",
			CollectionID: "comp-q-if",
			ListPrompt:   "List the interfaces this component exposes or consumes.",
			ListGuidance: "One per integration point. Name the counterpart.",
			ItemQuestions: []ItemQuestion{
				{ID: "comp-if-q-001", Prompt: "Describe this interface's contract.", Guidance: "What is promised, to whom, in which direction."},
			},
		},
	},
	entity.Plan: {
		{
			Name:         "phases",
			CollectionID: "plan-q-ph",
			ListPrompt:   "List the phases of this plan in execution order.",
			ListGuidance: "Order matters: items are finalized in the order you list them.",
			ItemQuestions: []ItemQuestion{
				{ID: "plan-ph-q-001", Prompt: "What does this phase deliver?", Guidance: "Deliverables someone could point at."},
				{ID: "plan-ph-q-002", Prompt: "How do you know this phase is done?", Guidance: "An exit criterion you could check in a review."},
			},
		},
	},
	entity.Constitution: {
		{
			Name:         "articles",
			CollectionID: "const-q-art",
			ListPrompt:   "List the articles of this constitution, one short title or theme each.",
			ListGuidance: "Each article becomes a numbered principle with its own rationale.",
			ItemQuestions: []ItemQuestion{
				{ID: "const-art-q-001", Prompt: "State this article's principle as a rule.", Guidance: "Declarative and testable: 'X must Y', not 'we value Y'."},
				{ID: "const-art-q-002", Prompt: "Why does this principle deserve constitutional status?", Guidance: "Articles are expensive to amend; justify the weight."},
			},
		},
	},
	entity.Decision: {
		{
			Name:         "alternatives",
			CollectionID: "dec-q-alt",
			ListPrompt:   "List the alternatives that were considered and rejected.",
			ListGuidance: "Include the serious ones only; strawmen erode trust in the record.",
			ItemQuestions: []ItemQuestion{
				{ID: "dec-alt-q-001", Prompt: "Describe this alternative and why it was rejected.", Guidance: "A future reader should not need to re-litigate it."},
			},
		},
	},
}

// Definitions returns the full ordered step list for an entity type:
// main steps followed by, per array field, its list step and item step.
// Order and NextStep are filled in here so the tables above stay terse.
func Definitions(t entity.Type) []Definition {
	main := mainSteps[t]
	defs := make([]Definition, 0, len(main)+2*len(arrayFields[t]))

	for _, d := range main {
		d.Kind = KindMain
		defs = append(defs, d)
	}

	for _, af := range arrayFields[t] {
		defs = append(defs,
			Definition{
				ID:             af.Name + "_list",
				Name:           af.Name + " (collection)",
				Prompt:         af.ListPrompt,
				Guidance:       af.ListGuidance,
				Field:          "descriptions",
				RequiredFields: []string{"descriptions"},
				Kind:           KindList,
				ArrayField:     af.Name,
			},
			Definition{
				ID:         af.Name + "_item",
				Name:       af.Name + " (per item)",
				Prompt:     "Answer the per-item questions, then finalize each item with structured data.",
				Guidance:   "The structured payload is validated against the item schema; the free-text answers shape it.",
				Kind:       KindItem,
				ArrayField: af.Name,
			},
		)
	}

	for i := range defs {
		defs[i].Order = i + 1
		if i < len(defs)-1 {
			defs[i].NextStep = defs[i+1].ID
		} else {
			defs[i].NextStep = ""
		}
	}
	return defs
}

// MainSteps returns only the scalar question steps for a type.
func MainSteps(t entity.Type) []Definition {
	main := mainSteps[t]
	out := make([]Definition, len(main))
	copy(out, main)
	for i := range out {
		out[i].Kind = KindMain
		out[i].Order = i + 1
	}
	return out
}

// ArrayFields returns the declared array fields for a type, in
// declaration order. Returns a copy to keep the registry immutable.
func ArrayFields(t entity.Type) []ArrayField {
	src := arrayFields[t]
	out := make([]ArrayField, len(src))
	copy(out, src)
	return out
}

// TotalSteps returns the fixed step count for a type: main steps plus
// two synthetic steps per array field.
func TotalSteps(t entity.Type) int {
	return len(mainSteps[t]) + 2*len(arrayFields[t])
}

// ByID looks up a step definition by id within a type's flow.
func ByID(t entity.Type, id string) (Definition, bool) {
	for _, d := range Definitions(t) {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
