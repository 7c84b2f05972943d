// Package entity defines the planning entity kinds that Quill can draft.
//
// Every other package is keyed by entity.Type: the step registry picks
// question tables by it, the schema package picks validators by it, and
// the draft manager embeds its prefix into draft ids.
package entity

import "fmt"

// Type identifies one of the five planning entity kinds.
type Type string

const (
	Requirement  Type = "requirement"
	Component    Type = "component"
	Plan         Type = "plan"
	Constitution Type = "constitution"
	Decision     Type = "decision"
)

// All lists every entity type in a fixed order. Registries iterate this
// to prove exhaustiveness in tests.
var All = []Type{Requirement, Component, Plan, Constitution, Decision}

// validTypes is the set of allowed entity types.
var validTypes = map[Type]bool{
	Requirement:  true,
	Component:    true,
	Plan:         true,
	Constitution: true,
	Decision:     true,
}

// ValidateType returns an error if the type is not recognized.
func ValidateType(t Type) error {
	if !validTypes[t] {
		return fmt.Errorf("invalid entity type %q: must be one of: requirement, component, plan, constitution, decision", t)
	}
	return nil
}

// prefixes maps each entity type to the id prefix used for its drafts
// and finalized entities.
var prefixes = map[Type]string{
	Requirement:  "req",
	Component:    "comp",
	Plan:         "plan",
	Constitution: "const",
	Decision:     "dec",
}

// Prefix returns the draft id prefix for the given type.
// Returns empty string for unknown types.
func Prefix(t Type) string {
	return prefixes[t]
}
