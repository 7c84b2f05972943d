package steps

import (
	"testing"

	"github.com/HendryAvila/sdd-quill/internal/entity"
)

// --- TotalSteps ---

func TestTotalSteps_PerType(t *testing.T) {
	want := map[entity.Type]int{
		entity.Requirement:  6, // 4 main + 1 array field
		entity.Component:    7, // 3 main + 2 array fields
		entity.Plan:         6, // 4 main + 1 array field
		entity.Constitution: 5, // 3 main + 1 array field
		entity.Decision:     6, // 4 main + 1 array field
	}
	for typ, n := range want {
		if got := TotalSteps(typ); got != n {
			t.Errorf("TotalSteps(%s) = %d, want %d", typ, got, n)
		}
	}
}

func TestTotalSteps_MatchesDefinitions(t *testing.T) {
	for _, typ := range entity.All {
		if got := len(Definitions(typ)); got != TotalSteps(typ) {
			t.Errorf("%s: len(Definitions) = %d, TotalSteps = %d", typ, got, TotalSteps(typ))
		}
	}
}

// --- Definitions ---

func TestDefinitions_OrderIsSequential(t *testing.T) {
	for _, typ := range entity.All {
		for i, def := range Definitions(typ) {
			if def.Order != i+1 {
				t.Errorf("%s step %s: Order = %d, want %d", typ, def.ID, def.Order, i+1)
			}
		}
	}
}

func TestDefinitions_NextStepChains(t *testing.T) {
	for _, typ := range entity.All {
		defs := Definitions(typ)
		for i, def := range defs {
			if i == len(defs)-1 {
				if def.NextStep != "" {
					t.Errorf("%s final step %s: NextStep = %q, want empty", typ, def.ID, def.NextStep)
				}
				continue
			}
			if def.NextStep != defs[i+1].ID {
				t.Errorf("%s step %s: NextStep = %q, want %q", typ, def.ID, def.NextStep, defs[i+1].ID)
			}
		}
	}
}

func TestDefinitions_MainStepsComeFirst(t *testing.T) {
	for _, typ := range entity.All {
		defs := Definitions(typ)
		sawSynthetic := false
		for _, def := range defs {
			if def.Kind != KindMain {
				sawSynthetic = true
				continue
			}
			if sawSynthetic {
				t.Errorf("%s: main step %s appears after a synthetic step", typ, def.ID)
			}
		}
	}
}

func TestDefinitions_ArrayFieldContributesListAndItem(t *testing.T) {
	for _, typ := range entity.All {
		for _, af := range ArrayFields(typ) {
			listDef, ok := ByID(typ, af.Name+"_list")
			if !ok {
				t.Errorf("%s: missing %s_list step", typ, af.Name)
				continue
			}
			if listDef.Kind != KindList || listDef.ArrayField != af.Name {
				t.Errorf("%s: %s_list has Kind=%s ArrayField=%q", typ, af.Name, listDef.Kind, listDef.ArrayField)
			}

			itemDef, ok := ByID(typ, af.Name+"_item")
			if !ok {
				t.Errorf("%s: missing %s_item step", typ, af.Name)
				continue
			}
			if itemDef.Kind != KindItem || itemDef.ArrayField != af.Name {
				t.Errorf("%s: %s_item has Kind=%s ArrayField=%q", typ, af.Name, itemDef.Kind, itemDef.ArrayField)
			}
			if listDef.NextStep != itemDef.ID {
				t.Errorf("%s: %s_list should be immediately followed by %s_item", typ, af.Name, af.Name)
			}
		}
	}
}

func TestDefinitions_UniqueIDs(t *testing.T) {
	for _, typ := range entity.All {
		seen := map[string]bool{}
		for _, def := range Definitions(typ) {
			if seen[def.ID] {
				t.Errorf("%s: duplicate step id %q", typ, def.ID)
			}
			seen[def.ID] = true
		}
	}
}

// --- ByID ---

func TestByID_Found(t *testing.T) {
	def, ok := ByID(entity.Requirement, "priority_assignment")
	if !ok {
		t.Fatal("ByID should find priority_assignment")
	}
	if def.Field != "priority" {
		t.Errorf("Field = %q, want priority", def.Field)
	}
	if def.Order != 3 {
		t.Errorf("Order = %d, want 3", def.Order)
	}
}

func TestByID_NotFound(t *testing.T) {
	if _, ok := ByID(entity.Requirement, "bogus_step"); ok {
		t.Error("ByID should not find bogus_step")
	}
}

// --- ArrayFields ---

func TestArrayFields_ItemQuestionsHaveIDs(t *testing.T) {
	for _, typ := range entity.All {
		for _, af := range ArrayFields(typ) {
			if len(af.ItemQuestions) == 0 {
				t.Errorf("%s field %s has no item questions", typ, af.Name)
			}
			for _, q := range af.ItemQuestions {
				if q.ID == "" || q.Prompt == "" {
					t.Errorf("%s field %s has an item question with empty id or prompt", typ, af.Name)
				}
			}
			if af.CollectionID == "" {
				t.Errorf("%s field %s has no collection question id", typ, af.Name)
			}
		}
	}
}

func TestArrayFields_ReturnsCopy(t *testing.T) {
	fields := ArrayFields(entity.Requirement)
	fields[0].Name = "mutated"
	if ArrayFields(entity.Requirement)[0].Name == "mutated" {
		t.Error("ArrayFields should return a copy, not the registry slice")
	}
}

// --- Optional steps ---

func TestOptionalSteps(t *testing.T) {
	optional := map[entity.Type]string{
		entity.Requirement:  "stakeholder_analysis",
		entity.Component:    "dependency_mapping",
		entity.Plan:         "risk_assessment",
		entity.Constitution: "amendment_policy",
	}
	for typ, id := range optional {
		def, ok := ByID(typ, id)
		if !ok {
			t.Errorf("%s: missing step %s", typ, id)
			continue
		}
		if !def.Optional {
			t.Errorf("%s step %s should be optional", typ, id)
		}
	}

	// Decision has no optional main step.
	for _, def := range MainSteps(entity.Decision) {
		if def.Optional {
			t.Errorf("decision step %s should not be optional", def.ID)
		}
	}
}
