package validation

import (
	"strings"
	"testing"

	"github.com/HendryAvila/sdd-quill/internal/entity"
)

func containsStr(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

// --- Validate: pass paths ---

func TestValidate_PriorityCritical_Passes(t *testing.T) {
	res := Validate(entity.Requirement, "priority_assignment", map[string]any{"priority": "critical"})

	if !res.Passed {
		t.Fatalf("should pass, got issues: %v", res.Issues)
	}
	if len(res.Strengths) == 0 {
		t.Fatal("priority step should report a strength")
	}
	if !containsStr(res.Strengths[0], "critical") {
		t.Errorf("strength should name the priority, got: %s", res.Strengths[0])
	}
}

func TestValidate_ProblemStatement_Passes(t *testing.T) {
	problem := "Support agents re-ask customers for order numbers on every transfer, " +
		"adding minutes per ticket and frustrating repeat callers."
	res := Validate(entity.Requirement, "problem_identification", map[string]any{"problem": problem})

	if !res.Passed {
		t.Fatalf("should pass, got issues: %v", res.Issues)
	}
	// Long, developed answers earn a strength.
	if len(res.Strengths) == 0 {
		t.Error("developed problem statement should report a strength")
	}
}

func TestValidate_QuantifiedMetrics_StrengthReported(t *testing.T) {
	res := Validate(entity.Plan, "success_metrics", map[string]any{
		"metrics": "median ticket handling time drops below 4 minutes",
	})
	if !res.Passed {
		t.Fatalf("should pass, got issues: %v", res.Issues)
	}
	if len(res.Strengths) == 0 {
		t.Error("quantified metrics should report a strength")
	}
}

// --- Validate: fail paths ---

func TestValidate_PriorityHigh_Fails(t *testing.T) {
	res := Validate(entity.Requirement, "priority_assignment", map[string]any{"priority": "high"})

	if res.Passed {
		t.Fatal("priority 'high' should fail")
	}
	if len(res.Issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", res.Issues)
	}
	if !containsStr(res.Issues[0], "critical") {
		t.Errorf("issue should list the allowed values, got: %s", res.Issues[0])
	}
	if len(res.Suggestions) == 0 {
		t.Error("failed validation should carry a suggestion")
	}
}

func TestValidate_VagueProblem_FailsWithCoaching(t *testing.T) {
	res := Validate(entity.Requirement, "problem_identification", map[string]any{
		"problem": "the current workflow is not user-friendly for our staff",
	})

	if res.Passed {
		t.Fatal("vague problem should fail")
	}
	foundTip := false
	for _, tip := range res.Suggestions {
		if containsStr(tip, "subjective") {
			foundTip = true
		}
	}
	if !foundTip {
		t.Errorf("expected a coaching tip about subjective wording, got: %v", res.Suggestions)
	}
}

func TestValidate_MissingField_Fails(t *testing.T) {
	res := Validate(entity.Decision, "question_framing", map[string]any{})

	if res.Passed {
		t.Fatal("missing field should fail")
	}
	if !containsStr(res.Issues[0], "question") {
		t.Errorf("issue should name the field, got: %s", res.Issues[0])
	}
}

func TestValidate_UnknownStep_FailsAsResult(t *testing.T) {
	res := Validate(entity.Requirement, "bogus_step", map[string]any{"x": "y"})

	if res.Passed {
		t.Fatal("unknown step should fail")
	}
	if len(res.Issues) == 0 {
		t.Fatal("unknown step should produce an issue, not a panic")
	}
}

func TestValidate_UnmeasurableMetrics_Coaching(t *testing.T) {
	res := Validate(entity.Plan, "success_metrics", map[string]any{
		"metrics": "things should generally feel smoother for the team",
	})

	if res.Passed {
		t.Fatal("unmeasurable metrics should fail")
	}
	foundTip := false
	for _, tip := range res.Suggestions {
		if containsStr(tip, "measurable") {
			foundTip = true
		}
	}
	if !foundTip {
		t.Errorf("expected a measurability tip, got: %v", res.Suggestions)
	}
}

func TestValidate_ListStep(t *testing.T) {
	res := Validate(entity.Constitution, "articles_list", map[string]any{
		"descriptions": []any{"Simplicity first", "No silent failures"},
	})
	if !res.Passed {
		t.Fatalf("should pass, got issues: %v", res.Issues)
	}
	if len(res.Strengths) == 0 || !containsStr(res.Strengths[0], "2") {
		t.Errorf("list step strength should count items, got: %v", res.Strengths)
	}

	res = Validate(entity.Constitution, "articles_list", map[string]any{"descriptions": []any{}})
	if res.Passed {
		t.Fatal("empty descriptions should fail")
	}
}
