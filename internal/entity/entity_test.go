package entity

import "testing"

// --- ValidateType ---

func TestValidateType_AllKnownTypes(t *testing.T) {
	for _, typ := range All {
		if err := ValidateType(typ); err != nil {
			t.Errorf("ValidateType(%q) = %v, want nil", typ, err)
		}
	}
}

func TestValidateType_Unknown(t *testing.T) {
	err := ValidateType(Type("epic"))
	if err == nil {
		t.Fatal("ValidateType on unknown type should fail")
	}
}

func TestValidateType_Empty(t *testing.T) {
	if err := ValidateType(""); err == nil {
		t.Fatal("ValidateType on empty type should fail")
	}
}

// --- Prefix ---

func TestPrefix_KnownTypes(t *testing.T) {
	want := map[Type]string{
		Requirement:  "req",
		Component:    "comp",
		Plan:         "plan",
		Constitution: "const",
		Decision:     "dec",
	}
	for typ, prefix := range want {
		if got := Prefix(typ); got != prefix {
			t.Errorf("Prefix(%q) = %q, want %q", typ, got, prefix)
		}
	}
}

func TestPrefix_Unknown(t *testing.T) {
	if got := Prefix(Type("epic")); got != "" {
		t.Errorf("Prefix for unknown type = %q, want empty", got)
	}
}

func TestAll_CoversEveryValidType(t *testing.T) {
	if len(All) != len(validTypes) {
		t.Errorf("All has %d types, validTypes has %d", len(All), len(validTypes))
	}
	for _, typ := range All {
		if !validTypes[typ] {
			t.Errorf("All contains %q which is not in validTypes", typ)
		}
	}
}
