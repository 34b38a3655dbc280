package config

import (
	"testing"
)

func TestLoadPersonas_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadPersonas()
	if err != nil {
		t.Fatalf("LoadPersonas failed: %v", err)
	}

	if len(cfg.Personas) != len(DefaultPersonas()) {
		t.Errorf("expected %d default personas, got %d", len(DefaultPersonas()), len(cfg.Personas))
	}
}

func TestGetPersona(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := GetPersona("coder")
	if err != nil {
		t.Fatalf("GetPersona failed: %v", err)
	}

	if p.SystemInstruction == "" {
		t.Error("coder persona should carry a system instruction")
	}
}

func TestGetPersona_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := GetPersona("nope"); err == nil {
		t.Error("expected error for unknown persona")
	}
}

func TestAddPersona(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Persona{Name: "pirate", Description: "Arr", SystemInstruction: "Talk like a pirate."}
	if err := AddPersona(p); err != nil {
		t.Fatalf("AddPersona failed: %v", err)
	}

	got, err := GetPersona("pirate")
	if err != nil {
		t.Fatalf("GetPersona after add failed: %v", err)
	}
	if got.SystemInstruction != p.SystemInstruction {
		t.Errorf("SystemInstruction = %q, want %q", got.SystemInstruction, p.SystemInstruction)
	}
}

func TestAddPersona_Duplicate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := AddPersona(Persona{Name: "coder"}); err == nil {
		t.Error("expected error adding a persona with an existing name")
	}
}

func TestAddPersona_EmptyName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := AddPersona(Persona{}); err == nil {
		t.Error("expected error adding a persona without a name")
	}
}

func TestDeletePersona(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := AddPersona(Persona{Name: "temp", SystemInstruction: "x"}); err != nil {
		t.Fatalf("AddPersona failed: %v", err)
	}
	if err := DeletePersona("temp"); err != nil {
		t.Fatalf("DeletePersona failed: %v", err)
	}
	if _, err := GetPersona("temp"); err == nil {
		t.Error("persona should be gone after delete")
	}
}

func TestDeletePersona_Default(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := DeletePersona("default"); err == nil {
		t.Error("default persona must not be deletable")
	}
}

func TestMergePersonas_UserOverrideWins(t *testing.T) {
	defaults := DefaultPersonas()
	custom := []Persona{{Name: "coder", Description: "mine", SystemInstruction: "Custom coder."}}

	merged := mergePersonas(defaults, custom)

	var got *Persona
	for i := range merged {
		if merged[i].Name == "coder" {
			got = &merged[i]
		}
	}
	if got == nil {
		t.Fatal("coder persona missing after merge")
	}
	if got.SystemInstruction != "Custom coder." {
		t.Errorf("merge should prefer user entry, got %q", got.SystemInstruction)
	}
}
