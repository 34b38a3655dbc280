package models

import (
	"strings"
	"testing"
)

func TestModelFromName_Known(t *testing.T) {
	tests := []struct {
		name string
		want Model
	}{
		{"gemini-2.5-flash", Model25Flash},
		{"gemini-2.5-pro", Model25Pro},
		{"gemini-2.0-flash", Model20Flash},
	}

	for _, tt := range tests {
		got := ModelFromName(tt.name)
		if got != tt.want {
			t.Errorf("ModelFromName(%s) = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestModelFromName_Unknown(t *testing.T) {
	got := ModelFromName("gemini-9.9-experimental")

	if got.Name != "gemini-9.9-experimental" {
		t.Errorf("Name = %s, want passthrough of unknown identifier", got.Name)
	}
	if got.Description != "" {
		t.Errorf("Description = %s, want empty for unknown model", got.Description)
	}
}

func TestAllModels_ContainsDefault(t *testing.T) {
	found := false
	for _, m := range AllModels() {
		if m == DefaultModel {
			found = true
		}
	}
	if !found {
		t.Error("DefaultModel not present in AllModels()")
	}
}

func TestTitlePrompt_HasPlaceholders(t *testing.T) {
	if strings.Count(TitlePrompt, "%s") != 2 {
		t.Errorf("TitlePrompt should embed exactly two strings, got %d placeholders",
			strings.Count(TitlePrompt, "%s"))
	}
}
