package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persona is a named system-instruction preset. Selecting a persona copies
// its instruction into the settings record; it is not referenced afterwards.
type Persona struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	SystemInstruction string `json:"system_instruction"`
}

// PersonaConfig stores all personas
type PersonaConfig struct {
	Personas []Persona `json:"personas"`
}

// DefaultPersonas returns pre-configured personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:              "default",
			Description:       "General-purpose assistant",
			SystemInstruction: "You are a helpful assistant.",
		},
		{
			Name:        "coder",
			Description: "Programming assistant",
			SystemInstruction: "You are an expert software engineer. Answer with working code " +
				"first and a short explanation after. Prefer standard library solutions.",
		},
		{
			Name:        "writer",
			Description: "Writing and editing assistant",
			SystemInstruction: "You are an editor. Improve clarity and flow, keep the author's " +
				"voice, and explain significant changes briefly.",
		},
		{
			Name:        "concise",
			Description: "Short answers only",
			SystemInstruction: "Answer in as few words as possible. No preamble, no caveats " +
				"unless they change the answer.",
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.json"), nil
}

// LoadPersonas loads the persona configuration, merging user entries over
// the built-in defaults so customizations of a default name win.
func LoadPersonas() (*PersonaConfig, error) {
	path, err := GetPersonasPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PersonaConfig{Personas: DefaultPersonas()}, nil
		}
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}

	var cfg PersonaConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	cfg.Personas = mergePersonas(DefaultPersonas(), cfg.Personas)
	return &cfg, nil
}

// SavePersonas saves the persona configuration
func SavePersonas(cfg *PersonaConfig) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	path, err := GetPersonasPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal personas: %w", err)
	}

	// 0o600: personas may contain custom system instructions
	return os.WriteFile(path, data, 0o600)
}

// GetPersona returns a persona by name
func GetPersona(name string) (*Persona, error) {
	cfg, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	for _, p := range cfg.Personas {
		if p.Name == name {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("persona '%s' not found", name)
}

// AddPersona adds a new persona
func AddPersona(persona Persona) error {
	if persona.Name == "" {
		return fmt.Errorf("persona name is required")
	}

	cfg, err := LoadPersonas()
	if err != nil {
		return err
	}

	for _, p := range cfg.Personas {
		if p.Name == persona.Name {
			return fmt.Errorf("persona '%s' already exists", persona.Name)
		}
	}

	cfg.Personas = append(cfg.Personas, persona)
	return SavePersonas(cfg)
}

// DeletePersona removes a persona by name
func DeletePersona(name string) error {
	if name == "default" {
		return fmt.Errorf("cannot delete the default persona")
	}

	cfg, err := LoadPersonas()
	if err != nil {
		return err
	}

	kept := make([]Persona, 0, len(cfg.Personas))
	found := false
	for _, p := range cfg.Personas {
		if p.Name == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}

	if !found {
		return fmt.Errorf("persona '%s' not found", name)
	}

	cfg.Personas = kept
	return SavePersonas(cfg)
}

func mergePersonas(defaults, custom []Persona) []Persona {
	result := make([]Persona, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.Name == cp.Name {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}
