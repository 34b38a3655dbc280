// Package config handles settings and credential storage for gemchat.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/diogo/gemchat/internal/models"
)

// Settings is the single global configuration record.
type Settings struct {
	// Model is the Gemini model identifier used for every request.
	// It is not validated locally; an unknown identifier fails at the API.
	Model string `json:"model"`
	// SystemInstruction is the persona/behavior text applied to every
	// model invocation across all sessions.
	SystemInstruction string `json:"system_instruction"`
	// CopyToClipboard enables the ctrl+y copy-last-reply action in the TUI.
	CopyToClipboard bool `json:"copy_to_clipboard"`
}

// DefaultSettings returns the in-code default configuration
func DefaultSettings() Settings {
	return Settings{
		Model:             models.DefaultModel.Name,
		SystemInstruction: "You are a helpful assistant.",
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".gemchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetSettingsPath returns the path to the settings file
func GetSettingsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

// loadSettings reads settings from path, falling back to defaults when the
// file is missing or unparsable. A parse failure is reported so callers can
// log it; the returned settings are always usable.
func loadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, nil
}

func saveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Store holds the current settings in memory and mirrors every change to
// disk. The in-memory record stays authoritative when a write fails.
type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

// NewStore creates a settings store backed by the file at path.
// Missing or corrupt files start the store with defaults.
func NewStore(path string) *Store {
	settings, err := loadSettings(path)
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
	}
	return &Store{path: path, settings: settings}
}

// DefaultStore creates a store at the default settings location
func DefaultStore() (*Store, error) {
	path, err := GetSettingsPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// Get returns the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Set replaces the settings and persists them. A persistence failure is
// logged only; the new settings remain in effect for this process.
func (s *Store) Set(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := saveSettings(s.path, settings); err != nil {
		log.Printf("config: failed to persist settings: %v", err)
	}
}
