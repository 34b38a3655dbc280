package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvAPIKey is the environment variable consulted before the key file.
const EnvAPIKey = "GEMINI_API_KEY"

const apiKeyFileName = "api_key"

// GetAPIKeyPath returns the path to the stored API key file
func GetAPIKeyPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, apiKeyFileName), nil
}

// LoadAPIKey returns the Gemini API key, preferring the environment
// variable over the key file. An empty string means no key is configured;
// that is not an error here — requests are attempted anyway and fail at
// call time.
func LoadAPIKey() string {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}

	path, err := GetAPIKeyPath()
	if err != nil {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// SaveAPIKey stores the API key in the config directory with 0o600
func SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	path, err := GetAPIKeyPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write API key: %w", err)
	}

	return nil
}
