package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory and returns the path written.
func (c *Config) Save() (string, error) {
	path := filepath.Join(ConfigDir(), FileName)
	return path, c.SaveTo(path)
}

// SaveTo writes the config to a specific path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// YAML renders the config as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
