package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is where Save writes and where Load looks after the working
// directory.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save writes the config to DefaultPath.
func (c *Config) Save() error {
	return c.SaveTo(DefaultPath())
}

// SaveTo writes the config to path, creating its directory. A .toml extension
// selects TOML.
func (c *Config) SaveTo(path string) error {
	data, err := codecFor(path).marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes the config as YAML, or TOML when asTOML is set.
func (c *Config) Marshal(asTOML bool) ([]byte, error) {
	if asTOML {
		return tomlCodec.marshal(c)
	}
	return yamlCodec.marshal(c)
}
