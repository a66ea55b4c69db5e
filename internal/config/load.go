package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when no --config flag is given.
const EnvConfig = "SCENEBAKE_CONFIG"

type codec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

var (
	yamlCodec = codec{unmarshal: yaml.Unmarshal, marshal: yaml.Marshal}
	tomlCodec = codec{unmarshal: toml.Unmarshal, marshal: toml.Marshal}
)

// codecFor picks TOML for .toml files and YAML for everything else.
func codecFor(path string) codec {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return tomlCodec
	}
	return yamlCodec
}

// Load builds the config from defaults, then a config file, then flags.
// The file is the --config flag, else $SCENEBAKE_CONFIG, else the first
// one found by findConfigFile. flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	path := flags.ConfigPath()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	flags.apply(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing candidate: the working directory
// first, then ConfigDir. YAML wins over TOML in the same place.
func findConfigFile() string {
	dir := ConfigDir()
	for _, path := range []string{
		"./scenebake.yaml",
		"./scenebake.toml",
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.toml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, _ := homedir.Dir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "scenebake")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "scenebake")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scenebake")
	}
	return filepath.Join(home, ".config", "scenebake")
}

// loadFromFile decodes path over cfg; keys absent from the file keep their
// current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return codecFor(path).unmarshal(data, cfg)
}
