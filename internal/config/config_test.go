package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenebake/internal/convert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test convert defaults
	if cfg.Convert.BillboardTransform {
		t.Error("expected billboard_transform to be false by default")
	}
	if cfg.Convert.GeometryTarget != "vertex_index_draw" {
		t.Errorf("expected geometry target vertex_index_draw, got %s", cfg.Convert.GeometryTarget)
	}

	// Test output defaults
	if cfg.Output.Extension != "vsgt" {
		t.Errorf("expected extension 'vsgt', got %s", cfg.Output.Extension)
	}
	if cfg.Output.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Output.Workers)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "scenebake.yaml")

	yamlContent := `
convert:
  billboard_transform: true
  geometry_target: commands
  supported_shader_modes: [lighting, material, diffuse_map]
  override_geometry_attributes: [color_overall]

shader:
  vertex_path: "shaders/custom.vert.wgsl"

output:
  extension: vsgb
  dir: out
  recursive: true
  workers: 8

logging:
  level: "debug"
  log_file: "scenebake.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if !cfg.Convert.BillboardTransform {
		t.Error("expected billboard_transform to be true")
	}
	if cfg.Convert.GeometryTarget != "commands" {
		t.Errorf("expected geometry target commands, got %s", cfg.Convert.GeometryTarget)
	}
	if cfg.Shader.VertexPath != "shaders/custom.vert.wgsl" {
		t.Errorf("unexpected vertex path %s", cfg.Shader.VertexPath)
	}
	if cfg.Output.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Output.Workers)
	}
	if !cfg.Output.Recursive {
		t.Error("expected recursive to be true")
	}
	if cfg.Logging.LogFile != "scenebake.log" {
		t.Errorf("expected log file 'scenebake.log', got %s", cfg.Logging.LogFile)
	}

	// Fields absent from the file keep their defaults
	if !cfg.Shader.Validate {
		t.Error("expected validate to keep its default")
	}

	opts, err := cfg.ConverterOptions()
	require.NoError(t, err)
	assert.Equal(t, convert.CommandsTarget, opts.GeometryTarget)
	assert.Equal(t, convert.Lighting|convert.Material|convert.DiffuseMap, opts.SupportedShading)
	assert.Equal(t, convert.ColorOverall, opts.OverrideAttributes)
	assert.Equal(t, convert.AllAttributes, opts.SupportedAttributes)
	assert.Equal(t, "vsgb", opts.Extension)
	assert.True(t, opts.BillboardTransform)
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "scenebake.toml")

	tomlContent := `
[convert]
geometry_target = "geometry"
supported_geometry_attributes = ["vertex", "normal"]

[output]
extension = "vsgb"
workers = 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(tomlContent), 0644))

	cfg := Default()
	require.NoError(t, loadFromFile(cfg, configPath))
	assert.Equal(t, "geometry", cfg.Convert.GeometryTarget)
	assert.Equal(t, []string{"vertex", "normal"}, cfg.Convert.SupportedGeometryAttributes)
	assert.Equal(t, 2, cfg.Output.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
output:
  workers: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/scenebake.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create scenebake.toml in current directory
	if err := os.WriteFile(filepath.Join(tmpDir, "scenebake.toml"), []byte("[output]\nworkers = 1\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	assert.Equal(t, "./scenebake.toml", findConfigFile())

	// YAML wins over TOML
	if err := os.WriteFile(filepath.Join(tmpDir, "scenebake.yaml"), []byte("output:\n  workers: 1\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	assert.Equal(t, "./scenebake.yaml", findConfigFile())
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "geometry target",
			args: []string{"--geometry-target", "geometry"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "geometry", cfg.Convert.GeometryTarget)
			},
		},
		{
			name: "mask lists",
			args: []string{"--supported-shading", "lighting,blend", "--override-attributes", "color_overall"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"lighting", "blend"}, cfg.Convert.SupportedShaderModes)
				assert.Equal(t, []string{"color_overall"}, cfg.Convert.OverrideGeometryAttributes)
				assert.Equal(t, []string{"all"}, cfg.Convert.SupportedGeometryAttributes)
			},
		},
		{
			name: "output flags",
			args: []string{"-o", "out", "-e", "vsgb", "-r", "-j", "16"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, OutputConfig{Extension: "vsgb", Dir: "out", Recursive: true, Workers: 16}, cfg.Output)
			},
		},
		{
			name: "unset flags keep defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags := BindFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			// Apply flags to default config
			cfg := Default()
			flags.apply(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "scenebake.yaml")

	yamlContent := `
output:
  extension: vsgb
  workers: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", configPath, "--workers", "6"}))

	// Load config
	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Workers should be from flag (6), not file (2)
	if cfg.Output.Workers != 6 {
		t.Errorf("expected 6 workers from flag, got %d", cfg.Output.Workers)
	}

	// Extension should be from file since no flag override
	if cfg.Output.Extension != "vsgb" {
		t.Errorf("expected extension vsgb from file, got %s", cfg.Output.Extension)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	envPath := filepath.Join(tmpDir, "env.toml")
	require.NoError(t, os.WriteFile(envPath, []byte("[output]\nworkers = 3\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "scenebake.yaml"), []byte("output:\n  workers: 5\n"), 0644))
	t.Setenv(EnvConfig, envPath)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Output.Workers)

	// an explicit flag beats the environment
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", filepath.Join(tmpDir, "scenebake.yaml")}))
	cfg, err = Load(flags)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Output.Workers)

	t.Setenv(EnvConfig, filepath.Join(tmpDir, "missing.yaml"))
	_, err = Load(nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Convert.GeometryTarget = "mesh"
	cfg.Convert.OverrideShaderModes = []string{"glow"}
	cfg.Output.Extension = "."
	cfg.Output.Workers = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"geometry_target", "override_shader_modes", "output.extension", "output.workers", "logging.level"} {
		assert.Contains(t, err.Error(), key)
	}

	_, err = cfg.ConverterOptions()
	assert.Error(t, err)
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.Output.Extension = "vsgb"
	cfg.Convert.OverrideShaderModes = []string{"blend"}

	for _, name := range []string{"nested/scenebake.yaml", "nested/scenebake.toml"} {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, cfg.SaveTo(path))

		loaded := Default()
		require.NoError(t, loadFromFile(loaded, path))
		assert.Equal(t, cfg.Output, loaded.Output, name)
		assert.Equal(t, cfg.Logging, loaded.Logging, name)
		assert.Equal(t, []string{"blend"}, loaded.Convert.OverrideShaderModes, name)
		assert.Equal(t, []string{"all"}, loaded.Convert.SupportedShaderModes, name)
	}
}
