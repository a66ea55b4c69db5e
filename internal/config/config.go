// Package config handles scenebake configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert" toml:"convert"`
	Shader  ShaderConfig  `yaml:"shader" toml:"shader"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ConvertConfig holds graph conversion settings. Mask lists hold lower_snake
// names, or "all" / "none".
type ConvertConfig struct {
	BillboardTransform          bool     `yaml:"billboard_transform" toml:"billboard_transform"`
	GeometryTarget              string   `yaml:"geometry_target" toml:"geometry_target"` // vertex_index_draw, geometry or commands
	SupportedShaderModes        []string `yaml:"supported_shader_modes" toml:"supported_shader_modes"`
	SupportedGeometryAttributes []string `yaml:"supported_geometry_attributes" toml:"supported_geometry_attributes"`
	OverrideShaderModes         []string `yaml:"override_shader_modes" toml:"override_shader_modes"`
	OverrideGeometryAttributes  []string `yaml:"override_geometry_attributes" toml:"override_geometry_attributes"`
}

// ShaderConfig holds shader template paths. Empty paths use the built-in templates.
type ShaderConfig struct {
	VertexPath   string `yaml:"vertex_path" toml:"vertex_path"`
	FragmentPath string `yaml:"fragment_path" toml:"fragment_path"`
	Validate     bool   `yaml:"validate" toml:"validate"`
}

// OutputConfig holds where and how converted files are written.
type OutputConfig struct {
	Extension string `yaml:"extension" toml:"extension"`
	Dir       string `yaml:"dir" toml:"dir"`
	Recursive bool   `yaml:"recursive" toml:"recursive"` // follow paged LOD files
	Workers   int    `yaml:"workers" toml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			BillboardTransform:          false,
			GeometryTarget:              "vertex_index_draw",
			SupportedShaderModes:        []string{"all"},
			SupportedGeometryAttributes: []string{"all"},
			OverrideShaderModes:         []string{},
			OverrideGeometryAttributes:  []string{},
		},
		Shader: ShaderConfig{
			Validate: true,
		},
		Output: OutputConfig{
			Extension: "vsgt",
			Dir:       ".",
			Recursive: false,
			Workers:   4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
