package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides bound to a flag set. Only flags the user
// actually set override the config.
type Flags struct {
	set *pflag.FlagSet

	configPath         string
	debug              bool
	billboardTransform bool
	geometryTarget     string
	supportedShading   []string
	supportedAttrs     []string
	overrideShading    []string
	overrideAttrs      []string
	vertexShader       string
	fragmentShader     string
	extension          string
	outputDir          string
	recursive          bool
	workers            int
	logFile            string
}

// BindFlags registers the config flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{set: fs}
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.billboardTransform, "billboard-transform", false, "Wrap billboard instances in transforms")
	fs.StringVar(&f.geometryTarget, "geometry-target", "", "Draw node form: vertex_index_draw, geometry or commands")
	fs.StringSliceVar(&f.supportedShading, "supported-shading", nil, "Shader modes the target supports")
	fs.StringSliceVar(&f.supportedAttrs, "supported-attributes", nil, "Geometry attributes the target supports")
	fs.StringSliceVar(&f.overrideShading, "override-shading", nil, "Shader modes forced on every drawable")
	fs.StringSliceVar(&f.overrideAttrs, "override-attributes", nil, "Geometry attributes forced on every drawable")
	fs.StringVar(&f.vertexShader, "vertex-shader", "", "Vertex shader template path")
	fs.StringVar(&f.fragmentShader, "fragment-shader", "", "Fragment shader template path")
	fs.StringVarP(&f.extension, "extension", "e", "", "Extension of converted files")
	fs.StringVarP(&f.outputDir, "output", "o", "", "Output directory")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "Convert paged LOD files referenced by the input")
	fs.IntVarP(&f.workers, "workers", "j", 0, "Files converted in parallel")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path")
	return f
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.configPath
}

func (f *Flags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("billboard-transform") {
		cfg.Convert.BillboardTransform = f.billboardTransform
	}
	if f.geometryTarget != "" {
		cfg.Convert.GeometryTarget = f.geometryTarget
	}
	if f.changed("supported-shading") {
		cfg.Convert.SupportedShaderModes = f.supportedShading
	}
	if f.changed("supported-attributes") {
		cfg.Convert.SupportedGeometryAttributes = f.supportedAttrs
	}
	if f.changed("override-shading") {
		cfg.Convert.OverrideShaderModes = f.overrideShading
	}
	if f.changed("override-attributes") {
		cfg.Convert.OverrideGeometryAttributes = f.overrideAttrs
	}
	if f.vertexShader != "" {
		cfg.Shader.VertexPath = f.vertexShader
	}
	if f.fragmentShader != "" {
		cfg.Shader.FragmentPath = f.fragmentShader
	}
	if f.extension != "" {
		cfg.Output.Extension = f.extension
	}
	if f.outputDir != "" {
		cfg.Output.Dir = f.outputDir
	}
	if f.changed("recursive") {
		cfg.Output.Recursive = f.recursive
	}
	if f.workers > 0 {
		cfg.Output.Workers = f.workers
	}
	if f.logFile != "" {
		cfg.Logging.LogFile = f.logFile
	}
}
