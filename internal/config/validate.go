package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/Faultbox/scenebake/internal/convert"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := convert.ParseGeometryTarget(c.Convert.GeometryTarget); err != nil {
		result = multierror.Append(result, fmt.Errorf("convert.geometry_target: %w", err))
	}
	if _, err := convert.ParseShadingModes(c.Convert.SupportedShaderModes); err != nil {
		result = multierror.Append(result, fmt.Errorf("convert.supported_shader_modes: %w", err))
	}
	if _, err := convert.ParseShadingModes(c.Convert.OverrideShaderModes); err != nil {
		result = multierror.Append(result, fmt.Errorf("convert.override_shader_modes: %w", err))
	}
	if _, err := convert.ParseAttributes(c.Convert.SupportedGeometryAttributes); err != nil {
		result = multierror.Append(result, fmt.Errorf("convert.supported_geometry_attributes: %w", err))
	}
	if _, err := convert.ParseAttributes(c.Convert.OverrideGeometryAttributes); err != nil {
		result = multierror.Append(result, fmt.Errorf("convert.override_geometry_attributes: %w", err))
	}

	ext := strings.TrimPrefix(c.Output.Extension, ".")
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		result = multierror.Append(result, fmt.Errorf("output.extension: invalid extension %q", c.Output.Extension))
	}
	if c.Output.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("output.workers: must be at least 1, got %d", c.Output.Workers))
	}
	if !logLevels[c.Logging.Level] {
		result = multierror.Append(result, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	return result.ErrorOrNil()
}

// ConverterOptions maps the config onto converter options. Collaborators other
// than the geometry converter are left for the caller to set.
func (c *Config) ConverterOptions() (convert.Options, error) {
	opts := convert.DefaultOptions()
	var err error

	if opts.GeometryTarget, err = convert.ParseGeometryTarget(c.Convert.GeometryTarget); err != nil {
		return opts, err
	}
	if opts.SupportedShading, err = convert.ParseShadingModes(c.Convert.SupportedShaderModes); err != nil {
		return opts, err
	}
	if opts.OverrideShading, err = convert.ParseShadingModes(c.Convert.OverrideShaderModes); err != nil {
		return opts, err
	}
	if opts.SupportedAttributes, err = convert.ParseAttributes(c.Convert.SupportedGeometryAttributes); err != nil {
		return opts, err
	}
	if opts.OverrideAttributes, err = convert.ParseAttributes(c.Convert.OverrideGeometryAttributes); err != nil {
		return opts, err
	}

	opts.BillboardTransform = c.Convert.BillboardTransform
	opts.VertexShaderPath = c.Shader.VertexPath
	opts.FragmentShaderPath = c.Shader.FragmentPath
	opts.Extension = c.Output.Extension
	return opts, nil
}
