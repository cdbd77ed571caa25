package config

import (
	"fmt"

	"github.com/giongto35/glctx/pkg/config/monitoring"
	"github.com/giongto35/glctx/pkg/glctx"
	"github.com/spf13/pflag"
)

type Config struct {
	// Backend is the native GL API: sdl or glfw.
	Backend    string `default:"sdl"`
	Context    ContextConfig
	Surface    SurfaceConfig
	LowPower   bool
	Debug      bool
	Monitoring monitoring.Config
}

type ContextConfig struct {
	Major   int `default:"3"`
	Minor   int `default:"2"`
	Alpha   bool
	Depth   bool
	Stencil bool
}

type SurfaceConfig struct {
	Width  int `default:"640"`
	Height int `default:"480"`
}

// Attributes converts the config into context attributes.
func (c ContextConfig) Attributes() glctx.ContextAttributes {
	var flags glctx.ContextAttributeFlags
	flags.Set(glctx.Alpha, c.Alpha)
	flags.Set(glctx.Depth, c.Depth)
	flags.Set(glctx.Stencil, c.Stencil)
	return glctx.ContextAttributes{
		Version: glctx.GLVersion{Major: uint8(c.Major), Minor: uint8(c.Minor)},
		Flags:   flags,
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case "sdl", "glfw":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Context.Major < 0 || c.Context.Major > 255 || c.Context.Minor < 0 || c.Context.Minor > 255 {
		return fmt.Errorf("bad GL version %v.%v", c.Context.Major, c.Context.Minor)
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return fmt.Errorf("bad surface size %vx%v", c.Surface.Width, c.Surface.Height)
	}
	return nil
}

// WithFlags binds command line flags to the config, current values become
// the flag defaults so that flags override the loaded file.
func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.StringVar(&c.Backend, "backend", c.Backend, "Native GL API (sdl, glfw)")
	fs.IntVar(&c.Context.Major, "gl.major", c.Context.Major, "GL major version")
	fs.IntVar(&c.Context.Minor, "gl.minor", c.Context.Minor, "GL minor version")
	fs.BoolVar(&c.Context.Alpha, "alpha", c.Context.Alpha, "Request an alpha channel")
	fs.BoolVar(&c.Context.Depth, "depth", c.Context.Depth, "Request a depth buffer")
	fs.BoolVar(&c.Context.Stencil, "stencil", c.Context.Stencil, "Request a stencil buffer")
	fs.IntVar(&c.Surface.Width, "width", c.Surface.Width, "Surface width")
	fs.IntVar(&c.Surface.Height, "height", c.Surface.Height, "Surface height")
	fs.BoolVar(&c.LowPower, "lowpower", c.LowPower, "Allow offline (low power) renderers")
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Debug logs")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	fs.BoolVar(&c.Monitoring.MetricEnabled, "monitoring.metrics", c.Monitoring.MetricEnabled, "Serve Prometheus metrics")
	fs.BoolVar(&c.Monitoring.ProfilingEnabled, "monitoring.pprof", c.Monitoring.ProfilingEnabled, "Serve pprof")
	return c
}
