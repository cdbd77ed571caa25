package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/giongto35/glctx/pkg/glctx"
	"github.com/spf13/pflag"
)

const testConfig = `
backend: glfw
context:
  major: 4
  minor: 6
  depth: true
lowPower: true
monitoring:
  metricEnabled: true
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	var conf Config
	if err := LoadConfig(&conf, writeConfig(t, testConfig)); err != nil {
		t.Fatal(err)
	}

	if conf.Backend != "glfw" {
		t.Errorf("backend %v, want glfw", conf.Backend)
	}
	if !conf.LowPower || !conf.Monitoring.MetricEnabled {
		t.Errorf("bools not loaded: %+v", conf)
	}
	want := glctx.ContextAttributes{Version: glctx.GLVersion{Major: 4, Minor: 6}, Flags: glctx.Depth}
	if got := conf.Context.Attributes(); got != want {
		t.Errorf("attributes %v, want %v", got, want)
	}
	// defaults
	if conf.Surface.Width != 640 || conf.Surface.Height != 480 {
		t.Errorf("surface %vx%v, want 640x480", conf.Surface.Width, conf.Surface.Height)
	}
	if conf.Monitoring.Port != 6601 {
		t.Errorf("monitoring port %v, want 6601", conf.Monitoring.Port)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("GLCTX_BACKEND", "sdl")
	t.Setenv("GLCTX_CONTEXT_MAJOR", "2")
	t.Setenv("GLCTX_SURFACE_WIDTH", "32")

	var conf Config
	if err := LoadConfig(&conf, writeConfig(t, testConfig)); err != nil {
		t.Fatal(err)
	}
	if conf.Backend != "sdl" {
		t.Errorf("backend %v is not sdl", conf.Backend)
	}
	if conf.Context.Major != 2 {
		t.Errorf("major %v is not 2", conf.Context.Major)
	}
	if conf.Surface.Width != 32 {
		t.Errorf("width %v is not 32", conf.Surface.Width)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("GLCTX_DEBUG", "true")

	var conf Config
	if err := LoadConfigEnv(&conf); err != nil {
		t.Fatal(err)
	}
	if conf.Backend != "sdl" || conf.Context.Major != 3 || conf.Context.Minor != 2 {
		t.Errorf("defaults not set: %+v", conf)
	}
	if !conf.Debug {
		t.Errorf("debug is not set")
	}
}

func TestFlagsOverride(t *testing.T) {
	var conf Config
	if err := LoadConfig(&conf, writeConfig(t, testConfig)); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	conf.WithFlags(fs)
	if err := fs.Parse([]string{"--backend", "sdl", "--stencil", "--width=100"}); err != nil {
		t.Fatal(err)
	}

	if conf.Backend != "sdl" {
		t.Errorf("backend %v is not sdl", conf.Backend)
	}
	if !conf.Context.Stencil || !conf.Context.Depth {
		t.Errorf("flags %v, want DEPTH|STENCIL", conf.Context.Attributes().Flags)
	}
	if conf.Surface.Width != 100 || conf.Surface.Height != 480 {
		t.Errorf("surface %vx%v, want 100x480", conf.Surface.Width, conf.Surface.Height)
	}
	if conf.Context.Major != 4 {
		t.Errorf("file value lost, major %v", conf.Context.Major)
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: nil, want: ""},
		{args: []string{"--backend", "glfw"}, want: ""},
		{args: []string{"-c", "/etc/glctx"}, want: "/etc/glctx"},
		{args: []string{"--depth", "--conf=configs", "--width", "10"}, want: "configs"},
	}
	for _, test := range tests {
		if got := Path(test.args); got != test.want {
			t.Errorf("Path(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := Config{Backend: "sdl", Context: ContextConfig{Major: 3, Minor: 2}, Surface: SurfaceConfig{Width: 1, Height: 1}}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := []func(c *Config){
		func(c *Config) { c.Backend = "cgl" },
		func(c *Config) { c.Context.Major = 300 },
		func(c *Config) { c.Surface.Height = 0 },
	}
	for i, mod := range bad {
		c := ok
		mod(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %v: no error for %+v", i, c)
		}
	}
}
