// glinfo creates a GL context with the configured attributes, prints what the
// driver gave back and runs one offscreen render cycle on it.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"runtime"
	"time"

	"github.com/giongto35/glctx/pkg/config"
	"github.com/giongto35/glctx/pkg/glctx"
	"github.com/giongto35/glctx/pkg/logger"
	"github.com/giongto35/glctx/pkg/monitoring"
	"github.com/giongto35/glctx/pkg/native"
	"github.com/giongto35/glctx/pkg/native/glfw"
	"github.com/giongto35/glctx/pkg/native/sdl"
	"github.com/giongto35/glctx/pkg/opengl"
	gos "github.com/giongto35/glctx/pkg/os"
	"github.com/giongto35/glctx/pkg/thread"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
)

var Version = "?"

type backend interface {
	native.API
	Close()
}

func open(name string) (backend, error) {
	switch name {
	case "sdl":
		return sdl.New()
	case "glfw":
		return glfw.New()
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

func loadConfig() (*config.Config, error) {
	var conf config.Config
	if err := config.LoadConfig(&conf, config.Path(os.Args[1:])); err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	conf.WithFlags(fs)
	fs.StringP("conf", "c", "", "Set custom configuration file path")
	_ = fs.Parse(os.Args[1:])
	return &conf, conf.Validate()
}

func run() error {
	conf, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.NewConsole(conf.Debug, "glinfo", false)
	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	// contexts are current on the OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	reg := prometheus.NewRegistry()
	if conf.Monitoring.IsEnabled() {
		mon, err := monitoring.New(conf.Monitoring, reg, log)
		if err != nil {
			return err
		}
		mon.Run()
		defer func() {
			if linger := time.Duration(conf.Monitoring.Linger) * time.Second; linger > 0 {
				log.Info().Msgf("monitoring lingers for %v", linger)
				gos.Linger(linger, gos.ExpectTermination())
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mon.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("monitoring shutdown")
			}
		}()
	}

	api, err := open(conf.Backend)
	if err != nil {
		return err
	}
	defer api.Close()

	off := glctx.NewOffscreen(opengl.NewFramebuffers())
	conn, err := glctx.NewConnection(api,
		glctx.WithFunctionLoader(opengl.Load),
		glctx.WithSurfaces(off),
		glctx.WithLogger(log),
		glctx.WithMetrics(glctx.NewMetrics(reg, conf.Backend)),
		glctx.WithLowPower(conf.LowPower),
	)
	if err != nil {
		return err
	}
	adapter, err := conn.CreateAdapter()
	if err != nil {
		return err
	}
	dev, err := conn.CreateDevice(adapter)
	if err != nil {
		return err
	}

	attrs := conf.Context.Attributes()
	desc, err := dev.CreateContextDescriptor(attrs)
	if err != nil {
		return err
	}
	defer desc.Release()
	log.Info().Msgf("requested %v, got %v", attrs, dev.ContextDescriptorAttributes(desc))

	return dev.WithContext(desc, func(c *glctx.Context) error {
		log.Info().Msgf("context %v: %v", dev.ContextID(c), opengl.Info())
		return render(dev, off, c, conf.Surface, log)
	})
}

// render clears an offscreen surface bound to the context and reads a pixel back.
func render(dev *glctx.Device, off *glctx.Offscreen, c *glctx.Context, conf config.SurfaceConfig, log *logger.Logger) error {
	desc := dev.ContextDescriptor(c)
	attrs := dev.ContextDescriptorAttributes(desc)
	desc.Release()

	size := image.Pt(conf.Width, conf.Height)
	s, err := off.Create(c, size, attrs.Flags.Has(glctx.Depth), attrs.Flags.Has(glctx.Stencil))
	if err != nil {
		return err
	}
	if err = dev.BindSurfaceToContext(c, s); err != nil {
		return err
	}

	info, err := dev.ContextSurfaceInfo(c)
	if err != nil {
		return err
	}
	opengl.Clear(info.FramebufferObject, 1, 0.5, 0, 1)
	if e := opengl.Error(); e != 0 {
		log.Warn().Msgf("GL error 0x%X", e)
	}

	unbound, err := dev.UnbindSurfaceFromContext(c)
	if err != nil {
		return err
	}
	px := opengl.ReadPixels(info.FramebufferObject, size.X, size.Y)
	log.Info().Msgf("surface %v %v fbo %v, first pixel %v", info.ID, info.Size, info.FramebufferObject, px[:4])
	return off.Destroy(c, unbound)
}

func main() {
	var err error
	thread.MainWrapMaybe(func() { err = run() })
	if err != nil {
		fmt.Fprintf(os.Stderr, "glinfo: %v\n", err)
		os.Exit(1)
	}
}
