package glctx

import (
	"fmt"

	"github.com/giongto35/glctx/pkg/logger"
	"github.com/giongto35/glctx/pkg/native"
	"github.com/gofrs/uuid"
)

// Adapter is the GPU a device renders with.
type Adapter struct {
	// LowPower opts into the integrated (or otherwise offline) renderers.
	LowPower bool
}

// Connection is an open native GL API with everything devices share:
// the creation registrar, the per-thread function tables, the surface
// subsystem, logging and metrics.
type Connection struct {
	id       uuid.UUID
	api      native.API
	reg      *Registrar
	funcs    *FunctionRegistry
	surfaces Surfaces
	log      *logger.Logger
	metrics  *Metrics
	onLeak   func(ID)
	lowPower bool
}

type Option func(*Connection)

func WithRegistrar(r *Registrar) Option { return func(c *Connection) { c.reg = r } }

func WithFunctionLoader(load FunctionLoader) Option {
	return func(c *Connection) { c.funcs = NewFunctionRegistry(load) }
}

func WithFunctionRegistry(r *FunctionRegistry) Option { return func(c *Connection) { c.funcs = r } }

func WithSurfaces(s Surfaces) Option { return func(c *Connection) { c.surfaces = s } }

func WithLogger(l *logger.Logger) Option { return func(c *Connection) { c.log = l } }

func WithMetrics(m *Metrics) Option { return func(c *Connection) { c.metrics = m } }

// WithLeakHandler replaces the panic raised when a live context is garbage
// collected. The handler runs on the finalizer goroutine.
func WithLeakHandler(fn func(ID)) Option { return func(c *Connection) { c.onLeak = fn } }

// WithLowPower makes CreateAdapter return a low-power adapter.
func WithLowPower(on bool) Option { return func(c *Connection) { c.lowPower = on } }

func leakPanic(id ID) {
	panic(fmt.Sprintf("glctx: context %d must be destroyed explicitly with DestroyContext", id))
}

// NewConnection opens a connection over a native API.
func NewConnection(api native.API, opts ...Option) (*Connection, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("connection id: %w", err)
	}
	c := &Connection{id: id, api: api, onLeak: leakPanic}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		c.reg = DefaultRegistrar()
	}
	if c.funcs == nil {
		c.funcs = NewFunctionRegistry(nil)
	}
	if c.log == nil {
		c.log = logger.Default()
	}
	c.log = c.log.Extend(c.log.With().Str("m", "glctx").Str("conn", id.String()[:8]))
	if c.metrics == nil {
		c.metrics = NewMetrics(nil, id.String())
	}
	if c.surfaces == nil {
		c.surfaces = NewOffscreen(nil)
	}
	return c, nil
}

func (c *Connection) ID() uuid.UUID { return c.id }

func (c *Connection) API() native.API { return c.api }

func (c *Connection) Registrar() *Registrar { return c.reg }

func (c *Connection) Surfaces() Surfaces { return c.surfaces }

// CreateAdapter returns the default adapter of the connection.
func (c *Connection) CreateAdapter() (Adapter, error) { return Adapter{LowPower: c.lowPower}, nil }

// CreateDevice opens a device on the adapter.
func (c *Connection) CreateDevice(a Adapter) (*Device, error) {
	d := &Device{conn: c, adapter: a, log: c.log}
	c.log.Debug().Msgf("device opened (low power: %v)", a.LowPower)
	return d, nil
}
