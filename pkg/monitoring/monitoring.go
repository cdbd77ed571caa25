// Package monitoring serves Prometheus metrics and pprof over HTTP.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/giongto35/glctx/pkg/config/monitoring"
	"github.com/giongto35/glctx/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Monitoring struct {
	conf     monitoring.Config
	server   http.Server
	listener net.Listener
	log      *logger.Logger
}

// New creates new monitoring service.
// Metrics are gathered from g, prometheus.DefaultGatherer when nil.
func New(conf monitoring.Config, g prometheus.Gatherer, log *logger.Logger) (*Monitoring, error) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	log = log.Extend(log.With().Str("m", "monitoring"))

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", conf.Port))
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	m := &Monitoring{
		conf:     conf,
		listener: listener,
		log:      log,
		server: http.Server{
			IdleTimeout:  120 * time.Second,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}

	h := http.NewServeMux()
	if conf.ProfilingEnabled {
		prefix := conf.URLPrefix + "/debug/pprof"
		log.Info().Msgf("Profiling is enabled at %v", m.Addr()+prefix)
		h.HandleFunc(prefix+"/", pprof.Index)
		h.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		h.HandleFunc(prefix+"/profile", pprof.Profile)
		h.HandleFunc(prefix+"/symbol", pprof.Symbol)
		h.HandleFunc(prefix+"/trace", pprof.Trace)
		// custom pprof prefixes don't reach the named profiles through Index
		for _, p := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			h.Handle(prefix+"/"+p, pprof.Handler(p))
		}
	}
	if conf.MetricEnabled {
		path := conf.URLPrefix + "/metrics"
		log.Info().Msgf("Prometheus metrics are enabled at %v", m.Addr()+path)
		h.Handle(path, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	m.server.Handler = h
	return m, nil
}

// Addr is the address the server listens on.
func (m *Monitoring) Addr() string { return m.listener.Addr().String() }

// Port is the port the server listens on, useful with port 0.
func (m *Monitoring) Port() int { return m.listener.Addr().(*net.TCPAddr).Port }

func (m *Monitoring) Run() { go m.run() }

func (m *Monitoring) run() {
	m.log.Info().Msgf("Starting monitoring server at %v", m.Addr())
	err := m.server.Serve(m.listener)
	if errors.Is(err, http.ErrServerClosed) {
		m.log.Debug().Msg("monitoring server was closed")
		return
	}
	m.log.Error().Err(err).Msg("monitoring server failed")
}

func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.log.Info().Msg("Shutting down monitoring server")
	return m.server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s:%d", m.conf.URLPrefix, m.conf.Port)
}
