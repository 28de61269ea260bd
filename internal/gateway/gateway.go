// Package gateway exposes a running simulation over HTTP: health, the live
// intersection state, the vehicle registry, Prometheus metrics, and a
// websocket stream of rotation and passage events.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/logging"
	"github.com/flemzord/junction/internal/simulation"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Source is the part of a simulation the gateway reads from.
type Source interface {
	ID() string
	Snapshot() intersection.Snapshot
	Records() []intersection.Record
	AddObserver(intersection.Observer)
}

// Gateway is the HTTP gateway module. It is a leaf module; nothing imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	metrics   *Metrics
	hub       *Hub
	startedAt time.Time
	addr      string

	// Resolved lazily at Start() via the service registry.
	source   Source
	gatherer prometheus.Gatherer
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = &Metrics{}
	g.hub = NewHub(g.config.EventBuffer, g.metrics)

	if svc, ok := ctx.Service(logging.ServiceName); ok {
		if r, ok := svc.(*logging.Redactor); ok {
			r.AddLiteral(g.config.Auth.BearerToken)
			r.AddLiteral(g.config.Auth.BasicPass)
		}
	}

	ctx.RegisterService("gateway.events", g.hub)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	if g.config.RequestsPerMinute < 0 {
		return errors.New("gateway: requests_per_minute must not be negative")
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry and starts the HTTP server.
func (g *Gateway) Start() error {
	if svc, ok := g.appCtx.Service(simulation.ServiceName); ok {
		if src, ok := svc.(Source); ok {
			g.source = src
		}
	}
	if svc, ok := g.appCtx.Service("metrics.gatherer"); ok {
		if gatherer, ok := svc.(prometheus.Gatherer); ok {
			g.gatherer = gatherer
		}
	}
	if g.source != nil {
		g.source.AddObserver(g.hub)
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}
	g.addr = ln.Addr().String()

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Event streams are closed first so that
// Shutdown does not wait on them.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	g.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

// Addr returns the address the server listens on, once started.
func (g *Gateway) Addr() string { return g.addr }
