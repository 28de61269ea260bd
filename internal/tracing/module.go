package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/simulation"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config configures the OTLP exporter.
type Config struct {
	// Endpoint is the collector host:port. Default: localhost:4318.
	Endpoint string `yaml:"endpoint"`

	// URLPath overrides the traces path. Default: /v1/traces.
	URLPath string `yaml:"url_path"`

	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of runs traced. Default: 1.
	SampleRatio *float64 `yaml:"sample_ratio"`
}

func (c *Config) defaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.ServiceName == "" {
		c.ServiceName = "junction"
	}
	if c.SampleRatio == nil {
		one := 1.0
		c.SampleRatio = &one
	}
}

// RunSource is the part of a simulation the tracing module needs.
type RunSource interface {
	ID() string
	AddObserver(intersection.Observer)
}

// Module exports spans for every rotation and passage of a run.
type Module struct {
	config   Config
	appCtx   *core.AppContext
	provider *sdktrace.TracerProvider
	tracer   *Tracer

	// exporter is replaced in tests.
	exporter sdktrace.SpanExporter
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tracing.otlp",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner. The exporter connects lazily, so
// an unreachable collector does not fail provisioning.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.appCtx = ctx

	var batcher sdktrace.TracerProviderOption
	if m.exporter != nil {
		batcher = sdktrace.WithSyncer(m.exporter)
	} else {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(m.config.Endpoint)}
		if m.config.URLPath != "" {
			opts = append(opts, otlptracehttp.WithURLPath(m.config.URLPath))
		}
		if m.config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(context.Background(), opts...)
		if err != nil {
			return fmt.Errorf("tracing: creating otlp exporter: %w", err)
		}
		m.exporter = exp
		batcher = sdktrace.WithBatcher(exp)
	}

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		ctx.Logger.Warn("tracing: export error", "error", err)
	}))

	m.provider = sdktrace.NewTracerProvider(
		batcher,
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(*m.config.SampleRatio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", m.config.ServiceName),
		)),
	)
	m.tracer = NewTracer(m.provider)
	ctx.RegisterService("tracing.provider", m.provider)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if r := *m.config.SampleRatio; r < 0 || r > 1 {
		return errors.New("tracing: sample_ratio must be within [0, 1]")
	}
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	svc, ok := m.appCtx.Service(simulation.ServiceName)
	if !ok {
		m.appCtx.Logger.Warn("tracing: no simulation to trace")
		return nil
	}
	src, ok := svc.(RunSource)
	if !ok {
		return fmt.Errorf("tracing: service %q has unexpected type %T", simulation.ServiceName, svc)
	}
	m.tracer.BeginRun(src.ID())
	src.AddObserver(m.tracer)
	m.appCtx.Logger.Info("tracing: exporting spans", "endpoint", m.config.Endpoint)
	return nil
}

// Stop implements core.Stopper. It closes the run span and flushes
// pending spans.
func (m *Module) Stop(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	m.tracer.EndRun()
	if err := m.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing: shutting down provider: %w", err)
	}
	return nil
}
