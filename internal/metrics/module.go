package metrics

import (
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/simulation"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config configures the metrics module.
type Config struct {
	Namespace string `yaml:"namespace"`

	// Runtime adds the Go runtime and process collectors.
	Runtime bool `yaml:"runtime"`
}

func (c *Config) defaults() {
	if c.Namespace == "" {
		c.Namespace = "junction"
	}
}

// Subscriber is the part of a simulation the metrics module listens to.
type Subscriber interface {
	AddObserver(intersection.Observer)
}

// Module publishes a Collector as the "metrics.gatherer" and
// "metrics.collector" services and subscribes it to the simulation.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	collector *Collector
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "metrics.prometheus",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.appCtx = ctx
	m.collector = NewCollector(m.config.Namespace, m.config.Runtime)

	ctx.RegisterService("metrics.gatherer", m.collector.Gatherer())
	ctx.RegisterService("metrics.collector", m.collector)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.collector == nil {
		return errors.New("metrics: collector not provisioned")
	}
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	if svc, ok := m.appCtx.Service(simulation.ServiceName); ok {
		if sub, ok := svc.(Subscriber); ok {
			sub.AddObserver(m.collector)
			m.appCtx.Logger.Debug("metrics subscribed to simulation events")
		}
	}
	return nil
}

// Collector returns the provisioned collector.
func (m *Module) Collector() *Collector { return m.collector }
