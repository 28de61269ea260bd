// Package core provides the module system the simulator's optional
// components (gateway, metrics, report sinks, cron jobs) plug into.
package core

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// AppContext carries the resources shared by every module of a run.
type AppContext struct {
	// Logger for the current module scope.
	Logger *slog.Logger

	// DataDir is the root directory for files written by modules
	// (CSV exports, the SQLite run archive).
	DataDir string

	parentLogger  *slog.Logger
	moduleConfigs map[string]yaml.Node
	services      *serviceRegistry
}

// serviceRegistry is shared by every scoped copy of an AppContext so that a
// service registered by one module is visible to the others.
type serviceRegistry struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewAppContext creates an AppContext rooted at dataDir.
func NewAppContext(logger *slog.Logger, dataDir string) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:       logger,
		DataDir:      dataDir,
		parentLogger: logger,
		services:     &serviceRegistry{items: make(map[string]any)},
	}
}

// WithModuleConfigs returns a copy of the context holding the raw YAML
// configuration of each module, keyed by module ID.
func (ctx *AppContext) WithModuleConfigs(configs map[string]yaml.Node) *AppContext {
	cp := *ctx
	cp.moduleConfigs = configs
	return &cp
}

// ForModule returns a context whose logger is tagged with the module ID.
func (ctx *AppContext) ForModule(id ModuleID) *AppContext {
	return &AppContext{
		Logger:        ctx.parentLogger.With("module", string(id)),
		DataDir:       ctx.DataDir,
		parentLogger:  ctx.parentLogger,
		moduleConfigs: ctx.moduleConfigs,
		services:      ctx.services,
	}
}

// RegisterService publishes a value under name. A later registration under
// the same name replaces the earlier one.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.mu.Lock()
	defer ctx.services.mu.Unlock()
	ctx.services.items[name] = svc
}

// Service resolves a service registered under name.
func (ctx *AppContext) Service(name string) (any, bool) {
	ctx.services.mu.RLock()
	defer ctx.services.mu.RUnlock()
	svc, ok := ctx.services.items[name]
	return svc, ok
}

// ServicesByNamespace returns every service whose name starts with
// namespace + ".", ordered by name.
func (ctx *AppContext) ServicesByNamespace(namespace string) []any {
	prefix := namespace + "."

	ctx.services.mu.RLock()
	names := make([]string, 0, len(ctx.services.items))
	for name := range ctx.services.items {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, cmp.Compare[string])
	result := make([]any, 0, len(names))
	for _, name := range names {
		result = append(result, ctx.services.items[name])
	}
	ctx.services.mu.RUnlock()

	return result
}

// LoadModule builds the module registered under id and drives it through
//
//	New() → Configure() → Provision() → Validate()
//
// skipping the steps the module does not implement.
func (ctx *AppContext) LoadModule(id string) (Module, error) {
	info, ok := GetModule(id)
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", id)
	}

	mod := info.New()

	if c, ok := mod.(Configurable); ok {
		if node, exists := ctx.moduleConfigs[id]; exists {
			if err := c.Configure(&node); err != nil {
				return nil, fmt.Errorf("configuring module %s: %w", id, err)
			}
		}
	}

	if p, ok := mod.(Provisioner); ok {
		if err := p.Provision(ctx.ForModule(info.ID)); err != nil {
			return nil, fmt.Errorf("provisioning module %s: %w", id, err)
		}
	}

	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating module %s: %w", id, err)
		}
	}

	return mod, nil
}
