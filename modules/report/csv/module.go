// Package csv exports the vehicles of every finished run to a CSV file.
package csv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/report"
)

const defaultFile = "vehicles.csv"

func init() {
	core.RegisterModule(&Module{})
}

// Config configures the CSV export.
type Config struct {
	// Path is the output file. Defaults to {DataDir}/vehicles.csv.
	Path string `yaml:"path"`

	// Truncate replaces the file on every run instead of appending.
	Truncate bool `yaml:"truncate"`
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ report.Sink       = (*Module)(nil)
)

// Module is the "report.csv" sink.
type Module struct {
	config Config
	logger *slog.Logger

	mu sync.Mutex
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "report.csv",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("csv: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultFile)
	}
	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("csv: create directory %s: %w", dir, err)
		}
	}
	ctx.RegisterService("report.csv", m)
	return nil
}

// Name implements report.Sink.
func (m *Module) Name() string { return "csv" }

// WriteReport implements report.Sink. The header is written when the file
// is new or truncated.
func (m *Module) WriteReport(ctx context.Context, r *report.Report) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	header := m.config.Truncate
	if m.config.Truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	} else if _, statErr := os.Stat(m.config.Path); errors.Is(statErr, fs.ErrNotExist) {
		header = true
	}

	f, err := os.OpenFile(m.config.Path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("csv: open %s: %w", m.config.Path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csv: close %s: %w", m.config.Path, cerr)
		}
	}()

	if err := Encode(f, r, header); err != nil {
		return fmt.Errorf("csv: write %s: %w", m.config.Path, err)
	}

	m.logger.Info("csv export written", "path", m.config.Path, "vehicles", len(r.Vehicles))
	return nil
}

// Path returns the output file.
func (m *Module) Path() string { return m.config.Path }
