// Package webhook posts every finished report as JSON to an HTTP endpoint,
// optionally signed with HMAC-SHA256.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/logging"
	"github.com/flemzord/junction/internal/report"
)

// SignatureHeader carries "sha256=<hex hmac of the body>" when a secret is set.
const SignatureHeader = "X-Signature-256"

func init() {
	core.RegisterModule(&Module{})
}

// Config configures the webhook sink.
type Config struct {
	URL     string        `yaml:"url"`
	Secret  string        `yaml:"secret"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ report.Sink       = (*Module)(nil)
)

// Module is the "report.webhook" sink.
type Module struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "report.webhook",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("webhook: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	m.client = &http.Client{Timeout: m.config.Timeout}

	if svc, ok := ctx.Service(logging.ServiceName); ok {
		if r, ok := svc.(*logging.Redactor); ok {
			r.AddLiteral(m.config.Secret)
		}
	}
	ctx.RegisterService("report.webhook", m)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.URL == "" {
		return errors.New("webhook: url is required")
	}
	u, err := url.Parse(m.config.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook: invalid url %q", m.config.URL)
	}
	return nil
}

// Name implements report.Sink.
func (m *Module) Name() string { return "webhook" }

// WriteReport implements report.Sink.
func (m *Module) WriteReport(ctx context.Context, r *report.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("webhook: encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.config.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(m.config.Secret, body))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: %s responded %s", m.config.URL, resp.Status)
	}
	m.logger.Info("report posted", "url", m.config.URL, "run_id", r.RunID)
	return nil
}

// Sign returns the SignatureHeader value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body, in constant time.
func Verify(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
