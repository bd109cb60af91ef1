// Package notify pushes alert messages to an ntfy server. Delivery is
// best effort: Send reports success or failure and never panics, so a
// dead network cannot take the sampling loop down with it.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/luki/thermalarm/internal/config"
	"github.com/luki/thermalarm/internal/logging"
)

const sendTimeout = 10 * time.Second

// Client publishes to a single ntfy topic.
type Client struct {
	mu     sync.Mutex
	cfg    config.NtfyConfig
	http   *http.Client
	log    *logging.Logger
	closed bool
}

// New builds a client from the ntfy config section. A disabled section
// still yields a usable client whose Send always reports false.
func New(cfg config.NtfyConfig, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: sendTimeout},
		log:  log,
	}
}

// Enabled reports whether the client is configured to deliver anything.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.Topic != ""
}

// Send publishes a message and reports whether delivery succeeded.
// An empty priority falls back to the configured one. Failures are
// logged, never returned.
func (c *Client) Send(ctx context.Context, message, title, priority string, tags []string) bool {
	c.mu.Lock()
	if c.closed || !c.Enabled() {
		c.mu.Unlock()
		return false
	}
	cfg := c.cfg
	c.mu.Unlock()

	url := strings.TrimRight(cfg.Server, "/") + "/" + cfg.Topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		c.log.Error("ntfy request build failed", "error", err)
		return false
	}
	if title != "" {
		req.Header.Set("Title", title)
	}
	if priority == "" {
		priority = cfg.Priority
	}
	if priority != "" && priority != "default" {
		req.Header.Set("Priority", priority)
	}
	if merged := mergeTags(cfg.Tags, tags); len(merged) > 0 {
		req.Header.Set("Tags", strings.Join(merged, ","))
	}
	if cfg.Username != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("ntfy publish failed", "server", cfg.Server, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("ntfy publish rejected", "status", resp.StatusCode, "topic", cfg.Topic)
		return false
	}

	c.log.Debug("ntfy publish ok", "topic", cfg.Topic, "title", title)
	return true
}

// SendAlert publishes a target-reached alert at high priority.
func (c *Client) SendAlert(ctx context.Context, sensorKey string, temperature, target float64) bool {
	title := fmt.Sprintf("Target %.1f° reached", target)
	msg := fmt.Sprintf("%s is at %.1f°C (target %.1f°C)", sensorKey, temperature, target)
	return c.Send(ctx, msg, title, "high", []string{"thermometer"})
}

// Close shuts the client down. Later Sends report false. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.http.CloseIdleConnections()
	return nil
}

func mergeTags(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, t := range append(append([]string{}, base...), extra...) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
