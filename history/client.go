// Package history talks to the backend's decision log: it fetches recent
// finalized decisions and requests new analysis runs.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tailored-agentic-units/neuralcore/observability"
)

const (
	EventTriggerSent      observability.EventType = "history.trigger.sent"
	EventTriggerThrottled observability.EventType = "history.trigger.throttled"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver sets the observer for trigger events.
func WithObserver(obs observability.Observer) Option {
	return func(c *Client) { c.observer = observability.OrNoOp(obs) }
}

// Client is a decision log client.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	observer observability.Observer
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Every(cfg.TriggerInterval), 1),
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recent returns up to limit of the most recent decisions. A limit of zero
// uses the configured default.
func (c *Client) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = c.cfg.Limit
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/ai/decisions")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("decision log request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode decisions: %w", err)
	}
	return records, nil
}

// Trigger asks the backend to start an analysis run. Results arrive on the
// live stream, not in the response. Calls closer together than the
// configured interval return ErrThrottled without a request.
func (c *Client) Trigger(ctx context.Context) error {
	if !c.limiter.Allow() {
		c.emit(ctx, EventTriggerThrottled, observability.LevelWarning, nil)
		return ErrThrottled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/ai/analyze"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("trigger request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)

	c.emit(ctx, EventTriggerSent, observability.LevelInfo, map[string]any{"status": resp.StatusCode})
	return nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "history.Client",
		Data:      data,
	})
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
}
