// Package walletapi is the client of the remote wallet service. Every
// operation returns a models.Response envelope: failures of any kind are
// reported as data and through the notifier, never as a Go error.
package walletapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/internal/notification"
	"github.com/Aidin1998/wallet_system/pkg/metrics"
)

const tracerName = "github.com/Aidin1998/wallet_system/internal/walletapi"

// DefaultTimeout bounds a single request when Config.Timeout is zero
const DefaultTimeout = 10 * time.Second

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the connection settings of the client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the wallet service
type Client struct {
	baseURL  *url.URL
	http     Doer
	notifier notification.Notifier
	logger   *zap.Logger
	metrics  *metrics.ClientMetrics

	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithMetrics records request counts and latencies on m
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider traces requests with tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracerProvider = tp }
}

// WithPropagator sets how trace context is written into request headers
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *Client) { c.propagator = p }
}

// New creates a client for the service at cfg.BaseURL
func New(cfg Config, notifier notification.Notifier, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("walletapi: invalid base url %q: %w", cfg.BaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("walletapi: base url %q must be an absolute http(s) url", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:        base,
		http:           &http.Client{Timeout: timeout},
		notifier:       notifier,
		logger:         logger.Named("walletapi"),
		tracerProvider: otel.GetTracerProvider(),
		propagator:     otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tracer = c.tracerProvider.Tracer(tracerName)
	return c, nil
}

// BaseURL returns the service address the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}
