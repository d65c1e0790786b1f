package otel

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type config struct {
	endpoint      string
	insecure      bool
	attributes    []attribute.KeyValue
	collectPeriod time.Duration
	errorHandler  func(error)
}

func defaultConfig() config {
	return config{
		collectPeriod: 60 * time.Second,
	}
}

// Option configures a Provider created with New.
type Option func(*config) error

// WithEndpoint sets the host:port the OTLP exporter dials.
func WithEndpoint(endpoint string) Option {
	return func(c *config) error {
		c.endpoint = endpoint
		return nil
	}
}

// WithInsecure disables transport security on the exporter connection.
func WithInsecure() Option {
	return func(c *config) error {
		c.insecure = true
		return nil
	}
}

// WithAttributes adds resource attributes to the emitted telemetry,
// alongside the service.name attribute New always sets.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *config) error {
		c.attributes = append(c.attributes, attrs...)
		return nil
	}
}

// WithCollectPeriod sets the interval between metric collections.
func WithCollectPeriod(d time.Duration) Option {
	return func(c *config) error {
		c.collectPeriod = d
		return nil
	}
}

// WithErrorHandler installs a callback for asynchronous provider errors,
// e.g. instrument registration or shutdown failures. Errors are dropped
// when no handler is installed.
func WithErrorHandler(fn func(error)) Option {
	return func(c *config) error {
		c.errorHandler = fn
		return nil
	}
}
