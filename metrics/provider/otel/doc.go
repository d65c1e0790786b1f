// Package otel bridges the metrics.Provider interface onto the
// OpenTelemetry metrics SDK.
//
// Counters and histograms write through synchronous OTel instruments.
// Gauges hold their value locally and report it via an observable
// instrument at each collection, since the go-kit gauge contract (Set and
// Add) has no synchronous OTel equivalent.
package otel
