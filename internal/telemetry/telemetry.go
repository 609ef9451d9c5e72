// Package telemetry wires up the OpenTelemetry tracer/meter providers
// the store adapter and planner pull their `otel.Tracer`/`otel.Meter`
// instances from (see internal/store/postgres and internal/planner).
// Grounded on the pack's one concrete provider-setup example
// (evalgo-org-eve's otel.Init), adapted to the exporters this module's
// go.mod actually carries: stdout exporters by default, OTLP metrics
// when an endpoint is configured.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config controls which exporters Init wires up.
type Config struct {
	ServiceName string
	// OTLPEndpoint, if set, routes metrics to an OTLP/HTTP collector
	// instead of stdout.
	OTLPEndpoint string
	// Disabled skips provider setup entirely; otel.Tracer/otel.Meter
	// then return the package's no-op defaults, exactly as they do
	// for every caller before Init ever runs.
	Disabled bool
}

// Provider holds the two SDK providers Shutdown needs to flush and
// close; callers that don't need graceful shutdown can discard it.
type Provider struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Init sets the global tracer/meter providers from cfg. Call once at
// process start, before any store/planner code runs.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Disabled {
		return &Provider{}, nil
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("telemetry: stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	otel.SetTracerProvider(tp)

	var metricReader sdkmetric.Reader
	if cfg.OTLPEndpoint != "" {
		metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint), otlpmetrichttp.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("telemetry: otlp metric exporter: %w", err)
		}
		metricReader = sdkmetric.NewPeriodicReader(metricExporter)
	} else {
		metricExporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout metric exporter: %w", err)
		}
		metricReader = sdkmetric.NewPeriodicReader(metricExporter)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader))
	otel.SetMeterProvider(mp)

	return &Provider{tp: tp, mp: mp}, nil
}

// Shutdown flushes and closes both providers. Safe to call on a nil
// or Disabled-built Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutdown tracer provider: %w", err)
		}
	}
	if p.mp != nil {
		if err := p.mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutdown meter provider: %w", err)
		}
	}
	return nil
}

// Tracer and Meter are thin convenience wrappers so callers don't need
// to import otel directly just to get the package-scoped instruments
// the store/planner packages already construct for themselves.
func Tracer(name string) trace.Tracer { return otel.Tracer(name) }
func Meter(name string) metric.Meter  { return otel.Meter(name) }
