package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: ErrMissingServiceName},
		{name: "missing version", mutate: func(c *Config) { c.ServiceVersion = "" }, wantErr: ErrMissingServiceVersion},
		{name: "negative sample rate", mutate: func(c *Config) { c.SampleRate = -0.1 }, wantErr: ErrInvalidSampleRate},
		{name: "sample rate above one", mutate: func(c *Config) { c.SampleRate = 1.1 }, wantErr: ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v wrapped in ErrInvalidConfig, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitialize_DisabledWithoutEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.EnableTracing = true
	cfg.EnableMetrics = true

	tel, err := Initialize(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer tel.Shutdown(context.Background())

	if tel.TracingEnabled() || tel.MetricsEnabled() {
		t.Error("expected tracing and metrics to stay disabled without an endpoint")
	}
	if tel.Meter() == nil {
		t.Error("expected a no-op meter")
	}
}

func TestInitialize_WithInjectedExporters(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.EnableTracing = true
	cfg.EnableMetrics = true

	spans := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()

	tel, err := Initialize(ctx, cfg, WithTraceExporter(spans), WithMetricReader(reader))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if !tel.TracingEnabled() || !tel.MetricsEnabled() {
		t.Fatal("expected tracing and metrics to be enabled")
	}

	counter, err := tel.Meter().Int64Counter("test_total")
	if err != nil {
		t.Fatalf("create counter: %v", err)
	}
	counter.Add(ctx, 3)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || rm.ScopeMetrics[0].Metrics[0].Name != "test_total" {
		t.Errorf("unexpected metrics %+v", rm.ScopeMetrics)
	}

	_, span := StartSpan(ctx, "op")
	span.End()

	if err := tel.tracerProvider.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	if len(spans.GetSpans()) != 1 {
		t.Errorf("expected 1 exported span, got %d", len(spans.GetSpans()))
	}

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestInitialize_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ServiceName = ""

	if _, err := Initialize(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{rate: 0, want: "AlwaysOffSampler"},
		{rate: 1, want: "AlwaysOnSampler"},
		{rate: -0.1, want: "AlwaysOffSampler"},
		{rate: 0.5, want: "ParentBased{root:TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}
