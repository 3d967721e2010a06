package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: " error ", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["msg"] != "kept" {
		t.Errorf("unexpected first entry %v", entries[0])
	}
}

func TestLoggerAddsTraceIDs(t *testing.T) {
	installRecorder(t)

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug)

	ctx, span := StartSpan(context.Background(), "test")
	logger.InfoContext(ctx, "inside span")
	span.End()
	logger.InfoContext(context.Background(), "outside span")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0]["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("expected trace_id %s, got %v", span.SpanContext().TraceID(), entries[0]["trace_id"])
	}
	if entries[0]["span_id"] != span.SpanContext().SpanID().String() {
		t.Errorf("expected span_id %s, got %v", span.SpanContext().SpanID(), entries[0]["span_id"])
	}
	if _, ok := entries[1]["trace_id"]; ok {
		t.Error("expected no trace_id without a span")
	}
}

func TestLoggerKeepsAttrsAndGroupsInOrder(t *testing.T) {
	installRecorder(t)

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, slog.String("service", "bot"))

	ctx, span := StartSpan(context.Background(), "grouped")
	defer span.End()

	logger.
		With("customer_id", int64(42)).
		WithGroup("order").
		With("id", "ORD-100").
		InfoContext(ctx, "placed", "total", "20.00")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry["service"] != "bot" {
		t.Errorf("expected service attr, got %v", entry["service"])
	}
	if entry["customer_id"] != float64(42) {
		t.Errorf("expected top-level customer_id, got %v", entry["customer_id"])
	}
	if _, ok := entry["trace_id"]; !ok {
		t.Error("expected trace_id outside the group")
	}

	group, ok := entry["order"].(map[string]any)
	if !ok {
		t.Fatalf("expected order group, got %v", entry["order"])
	}
	if group["id"] != "ORD-100" || group["total"] != "20.00" {
		t.Errorf("unexpected group contents %v", group)
	}
}
