package utils

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "info", false},
		{"debug", "debug", false},
		{"WARN", "warn", false},
		{"error", "error", false},
		{"loud", "info", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got.String() != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerWithFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core))

	logger.WithField("registry", "user").WithFields(map[string]interface{}{"page": 2}).Infof("scanned %d rows", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != "scanned 3 rows" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["registry"] != "user" {
		t.Errorf("expected registry field, got %v", fields)
	}
	if fields["page"] != int64(2) {
		t.Errorf("expected page field 2, got %v (%T)", fields["page"], fields["page"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Warnf("ignored %s", "message")
	if err := logger.Sync(); err != nil {
		t.Errorf("nop logger sync failed: %v", err)
	}
}

func TestRateLimiterUnlimited(t *testing.T) {
	var rl *RateLimiter = NewRateLimiter(0)
	if rl != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter should never block: %v", err)
	}
	if !rl.Allow() {
		t.Error("nil limiter should always allow")
	}
	if rl.Limit() != 0 {
		t.Errorf("expected limit 0, got %v", rl.Limit())
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(0.001)
	if !rl.Allow() {
		t.Fatal("first event should be allowed")
	}
	if rl.Allow() {
		t.Error("second event should be throttled")
	}
}
