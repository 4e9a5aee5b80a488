package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	ctx := With(context.Background(), "country", "FR")
	Warnf(ctx, "clamped %d points", 3)
	Infof(context.Background(), "plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "clamped 3 points" {
		t.Errorf("message: got %q", entries[0].Message)
	}
	if got := entries[0].ContextMap()["country"]; got != "FR" {
		t.Errorf("country field: got %v, want FR", got)
	}
	if len(entries[1].Context) != 0 {
		t.Errorf("global logger should carry no fields, got %v", entries[1].Context)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init("chatty", "console"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
