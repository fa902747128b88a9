package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	// Must not panic before InitLogger.
	Logger.Infow("ignored", "key", "value")
}

func TestInitLogger(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	if err := InitLogger(true); err != nil {
		t.Fatalf("InitLogger(debug) failed: %v", err)
	}
	if !Logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level to be enabled in debug mode")
	}

	if err := InitLogger(false); err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	if Logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level to be disabled outside debug mode")
	}
}

func TestObservedWarnings(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	core, logs := observer.New(zap.WarnLevel)
	Logger = zap.New(core).Sugar()

	Logger.Infow("dropped")
	Logger.Warnw("tool not found", "tool", "pylint")

	if logs.Len() != 1 {
		t.Fatalf("Expected 1 warning entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["tool"] != "pylint" {
		t.Errorf("Expected tool field pylint, got %v", entry.ContextMap()["tool"])
	}
}
