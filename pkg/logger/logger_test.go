package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatalf("New(debug): %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug level should be enabled")
	}

	l, err = New("")
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) || !l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("default level should be info")
	}

	if _, err := New("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
