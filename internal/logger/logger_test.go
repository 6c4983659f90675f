package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		env      string
		level    string
		expected zapcore.Level
	}{
		{env: "development", expected: zapcore.DebugLevel},
		{env: "production", expected: zapcore.InfoLevel},
		{env: "production", level: "WARN", expected: zapcore.WarnLevel},
		{env: "local", level: "error", expected: zapcore.ErrorLevel},
	}

	for _, tc := range cases {
		log, err := New(tc.env, tc.level)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !log.Core().Enabled(tc.expected) {
			t.Fatalf("%s/%s: expected %s enabled", tc.env, tc.level, tc.expected)
		}
		if tc.expected > zapcore.DebugLevel && log.Core().Enabled(tc.expected-1) {
			t.Fatalf("%s/%s: expected %s disabled", tc.env, tc.level, tc.expected-1)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("production", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
