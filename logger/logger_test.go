package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "container", &buf)
	l.Debug("instance created", BeanFields("repo", "singleton"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry[FieldBean] != "repo" {
		t.Errorf("expected bean=repo, got %v", entry[FieldBean])
	}
	if entry[FieldScope] != "singleton" {
		t.Errorf("expected scope=singleton, got %v", entry[FieldScope])
	}
	if entry["service"] != "container" {
		t.Errorf("expected service=container, got %v", entry["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, "svc", &buf)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "invalid-level", Format: "json"}, "test", &buf)
	l.Debug("hidden")
	l.Info("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("expected debug to be filtered at fallback info level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Error("expected info output")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)
	cl := l.WithComponent("registry")
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
	cl.Info("hello")
	if !strings.Contains(buf.String(), `"component":"registry"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)
	l.WithFields(map[string]interface{}{FieldGeneration: "g1"}).Info("refresh")
	if !strings.Contains(buf.String(), `"generation":"g1"`) {
		t.Errorf("expected generation field, got %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("discarded")
}

func TestInit(t *testing.T) {
	cfg := Config{Level: "info", Format: "console", Output: "stdout"}
	Init(&cfg)
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if !cfg.Timestamp {
		t.Error("expected Init to apply defaults")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Error("expected a default logger when global is reset")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	SetGlobalLogger(NewNop())
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
	WithComponent("x").Info("tagged")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields: %v", f)
	}
	if len(f) != 2 {
		t.Errorf("expected 2 fields, got %d", len(f))
	}
}

func TestChainFields(t *testing.T) {
	f := ChainFields("a", []string{"a", "b", "a"})
	if f[FieldChain] != "a -> b -> a" {
		t.Errorf("unexpected chain field: %v", f[FieldChain])
	}
}

func TestMergeHelpers(t *testing.T) {
	f := MergeWithError(nil, errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Errorf("expected error field, got %v", f[FieldError])
	}
	f = MergeWithDuration(f, 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("expected duration 1500, got %v", f[FieldDuration])
	}
}
