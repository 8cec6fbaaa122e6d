package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "debug", want: zapcore.DebugLevel},
		{in: "INFO", want: zapcore.InfoLevel},
		{in: "", want: zapcore.InfoLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitWithFileConfig_WritesJSON(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "mudra.log")
	t.Cleanup(func() { Set(zap.NewNop()) })

	cfg := DefaultFileConfig(logFile)
	cfg.Compress = false
	if err := InitWithFileConfig("info", cfg, false); err != nil {
		t.Fatalf("InitWithFileConfig() error = %v", err)
	}

	Debug("hidden below level")
	Info("label recognized", zap.String("label", "L"))
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, `"msg":"label recognized"`) {
		t.Errorf("expected info entry in log file, got:\n%s", content)
	}
	if !strings.Contains(content, `"label":"L"`) {
		t.Errorf("expected label field in log file, got:\n%s", content)
	}
	if strings.Contains(content, "hidden below level") {
		t.Error("debug entry should be filtered at info level")
	}
}

func TestInitWithFileConfig_RejectsUnknownLevel(t *testing.T) {
	if err := InitWithFileConfig("chatty", FileConfig{}, false); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSet_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Info("ignored")
	Warn("hand skipped", zap.Int("hand", 1))
	Sugar.Errorf("frame %d failed", 7)

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	if got := logs.All()[0].Message; got != "hand skipped" {
		t.Errorf("first message = %q, want %q", got, "hand skipped")
	}
	if got := logs.All()[1].Message; got != "frame 7 failed" {
		t.Errorf("second message = %q, want %q", got, "frame 7 failed")
	}
}
