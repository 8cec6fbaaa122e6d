package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/ayusman/mudra/internal/hand"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if diff := cmp.Diff(hand.DefaultConfig(), cfg.HandConfig()); diff != "" {
		t.Errorf("hand config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Recognition.TouchRatio != hand.DefaultTouchRatio {
		t.Errorf("expected touch ratio %g, got %g", hand.DefaultTouchRatio, cfg.Recognition.TouchRatio)
	}
	if cfg.Camera.IdleFPS != 5 || cfg.Camera.ActiveFPS != 15 {
		t.Errorf("unexpected fps %d/%d", cfg.Camera.IdleFPS, cfg.Camera.ActiveFPS)
	}
	if cfg.Hooks.Timeout != 5*time.Second {
		t.Errorf("expected 5s hook timeout, got %v", cfg.Hooks.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
recognition:
  curl_window: 50
  invert_thumb_rotation: true
  touch_ratio: 0.4
camera:
  device: 2
  idle_timeout: 3s
hooks:
  timeout: 750ms
logging:
  level: debug
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Recognition.CurlWindow != 50 {
		t.Errorf("expected curl window 50, got %g", cfg.Recognition.CurlWindow)
	}
	if !cfg.Recognition.InvertThumbRotation {
		t.Error("expected inverted thumb rotation")
	}
	if cfg.Recognition.ThumbRotation != 30 {
		t.Errorf("expected unset thumb rotation to keep default 30, got %g", cfg.Recognition.ThumbRotation)
	}
	if cfg.Recognition.TouchRatio != 0.4 {
		t.Errorf("expected touch ratio 0.4, got %g", cfg.Recognition.TouchRatio)
	}
	if cfg.Camera.Device != 2 || cfg.Camera.IdleTimeout != 3*time.Second {
		t.Errorf("unexpected camera config %+v", cfg.Camera)
	}
	if cfg.Camera.ActiveFPS != 15 {
		t.Errorf("expected default active fps, got %d", cfg.Camera.ActiveFPS)
	}
	if cfg.Hooks.Timeout != 750*time.Millisecond {
		t.Errorf("expected 750ms hook timeout, got %v", cfg.Hooks.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_NumberTypes(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		curlWindow float64
		touchRatio float64
	}{
		{"float window, int ratio", "recognition:\n  curl_window: 50.5\n  touch_ratio: 1\n", 50.5, 1},
		{"int window, float ratio", "recognition:\n  curl_window: 60\n  touch_ratio: 0.25\n", 60, 0.25},
		{"float window, float ratio", "recognition:\n  curl_window: 44.5\n  touch_ratio: 0.5\n", 44.5, 0.5},
		{"int window, int ratio", "recognition:\n  curl_window: 30\n  touch_ratio: 2\n", 30, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content+"  thumb_rotation: 20\n"), nil)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			r := cfg.Recognition
			if r.CurlWindow != tt.curlWindow || r.TouchRatio != tt.touchRatio || r.ThumbRotation != 20 {
				t.Errorf("got curl_window=%g touch_ratio=%g thumb_rotation=%g, want %g %g 20",
					r.CurlWindow, r.TouchRatio, r.ThumbRotation, tt.curlWindow, tt.touchRatio)
			}
		})
	}

	t.Run("env override", func(t *testing.T) {
		t.Setenv("MUDRA_RECOGNITION_CURL_WINDOW", "52.5")
		cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"), nil)
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.Recognition.CurlWindow != 52.5 {
			t.Errorf("expected curl window 52.5 from env, got %g", cfg.Recognition.CurlWindow)
		}
	})
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "file:1"
storage:
  db_path: file.db
logging:
  level: warn
`)
	t.Setenv("MUDRA_SERVER_ADDR", "env:2")
	t.Setenv("MUDRA_STORAGE_DB_PATH", "env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	flags.String("db", "", "")
	flags.String("log-level", "", "")
	if err := flags.Parse([]string{"--addr", "flag:3"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Addr != "flag:3" {
		t.Errorf("flag should win, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.DBPath != "env.db" {
		t.Errorf("env should beat file, got %q", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("file should beat unset flag default, got %q", cfg.Logging.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"curl window", "recognition:\n  curl_window: 0\n"},
		{"touch ratio", "recognition:\n  touch_ratio: -1\n"},
		{"fps", "camera:\n  idle_fps: 0\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"malformed", "recognition: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content), nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Recognition.InvertThumbRotation = true
	cfg.Hooks.Timeout = 2 * time.Second
	cfg.Server.Addr = ":9000"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_UsesConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	path, err := Default().Save()
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if filepath.Dir(path) != ConfigDir() {
		t.Errorf("expected %s under %s", path, ConfigDir())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written: %v", err)
	}
}
