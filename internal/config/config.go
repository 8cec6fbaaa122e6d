// Package config holds the process-wide settings for mudra and loads them from
// defaults, a YAML file, MUDRA_* environment variables and command-line flags.
package config

import (
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// Config holds all application configuration.
type Config struct {
	Recognition RecognitionConfig `yaml:"recognition" mapstructure:"recognition"`
	Camera      CameraConfig      `yaml:"camera" mapstructure:"camera"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Hooks       HooksConfig       `yaml:"hooks" mapstructure:"hooks"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Tray        TrayConfig        `yaml:"tray" mapstructure:"tray"`
}

// RecognitionConfig holds the classifier thresholds. They are read once at
// start-up and never adjusted at runtime.
type RecognitionConfig struct {
	hand.Config `yaml:",inline" mapstructure:",squash"`

	// TouchRatio is the fingertip distance, as a fraction of hand scale, under
	// which two tips count as touching.
	TouchRatio float64 `yaml:"touch_ratio" mapstructure:"touch_ratio"`
}

// CameraConfig holds capture settings.
type CameraConfig struct {
	Device          int           `yaml:"device" mapstructure:"device"`
	Width           int           `yaml:"width" mapstructure:"width"`
	Height          int           `yaml:"height" mapstructure:"height"`
	IdleFPS         int           `yaml:"idle_fps" mapstructure:"idle_fps"`
	ActiveFPS       int           `yaml:"active_fps" mapstructure:"active_fps"`
	MotionThreshold float64       `yaml:"motion_threshold" mapstructure:"motion_threshold"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// Mock replaces the hand tracker with a synthetic open palm.
	Mock bool `yaml:"mock" mapstructure:"mock"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	StaticDir string `yaml:"static_dir" mapstructure:"static_dir"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// HooksConfig holds label-bound hook settings.
type HooksConfig struct {
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" mapstructure:"level"`
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
}

// TrayConfig holds system tray settings.
type TrayConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Recognition: RecognitionConfig{
			Config:     hand.DefaultConfig(),
			TouchRatio: hand.DefaultTouchRatio,
		},
		Camera: CameraConfig{
			Device:          0,
			Width:           640,
			Height:          480,
			IdleFPS:         5,
			ActiveFPS:       15,
			MotionThreshold: 1.0,
			IdleTimeout:     2 * time.Second,
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			StaticDir: "web",
		},
		Storage: StorageConfig{
			DBPath: "mudra.db",
		},
		Hooks: HooksConfig{
			Dir:     "plugins",
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tray: TrayConfig{
			Enabled: true,
		},
	}
}

// HandConfig returns the curl thresholds for building hand models.
func (c *Config) HandConfig() hand.Config {
	return c.Recognition.Config
}
