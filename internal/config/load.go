package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. MUDRA_SERVER_ADDR.
const EnvPrefix = "MUDRA"

// FileName is the config file looked for in the standard locations.
const FileName = "config.yaml"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":      "server.addr",
	"db":        "storage.db_path",
	"plugins":   "hooks.dir",
	"camera":    "camera.device",
	"mock":      "camera.mock",
	"log-level": "logging.level",
	"log-file":  "logging.log_file",
}

// Load loads configuration with priority: defaults < file < env < flags.
// An explicit path must exist; otherwise ./config.yaml and the OS config
// directory are searched. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := setDefaults(v); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every leaf of Default() under its dotted key. Defaults
// sit below the file layer rather than being merged with it, so a file value
// of another number type (45 vs 45.5) still overrides.
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setTree(v, "", tree)
	return nil
}

func setTree(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setTree(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Validate reports settings that would make the recognizer or pipeline misbehave.
func (c *Config) Validate() error {
	var errs []error
	r := c.Recognition
	if r.CurlWindow <= 0 || r.CurlWindow >= 180 {
		errs = append(errs, fmt.Errorf("recognition.curl_window must be in (0, 180), got %g", r.CurlWindow))
	}
	if r.TouchRatio <= 0 {
		errs = append(errs, fmt.Errorf("recognition.touch_ratio must be positive, got %g", r.TouchRatio))
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		errs = append(errs, fmt.Errorf("camera fps must be positive, got idle=%d active=%d", c.Camera.IdleFPS, c.Camera.ActiveFPS))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		FileName,
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Mudra")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Mudra")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "mudra")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "mudra")
	}
}
