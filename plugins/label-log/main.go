// Command label-log is an example hook that appends every recognized label
// to a JSON lines file.
//
// Binding config: {"path": "/tmp/labels.log"}. Without a path the file is
// labels.log in the hook directory.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ayusman/mudra/internal/plugin"
)

const defaultPath = "labels.log"

type logConfig struct {
	Path string `json:"path"`
}

type entry struct {
	Time       time.Time       `json:"time"`
	Label      string          `json:"label"`
	Handedness string          `json:"handedness,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

func main() {
	resp := handle(os.Stdin, time.Now())
	json.NewEncoder(os.Stdout).Encode(resp)
}

func handle(r io.Reader, now time.Time) plugin.Response {
	var req plugin.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return failure("failed to decode request: %v", err)
	}

	if req.Action != "append" {
		return failure("unknown action: %s", req.Action)
	}

	cfg := logConfig{Path: defaultPath}
	if len(req.Config) > 0 && string(req.Config) != "null" {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return failure("failed to parse config: %v", err)
		}
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}

	if err := appendEntry(cfg.Path, entry{
		Time:       now,
		Label:      req.Label,
		Handedness: req.Handedness,
		Params:     req.Params,
	}); err != nil {
		return failure("append %s: %v", cfg.Path, err)
	}
	return plugin.Response{Success: true}
}

func appendEntry(path string, e entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(e); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func failure(format string, args ...any) plugin.Response {
	return plugin.Response{Success: false, Error: fmt.Sprintf(format, args...)}
}
