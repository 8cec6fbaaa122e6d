package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptPlugin writes an executable shell script into a temp dir and returns it as a plugin.
func scriptPlugin(t *testing.T, name, body string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: scriptPath,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "test-plugin",
		`echo '{"success":true,"data":{"message":"hello world"}}'`+"\n", "test-action")

	request := &Request{
		Action: "test-action",
		Label:  "5",
		Config: json.RawMessage(`{"key":"value"}`),
		Params: json.RawMessage(`{"param1":"value1"}`),
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]any
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo-plugin", `INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`, "echo")

	request := &Request{
		Action:     "echo",
		Label:      "🤘",
		Handedness: "Left",
		Config:     json.RawMessage(`{"setting":"enabled"}`),
		Params:     json.RawMessage(`{"count":42}`),
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	if data.Received.Action != "echo" {
		t.Errorf("expected action 'echo', got %q", data.Received.Action)
	}
	if data.Received.Label != "🤘" {
		t.Errorf("expected label '🤘', got %q", data.Received.Label)
	}
	if data.Received.Handedness != "Left" {
		t.Errorf("expected handedness 'Left', got %q", data.Received.Handedness)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", "sleep 10\necho '{\"success\":true}'\n", "slow")

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "slow"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := scriptPlugin(t, "error-plugin",
		`echo '{"success":false,"error":"something went wrong"}'`+"\n", "fail")

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "fail"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if response.Success {
		t.Errorf("expected success=false, got true")
	}
	if response.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", response.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, "bad-plugin", "echo 'not valid json'\n", "bad")

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "bad"}); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := scriptPlugin(t, "exit-plugin", "echo 'Error: something failed' >&2\nexit 1\n", "exit")

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "exit"}); err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", got)
	}
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("expected default timeout, got %s", got)
	}
}

func TestManifest_SupportsAction(t *testing.T) {
	m := Manifest{Actions: []string{"a", "b"}}
	if !m.SupportsAction("a") || m.SupportsAction("c") {
		t.Error("unexpected action support result")
	}
	if !(Manifest{}).SupportsAction("anything") {
		t.Error("a manifest without actions should accept any action")
	}
}
