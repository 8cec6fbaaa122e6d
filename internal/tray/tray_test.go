package tray

import (
	"errors"
	"testing"
)

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) error {
		got = append(got, enabled)
		return nil
	})

	tr.handleToggle()
	if tr.IsEnabled() {
		t.Error("expected tray to be disabled after toggle")
	}
	tr.handleToggle()
	if !tr.IsEnabled() {
		t.Error("expected tray to be enabled after second toggle")
	}
	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("unexpected callback values %v", got)
	}
}

func TestTray_ToggleRevertsOnError(t *testing.T) {
	tr := New(false)
	tr.OnToggle(func(bool) error { return errors.New("store offline") })

	tr.handleToggle()
	if tr.IsEnabled() {
		t.Error("expected state to stay disabled when the callback fails")
	}
}

func TestTray_LastLabel(t *testing.T) {
	tr := New(true)
	tr.SetLastLabel("🤘")

	if tr.LastLabel() != "🤘" {
		t.Errorf("expected last label to be kept, got %q", tr.LastLabel())
	}
	if lastTitle("") != noLabel || lastTitle("Ok") != "Last: Ok" {
		t.Error("unexpected menu titles")
	}
	if toggleTitle(true) != titleEnabled || toggleTitle(false) != titleDisabled {
		t.Error("unexpected toggle titles")
	}
}
