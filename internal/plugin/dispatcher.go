package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// ErrUnsupportedAction is returned when a binding names an action its plugin does not list.
var ErrUnsupportedAction = errors.New("action not supported by plugin")

// BindingSource yields the enabled bindings for a label.
type BindingSource interface {
	ListEnabledByLabel(label string) ([]*store.Binding, error)
}

// Dispatcher runs the hooks bound to a recognized label.
type Dispatcher struct {
	bindings BindingSource
	plugins  *Manager
	exec     *Executor
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(bindings BindingSource, plugins *Manager, exec *Executor) *Dispatcher {
	return &Dispatcher{bindings: bindings, plugins: plugins, exec: exec}
}

// Dispatch runs every enabled binding for label in creation order and returns
// how many ran successfully. One failing hook does not stop the others; all
// failures are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, label, handedness string) (int, error) {
	bindings, err := d.bindings.ListEnabledByLabel(label)
	if err != nil {
		return 0, fmt.Errorf("load bindings for %q: %w", label, err)
	}

	var errs []error
	ran := 0
	for _, b := range bindings {
		if err := d.run(ctx, b, label, handedness); err != nil {
			logger.Warn("hook failed",
				zap.String("label", label),
				zap.String("plugin", b.PluginName),
				zap.String("action", b.ActionName),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		ran++
	}

	return ran, errors.Join(errs...)
}

func (d *Dispatcher) run(ctx context.Context, b *store.Binding, label, handedness string) error {
	p, err := d.plugins.Get(b.PluginName)
	if err != nil {
		return err
	}
	if !p.Manifest.SupportsAction(b.ActionName) {
		return fmt.Errorf("%w: %s/%s", ErrUnsupportedAction, b.PluginName, b.ActionName)
	}

	params, err := json.Marshal(map[string]string{"binding_id": b.ID})
	if err != nil {
		return err
	}

	resp, err := d.exec.Execute(ctx, p, &Request{
		Action:     b.ActionName,
		Label:      label,
		Handedness: handedness,
		Config:     b.Config,
		Params:     params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s/%s: %s", b.PluginName, b.ActionName, resp.Error)
	}
	return nil
}
