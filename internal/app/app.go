// Package app wires the live recognition pipeline: camera, motion gate, hand
// detector, recognizer, frame overlay, history, hooks and result broadcast.
package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// mockFrames is the length of the synthetic frame loop used with a mock camera.
const mockFrames = 30

// App is the main application that orchestrates recognition and hook execution.
type App struct {
	config     *config.Config
	store      *store.Store
	camera     capture.Camera
	motion     *capture.MotionDetector
	gate       *capture.Gate
	detector   detector.Detector
	recognizer *gesture.Recognizer
	plugins    *plugin.Manager
	dispatcher *plugin.Dispatcher
	frames     *server.FrameBuffer
	hub        *server.Hub

	mu       sync.RWMutex
	enabled  bool
	onLabel  func(label string)
	cancel   context.CancelFunc
	done     chan struct{}
	hooks    sync.WaitGroup
	lastSeen map[string]string
}

// New creates an App from cfg. st may be nil, in which case nothing is
// recorded and no hooks run.
//
// With cfg.Camera.Mock set the camera plays back synthetic motion and the
// detector always reports an open palm. Otherwise the MediaPipe detector is
// used when its service script can be found, and the mock otherwise.
func New(cfg *config.Config, st *store.Store) *App {
	a := &App{
		config:     cfg,
		store:      st,
		motion:     capture.NewMotionDetector(cfg.Camera.MotionThreshold),
		gate:       capture.NewGate(cfg.Camera.IdleFPS, cfg.Camera.ActiveFPS, cfg.Camera.IdleTimeout),
		recognizer: gesture.NewRecognizer(gesture.NewMatcher(gesture.RuleTable(cfg.Recognition.TouchRatio)), cfg.HandConfig()),
		plugins:    plugin.NewManager(cfg.Hooks.Dir),
		frames:     server.NewFrameBuffer(),
		hub:        server.NewHub(),
		enabled:    true,
		lastSeen:   make(map[string]string),
	}

	if st != nil {
		a.enabled = st.Settings().GetBool(store.SettingEnabled, true)
		a.dispatcher = plugin.NewDispatcher(st.Bindings(), a.plugins, plugin.NewExecutor(cfg.Hooks.Timeout))
	}

	if cfg.Camera.Mock {
		a.camera = capture.NewMockCamera(capture.SyntheticFrames(mockFrames, cfg.Camera.Width, cfg.Camera.Height), true)
		a.detector = openPalmDetector()
		logger.Info("using mock camera and detector")
		return a
	}

	a.camera = capture.NewCamera(capture.Options{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		FPS:    cfg.Camera.IdleFPS,
	})

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		logger.Info("using MediaPipe hand detection")
	} else {
		logger.Warn("MediaPipe not available, using mock detector", zap.Error(err))
		a.detector = openPalmDetector()
	}

	return a
}

func openPalmDetector() *detector.MockDetector {
	d := detector.NewMockDetector()
	d.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	return d
}

// SetEnabled enables or disables recognition and persists the choice.
func (a *App) SetEnabled(enabled bool) error {
	a.mu.Lock()
	a.enabled = enabled
	if !enabled {
		clear(a.lastSeen)
	}
	a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	return a.store.Settings().SetBool(store.SettingEnabled, enabled)
}

// IsEnabled returns whether recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnLabel registers fn to be called with every newly recognized label.
func (a *App) OnLabel(fn func(label string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLabel = fn
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// DiscoverPlugins scans the hook directory. A missing directory is not an error.
func (a *App) DiscoverPlugins() error {
	return a.plugins.Discover()
}

// Start opens the camera and runs the pipeline until ctx ends or Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.gate.FPS())

	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go a.run(ctx, a.done)

	logger.Info("recognition pipeline started", zap.Int("fps", a.gate.FPS()))
	return nil
}

// Stop halts the pipeline, waits for running hooks and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	a.hooks.Wait()

	var errs []error
	if err := a.camera.Close(); err != nil {
		errs = append(errs, err)
	}
	a.motion.Close()
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("error releasing pipeline resources", zap.Error(err))
	}

	logger.Info("recognition pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Recognizer returns the recognizer built from the recognition settings.
func (a *App) Recognizer() *gesture.Recognizer { return a.recognizer }

// Plugins returns the hook manager.
func (a *App) Plugins() *plugin.Manager { return a.plugins }

// Frames returns the buffer holding the latest annotated frame.
func (a *App) Frames() *server.FrameBuffer { return a.frames }

// Hub returns the WebSocket hub results are broadcast to.
func (a *App) Hub() *server.Hub { return a.hub }

// ServerConfig returns a server configuration backed by this app.
func (a *App) ServerConfig() server.Config {
	return server.Config{
		StaticDir:  a.config.Server.StaticDir,
		Store:      a.store,
		Recognizer: a.recognizer,
		Plugins:    a.plugins,
		Frames:     a.frames,
		Hub:        a.hub,
		Toggle:     a,
	}
}

var _ server.Toggle = (*App)(nil)
