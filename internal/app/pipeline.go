package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/store"
)

// Frame is the message broadcast to WebSocket subscribers for every
// processed frame.
type Frame struct {
	Results   []gesture.Result `json:"results"`
	Timestamp time.Time        `json:"timestamp"`
}

// run is the main loop. It ticks at the gate's frame rate:
//
//  1. Start idle; motion switches to the active rate at once.
//  2. In active mode, detect hands and recognize them onto the frame.
//  3. Publish every frame, annotated or not, to the MJPEG buffer.
//  4. After IdleTimeout without motion, drop back to idle and forget the
//     last labels so a returning hand triggers its hooks again.
func (a *App) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.gate.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		frame, err := a.Camera().ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			logger.Info("camera stream ended")
			return
		}
		if err != nil {
			logger.Warn("error reading frame", zap.Error(err))
			continue
		}

		moved, pct := a.motion.Detect(frame)
		if a.gate.Observe(moved, time.Now()) {
			a.Camera().SetFPS(a.gate.FPS())
			ticker.Reset(a.gate.Interval())
			if !a.gate.Active() {
				a.forget()
			}
			logger.Debug("frame rate changed",
				zap.Bool("active", a.gate.Active()),
				zap.Int("fps", a.gate.FPS()),
				zap.Float64("motion_pct", pct))
		}

		if a.gate.Active() {
			if _, err := a.ProcessFrame(ctx, frame, time.Now()); err != nil {
				logger.Warn("error processing frame", zap.Error(err))
			}
		} else if err := a.frames.Publish(frame); err != nil {
			logger.Debug("error publishing frame", zap.Error(err))
		}
		frame.Close()
	}
}

// ProcessFrame detects and recognizes the hands in frame, draws them onto it,
// publishes the annotated frame and broadcasts the results. A hand whose label
// changed since the previous frame is recorded and triggers its hooks.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat, at time.Time) ([]gesture.Result, error) {
	d := a.Detector()
	if d == nil {
		return nil, nil
	}

	hands, err := d.Detect(frame)
	if err != nil {
		return nil, err
	}

	var errs []error
	results, err := a.recognizer.Recognize(hands, render.NewOverlay(frame))
	if err != nil {
		errs = append(errs, err)
	}

	if err := a.frames.Publish(frame); err != nil {
		errs = append(errs, err)
	}
	if _, err := a.hub.Broadcast(Frame{Results: results, Timestamp: at}); err != nil {
		errs = append(errs, err)
	}

	for _, res := range a.changed(results) {
		a.record(res, at)
		a.trigger(ctx, res)
	}

	return results, errors.Join(errs...)
}

// changed updates the last label per handedness and returns the results
// whose label differs from it. Hands that left the frame are forgotten.
func (a *App) changed(results []gesture.Result) []gesture.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]bool, len(results))
	var out []gesture.Result
	for _, res := range results {
		seen[res.Handedness] = true
		if a.lastSeen[res.Handedness] == res.Label {
			continue
		}
		a.lastSeen[res.Handedness] = res.Label
		out = append(out, res)
	}
	for h := range a.lastSeen {
		if !seen[h] {
			delete(a.lastSeen, h)
		}
	}
	return out
}

func (a *App) forget() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.lastSeen)
}

// record appends res to the detection history.
func (a *App) record(res gesture.Result, at time.Time) {
	logger.Info("label recognized",
		zap.String("label", res.Label),
		zap.String("handedness", res.Handedness),
		zap.Stringer("curls", res.Curls))

	if a.store == nil {
		return
	}
	err := a.store.Detections().Create(&store.Detection{
		Label:      res.Label,
		Handedness: res.Handedness,
		Curls:      res.Curls.String(),
		AnchorX:    res.Anchor.X,
		AnchorY:    res.Anchor.Y,
		Angle:      res.Angle,
		CreatedAt:  at,
	})
	if err != nil {
		logger.Warn("failed to record detection", zap.Error(err))
	}
}

// trigger notifies the label callback and runs the hooks bound to the label.
// Hooks run in the background so a slow hook never stalls the camera.
func (a *App) trigger(ctx context.Context, res gesture.Result) {
	if res.Label == gesture.Unrecognized {
		return
	}

	a.mu.RLock()
	onLabel := a.onLabel
	a.mu.RUnlock()
	if onLabel != nil {
		onLabel(res.Label)
	}

	if a.dispatcher == nil {
		return
	}
	a.hooks.Add(1)
	go func() {
		defer a.hooks.Done()
		ran, err := a.dispatcher.Dispatch(ctx, res.Label, res.Handedness)
		if err != nil {
			logger.Warn("hook failed", zap.String("label", res.Label), zap.Error(err))
		}
		if ran > 0 {
			logger.Debug("hooks ran", zap.String("label", res.Label), zap.Int("count", ran))
		}
	}()
}
