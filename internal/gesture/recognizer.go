package gesture

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/render"
)

// Recognizer is the per-frame entry point: it models, classifies and renders
// every detected hand.
type Recognizer struct {
	matcher *Matcher
	config  hand.Config
}

// NewRecognizer creates a Recognizer. A nil matcher uses the default rule table.
func NewRecognizer(m *Matcher, cfg hand.Config) *Recognizer {
	if m == nil {
		m = NewMatcher(nil)
	}
	return &Recognizer{matcher: m, config: cfg}
}

// Matcher returns the rule matcher in use.
func (r *Recognizer) Matcher() *Matcher { return r.matcher }

// HandConfig returns the thresholds hand models are built with.
func (r *Recognizer) HandConfig() hand.Config { return r.config }

// ClassifyHand builds a model for one hand and classifies it.
func (r *Recognizer) ClassifyHand(h detector.HandLandmarks) (Result, error) {
	m, err := hand.FromLandmarks(h, r.config)
	if err != nil {
		return Result{}, err
	}
	return r.matcher.Classify(m)
}

// Recognize classifies every hand of one frame and passes each result to out.
//
// A hand that cannot be modelled is logged and skipped; the remaining hands
// are still processed. Renderer failures do not stop the frame and are
// returned joined. out may be nil.
func (r *Recognizer) Recognize(hands []detector.HandLandmarks, out render.Renderer) ([]Result, error) {
	results := make([]Result, 0, len(hands))
	var errs []error

	for i, h := range hands {
		res, err := r.ClassifyHand(h)
		if err != nil {
			logger.Warn("skipping hand",
				zap.Int("hand", i),
				zap.String("handedness", h.Handedness),
				zap.Error(err))
			continue
		}
		results = append(results, res)

		if out == nil {
			continue
		}
		if err := out.Render(res.Annotation()); err != nil {
			errs = append(errs, fmt.Errorf("render hand %d: %w", i, err))
		}
	}

	return results, errors.Join(errs...)
}
