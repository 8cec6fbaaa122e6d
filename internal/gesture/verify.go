package gesture

import (
	"sort"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// Labelled is a hand with the label it is known to show.
type Labelled struct {
	ID       string
	Expected string
	Hand     detector.HandLandmarks
}

// Mismatch is one labelled hand the recognizer got wrong.
type Mismatch struct {
	ID       string `json:"id,omitempty"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
	Curls    Curls  `json:"curls"`
}

// Report summarizes how a recognizer fares against labelled hands.
type Report struct {
	InvertThumbRotation bool       `json:"invert_thumb_rotation"`
	Total               int        `json:"total"`
	Correct             int        `json:"correct"`
	Failed              int        `json:"failed"`
	Accuracy            float64    `json:"accuracy"`
	Mismatches          []Mismatch `json:"mismatches,omitempty"`
	// PerLabel counts correct and total hands for each expected label.
	PerLabel map[string][2]int `json:"per_label"`
}

// Verify classifies every labelled hand and reports the agreement. Hands that
// cannot be modelled count towards Total and Failed but not Correct.
func (r *Recognizer) Verify(samples []Labelled) Report {
	rep := Report{
		InvertThumbRotation: r.config.InvertThumbRotation,
		PerLabel:            make(map[string][2]int),
	}

	for _, s := range samples {
		rep.Total++
		counts := rep.PerLabel[s.Expected]
		counts[1]++

		res, err := r.ClassifyHand(s.Hand)
		switch {
		case err != nil:
			rep.Failed++
		case res.Label == s.Expected:
			rep.Correct++
			counts[0]++
		default:
			rep.Mismatches = append(rep.Mismatches, Mismatch{
				ID:       s.ID,
				Expected: s.Expected,
				Got:      res.Label,
				Curls:    res.Curls,
			})
		}
		rep.PerLabel[s.Expected] = counts
	}

	if rep.Total > 0 {
		rep.Accuracy = float64(rep.Correct) / float64(rep.Total)
	}
	return rep
}

// CompareThumbConventions verifies samples once with the configured thumb
// rotation and once with it inverted, best accuracy first. The matcher and
// remaining thresholds are shared.
func CompareThumbConventions(m *Matcher, cfg hand.Config, samples []Labelled) []Report {
	inverted := cfg
	inverted.InvertThumbRotation = !cfg.InvertThumbRotation

	reports := []Report{
		NewRecognizer(m, cfg).Verify(samples),
		NewRecognizer(m, inverted).Verify(samples),
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Accuracy > reports[j].Accuracy
	})
	return reports
}
