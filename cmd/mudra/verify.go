package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

var verifyOpts struct {
	label      string
	json       bool
	mismatches bool
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Measure recognition accuracy over the stored samples",
	Long: `Verify classifies every stored sample under both thumb rotation conventions
and reports the accuracy of each, best first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify()
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyOpts.label, "label", "", "only verify samples with this label")
	verifyCmd.Flags().BoolVar(&verifyOpts.json, "json", false, "print the reports as JSON")
	verifyCmd.Flags().BoolVar(&verifyOpts.mismatches, "mismatches", false, "list every misclassified sample")
}

func runVerify() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	samples, err := st.Samples().List(verifyOpts.label)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("No samples found. Add some with 'mudra samples import'.")
		return nil
	}

	reports := gesture.CompareThumbConventions(
		gesture.NewMatcher(gesture.RuleTable(cfg.Recognition.TouchRatio)),
		cfg.HandConfig(),
		labelled(samples),
	)

	if verifyOpts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "INVERT THUMB\tCORRECT\tFAILED\tTOTAL\tACCURACY")
	fmt.Fprintln(w, "------------\t-------\t------\t-----\t--------")
	for _, r := range reports {
		current := ""
		if r.InvertThumbRotation == cfg.Recognition.InvertThumbRotation {
			current = " (current)"
		}
		fmt.Fprintf(w, "%t%s\t%d\t%d\t%d\t%.1f%%\n", r.InvertThumbRotation, current, r.Correct, r.Failed, r.Total, r.Accuracy*100)
	}
	w.Flush()

	if verifyOpts.mismatches {
		for _, r := range reports {
			if r.InvertThumbRotation != cfg.Recognition.InvertThumbRotation {
				continue
			}
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "SAMPLE\tEXPECTED\tGOT\tCURLS")
			for _, m := range r.Mismatches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Expected, m.Got, m.Curls)
			}
			w.Flush()
		}
	}
	return nil
}

func labelled(samples []*store.Sample) []gesture.Labelled {
	out := make([]gesture.Labelled, len(samples))
	for i, s := range samples {
		out[i] = gesture.Labelled{ID: s.ID, Expected: s.Label, Hand: s.Hand}
	}
	return out
}
