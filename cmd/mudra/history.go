package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/store"
)

var historyOpts struct {
	label string
	limit int
	since time.Duration
	prune time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently recognized labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory()
	},
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyOpts.label, "label", "", "only show this label")
	f.IntVarP(&historyOpts.limit, "limit", "n", store.DefaultDetectionLimit, "maximum entries")
	f.DurationVar(&historyOpts.since, "since", 0, "only show entries newer than this, e.g. 1h")
	f.DurationVar(&historyOpts.prune, "prune", 0, "delete entries older than this instead of listing")
}

func runHistory() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if historyOpts.prune > 0 {
		n, err := st.Detections().DeleteBefore(time.Now().Add(-historyOpts.prune))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d entries.\n", n)
		return nil
	}

	q := store.DetectionQuery{Label: historyOpts.label, Limit: historyOpts.limit}
	if historyOpts.since > 0 {
		q.Since = time.Now().Add(-historyOpts.since)
	}
	list, err := st.Detections().List(q)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No detections found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tLABEL\tHAND\tCURLS\tANGLE")
	fmt.Fprintln(w, "----\t-----\t----\t-----\t-----")
	for _, d := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\n", d.CreatedAt.Local().Format("2006-01-02 15:04:05"), d.Label, d.Handedness, d.Curls, d.Angle)
	}
	w.Flush()
	return nil
}
