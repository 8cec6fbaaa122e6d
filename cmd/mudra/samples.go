package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/store"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Manage labelled ground-truth samples",
}

var samplesImportOpts struct {
	label string
}

var samplesImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import samples from a JSON lines file",
	Long: `Import reads one sample per line: {"label":"5","hand":{"points":[...],"handedness":"Right"}}.
With --label, lines may omit the label or be bare hands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSamplesImport(args[0])
	},
}

var samplesListOpts struct {
	label string
}

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored samples",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSamplesList()
	},
}

func init() {
	samplesImportCmd.Flags().StringVar(&samplesImportOpts.label, "label", "", "label for lines that do not carry one")
	samplesListCmd.Flags().StringVar(&samplesListOpts.label, "label", "", "only list samples with this label")
	samplesCmd.AddCommand(samplesImportCmd, samplesListCmd)
}

// parseSample decodes one import line. A line without a hand is tried as a
// bare hand.
func parseSample(line []byte, label, source string) (*store.Sample, error) {
	s := &store.Sample{Source: source}
	if err := json.Unmarshal(line, s); err != nil {
		return nil, err
	}
	if s.Hand.Handedness == "" {
		if err := json.Unmarshal(line, &s.Hand); err != nil {
			return nil, err
		}
	}
	if s.Label == "" {
		s.Label = label
	}

	switch {
	case s.Label == "":
		return nil, fmt.Errorf("no label")
	case s.Hand.Handedness == "":
		return nil, fmt.Errorf("no handedness")
	}
	return s, s.Hand.Validate()
}

func runSamplesImport(path string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	source := filepath.Base(path)
	samples := make([]*store.Sample, 0, len(lines))
	bar := progressbar.NewOptions(len(lines),
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	skipped := 0
	for i, line := range lines {
		s, err := parseSample(line, samplesImportOpts.label, source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nline %d: %v\n", i+1, err)
			skipped++
		} else {
			samples = append(samples, s)
		}
		bar.Add(1)
	}
	bar.Finish()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Samples().CreateBatch(samples); err != nil {
		return fmt.Errorf("store samples: %w", err)
	}
	fmt.Fprintf(os.Stderr, "\nimported %d samples, skipped %d\n", len(samples), skipped)
	return nil
}

func runSamplesList() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	samples, err := st.Samples().List(samplesListOpts.label)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("No samples found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tHAND\tSOURCE\tCREATED")
	fmt.Fprintln(w, "--\t-----\t----\t------\t-------")
	for _, s := range samples {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Label, s.Hand.Handedness, s.Source, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()

	counts, err := st.Samples().Count()
	if err != nil {
		return err
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	fmt.Println()
	for _, l := range labels {
		fmt.Printf("%-4s %d\n", l, counts[l])
	}
	return nil
}
