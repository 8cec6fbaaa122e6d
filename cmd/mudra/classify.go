package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// maxLineSize bounds one JSON line of a recorded session.
const maxLineSize = 1 << 20

var classifyOpts struct {
	input  string
	output string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a recorded landmark session (one JSON frame per line)",
	Long: `Classify reads a session of frames, one JSON object per line of the form
{"hands":[{"points":[{"x":..,"y":..,"z":..}, ...21],"handedness":"Right"}]},
and writes one line of results per frame.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify()
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyOpts.input, "input", "i", "", "session file (JSON lines)")
	classifyCmd.Flags().StringVarP(&classifyOpts.output, "output", "o", "", "results file (default: stdout)")
	classifyCmd.MarkFlagRequired("input")
}

// sessionFrame is one line of a recorded session.
type sessionFrame struct {
	Hands []detector.HandLandmarks `json:"hands"`
}

// frameResult is one line of classify output.
type frameResult struct {
	Frame   int              `json:"frame"`
	Results []gesture.Result `json:"results"`
	Error   string           `json:"error,omitempty"`
}

func runClassify() error {
	lines, err := readLines(classifyOpts.input)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if classifyOpts.output != "" {
		f, err := os.Create(classifyOpts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	enc := json.NewEncoder(w)

	recognizer := gesture.NewRecognizer(gesture.NewMatcher(gesture.RuleTable(cfg.Recognition.TouchRatio)), cfg.HandConfig())

	bar := progressbar.NewOptions(len(lines),
		progressbar.OptionSetDescription("classifying"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	counts := make(map[string]int)
	bad := 0
	for i, line := range lines {
		res := classifyLine(recognizer, i+1, line)
		if res.Error != "" {
			bad++
		}
		for _, r := range res.Results {
			counts[r.Label]++
		}

		if err := enc.Encode(res); err != nil {
			return err
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n%d frames, %d unreadable\n", len(lines), bad)
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(os.Stderr, "  %-4s %d\n", l, counts[l])
	}
	return nil
}

// classifyLine classifies one session line. A line that does not decode,
// including a hand without exactly 21 points, is reported in Error.
func classifyLine(recognizer *gesture.Recognizer, n int, line []byte) frameResult {
	res := frameResult{Frame: n}
	var frame sessionFrame
	if err := json.Unmarshal(line, &frame); err != nil {
		res.Error = err.Error()
		return res
	}
	// per-hand failures are logged and skipped by the recognizer
	res.Results, _ = recognizer.Recognize(frame.Hands, nil)
	return res
}

// readLines returns the non-blank lines of a JSON lines file.
func readLines(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, bytes.Clone(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
