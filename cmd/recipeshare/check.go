package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-share/internal/compliance"
	"github.com/jonathan/recipe-share/internal/overlap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run an offline compliance check",
	Long:  "Scores a rewritten method against the original instructions without touching the database or the rewrite service. Each input file holds one step per line.",
	RunE:  runCheck,
}

var (
	checkOriginal  string
	checkRewritten string
	checkSemantic  bool
)

func init() {
	checkCmd.Flags().StringVarP(&checkOriginal, "original", "i", "", "Path to original instructions file (required)")
	checkCmd.Flags().StringVarP(&checkRewritten, "rewritten", "r", "", "Path to rewritten method file (required)")
	checkCmd.Flags().BoolVar(&checkSemantic, "semantic", false, "Force the semantic similarity check")

	if err := checkCmd.MarkFlagRequired("original"); err != nil {
		panic(fmt.Sprintf("failed to mark original flag as required: %v", err))
	}
	if err := checkCmd.MarkFlagRequired("rewritten"); err != nil {
		panic(fmt.Sprintf("failed to mark rewritten flag as required: %v", err))
	}

	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	original, err := readSteps(checkOriginal)
	if err != nil {
		return err
	}
	rewritten, err := readSteps(checkRewritten)
	if err != nil {
		return err
	}

	evaluator := compliance.NewEvaluator(compliance.DefaultConfig(), overlap.DefaultScorer())
	metrics := evaluator.Evaluate(original, rewritten, checkSemantic)

	out, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	fmt.Println(string(out))

	if !metrics.Passed {
		os.Exit(1)
	}
	return nil
}

// readSteps loads a file and returns its non-empty lines.
func readSteps(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var steps []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps, nil
}
