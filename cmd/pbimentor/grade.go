package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucasefe/pbimentor/extract"
	"github.com/lucasefe/pbimentor/internal/config"
	"github.com/lucasefe/pbimentor/mentor"
)

// NewGradeCommand creates the grade command.
func NewGradeCommand(a *app) *cobra.Command {
	var (
		assignmentPath string
		asJSON         bool
		concurrency    int
	)

	cmd := &cobra.Command{
		Use:   "grade <submission>...",
		Short: "Grade submissions against an assignment",
		Long: `Grade one or more submissions. A submission is a directory, a zip archive
or a single .pbit, .pdf or .txt file. Questions and grading prompts are read
from the assignment file.`,
		Example: `  pbimentor grade submissions/alice.zip --assignment week3.yaml
  pbimentor grade submissions/* -a week3.yaml --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignment, err := config.LoadAssignment(assignmentPath)
			if err != nil {
				return err
			}

			eval, err := a.newEvaluator(cmd.Context(), a.cfg.EvaluatorSettings(a.logger))
			if err != nil {
				return err
			}

			m := mentor.New(eval, eval,
				mentor.WithLogger(a.logger),
				mentor.WithExtractOptions(extract.WithLogger(a.logger)))

			if concurrency <= 0 {
				concurrency = a.cfg.Grading.Concurrency
			}

			outcomes, err := m.GradeBatch(cmd.Context(), args, assignment, concurrency)
			if err != nil {
				return err
			}

			if asJSON {
				return writeOutcomesJSON(cmd.OutOrStdout(), outcomes)
			}

			failed := printOutcomes(cmd.OutOrStdout(), outcomes)
			if failed > 0 {
				return fmt.Errorf("%d of %d submissions could not be graded", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&assignmentPath, "assignment", "a", "", "assignment file with questions and prompts (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print grades as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "submissions graded in parallel (default from config)")
	_ = cmd.MarkFlagRequired("assignment")

	return cmd
}

type outcomeJSON struct {
	Path  string        `json:"path"`
	Grade *mentor.Grade `json:"grade,omitempty"`
	Error string        `json:"error,omitempty"`
}

func writeOutcomesJSON(w io.Writer, outcomes []mentor.Outcome) error {
	out := make([]outcomeJSON, 0, len(outcomes))
	for _, o := range outcomes {
		item := outcomeJSON{Path: o.Path, Grade: o.Grade}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		out = append(out, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printOutcomes(w io.Writer, outcomes []mentor.Outcome) int {
	header := color.New(color.FgCyan, color.Bold)
	red := color.New(color.FgRed)

	failed := 0
	for _, o := range outcomes {
		header.Fprintf(w, "%s\n", o.Path)
		if o.Err != nil {
			failed++
			red.Fprintf(w, "  failed: %v\n\n", o.Err)
			continue
		}
		scoreColor(o.Grade.Score).Fprintf(w, "  Score: %.2f/100\n\n", o.Grade.Score)
		fmt.Fprintln(w, o.Grade.Feedback)
	}
	return failed
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold)
	case score >= 50:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
