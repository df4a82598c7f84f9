package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(a *app) *cobra.Command {
	var (
		asJSON     bool
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.pbit>",
		Short: "Print the grading report of a template",
		Long: `Extract the data model of a Power BI template and print its report.
With --json the reduced grading information is printed instead.`,
		Example: `  pbimentor analyze sales.pbit
  pbimentor analyze sales.pbit --json -o sales.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			a.logger.Debug("Analyzing template", zap.String("path", path))

			info, err := pbimentor.GradingInfoFromFile(path, &pbimentor.Config{Logger: a.logger})
			if err != nil {
				return err
			}

			var content []byte
			if asJSON {
				content, err = json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode grading info: %w", err)
				}
				content = append(content, '\n')
			} else {
				content = []byte(pbimentor.Analyze(info))
			}

			for _, w := range info.Warnings {
				color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
			}

			if outputFile == "" {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}

			if err := os.WriteFile(outputFile, content, 0644); err != nil {
				return fmt.Errorf("failed to write to file %s: %w", outputFile, err)
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Report written to %s (%d bytes)\n", outputFile, len(content))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print grading information as JSON")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default: stdout)")

	return cmd
}
