//go:build ignore

// This file demonstrates various ways to use the pbimentor packages as a library.
// Run with: go run library.go <template.pbit> [submission_dir]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor"
	"github.com/lucasefe/pbimentor/evaluator"
	"github.com/lucasefe/pbimentor/extract"
	"github.com/lucasefe/pbimentor/mentor"
	"github.com/lucasefe/pbimentor/report"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run library.go <template.pbit> [submission_dir]")
		os.Exit(1)
	}

	templatePath := os.Args[1]

	fmt.Println("=== Example 1: Basic Usage ===")
	basicUsage(templatePath)

	fmt.Println("\n=== Example 2: Custom Data Sources ===")
	customSources(templatePath)

	fmt.Println("\n=== Example 3: Using Subpackages with Functional Options ===")
	usingSubpackages(templatePath)

	if len(os.Args) > 2 {
		fmt.Println("\n=== Example 4: Grading a Submission ===")
		grading(os.Args[2])
	}
}

// basicUsage shows the simplest way to produce a report
func basicUsage(path string) {
	text, err := pbimentor.AnalyzeFile(path, nil)
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	printPreview("Basic output", text)
}

// customSources recognizes data sources the default patterns do not know
func customSources(path string) {
	// Method 1: Simple map-based patterns
	config := &pbimentor.Config{
		SourcePatterns: map[string]string{
			"Snowflake": `Snowflake\.Databases\("([^"]+)"`,
			"Lakehouse": `Lakehouse\.Contents\("([^"]+)"`,
		},
	}

	info, err := pbimentor.GradingInfoFromFile(path, config)
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	if info.DataSource != nil {
		fmt.Printf("Data source: %s (%s)\n", info.DataSource.Type, info.DataSource.Path)
	}

	// Method 2: Using the SourceMatcher interface (for more control)
	matcher := extract.NewSourceMatcher(map[string]string{
		"Snowflake": `Snowflake\.Databases\("([^"]+)"`,
	})

	text, err := pbimentor.AnalyzeFile(path, &pbimentor.Config{SourceMatcher: matcher})
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	printPreview("With SourceMatcher interface", text)
}

// usingSubpackages demonstrates the subpackage APIs with functional options
func usingSubpackages(path string) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	model, err := extract.Schema(path, extract.WithLogger(logger))
	if err != nil {
		log.Printf("Error extracting: %v", err)
		return
	}

	fmt.Printf("Extracted %d tables (%d after filtering)\n", len(model.Tables), len(extract.Reduce(model).Tables))

	info := extract.Reduce(model, extract.WithLogger(logger))

	// The report package returns []byte
	output, err := report.Generate(info)
	if err != nil {
		log.Printf("Error generating: %v", err)
		return
	}

	printPreview("Generated using subpackages", string(output))
}

// grading evaluates a submission directory with the Gemini API
func grading(submission string) {
	ctx := context.Background()

	eval, err := evaluator.New(ctx, evaluator.Config{
		Backend: evaluator.BackendGemini,
		APIKey:  os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	assignment := &mentor.Assignment{
		Questions: mentor.Texts{
			DAX:   "Create a measure that computes year-to-date sales.",
			Write: "Describe the sales trend you observe.",
		},
		Prompts: mentor.Texts{
			DAX:   "Reward correct use of time intelligence functions.",
			Write: "Check that the explanation is supported by the data.",
		},
	}

	grade, err := mentor.New(eval, eval).EvaluateAll(ctx, submission, assignment)
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	fmt.Printf("Score: %.2f\n", grade.Score)
	printPreview("Feedback", grade.Feedback)
}

// printPreview prints a preview of the generated content
func printPreview(title, content string) {
	fmt.Printf("\n%s:\n", title)
	fmt.Println("---")
	if len(content) > 300 {
		fmt.Printf("%s...\n", content[:300])
	} else {
		fmt.Print(content)
	}
	fmt.Println("---")
}
