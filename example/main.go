package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lucasefe/pbimentor"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go <template.pbit> [output_file]")
		fmt.Println("Example: go run main.go submissions/alice.pbit report.txt")
		os.Exit(1)
	}

	templatePath := os.Args[1]
	outputFile := "report.txt"
	if len(os.Args) > 2 {
		outputFile = os.Args[2]
	}

	fmt.Printf("Reading template %s...\n", templatePath)

	info, err := pbimentor.GradingInfoFromFile(templatePath, nil)
	if err != nil {
		log.Fatalf("Failed to analyze template: %v", err)
	}

	fmt.Printf("Found %d tables, %d measures and %d relationships\n",
		len(info.Tables), len(info.Measures), len(info.Relationships))
	for _, w := range info.Warnings {
		fmt.Printf("  warning: %s\n", w.Message)
	}

	reportContent := pbimentor.Analyze(info)

	fmt.Printf("Writing report to file: %s\n", outputFile)

	if err := os.WriteFile(outputFile, []byte(reportContent), 0644); err != nil {
		log.Fatalf("Failed to write report file: %v", err)
	}

	fmt.Printf("Successfully generated report: %s\n", outputFile)

	fmt.Println("\nReport preview:")
	fmt.Println("---------------")
	if len(reportContent) > 500 {
		fmt.Printf("%s...\n", reportContent[:500])
	} else {
		fmt.Println(reportContent)
	}
}
