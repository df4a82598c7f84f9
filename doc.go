// Package pbimentor provides tools for grading Power BI templates (.pbit).
//
// The package reads the data model embedded in a template, reduces it to the
// facts a grader cares about (tables, columns, measures, relationships,
// hierarchies, the data source and a summary), and renders those facts as a
// stable plain-text report that can be handed to a reviewer or an LLM.
//
// # Basic Usage
//
// Generate a report from a template:
//
//	import "github.com/lucasefe/pbimentor"
//
//	text, err := pbimentor.AnalyzeFile("submission.pbit", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(text)
//
// # Configuration
//
// Use Config to recognize extra data sources or log model warnings:
//
//	config := &pbimentor.Config{
//	    SourcePatterns: map[string]string{
//	        "Snowflake": `Snowflake\.Databases\("([^"]+)"`,
//	    },
//	    Logger: logger,
//	}
//	text, err := pbimentor.AnalyzeFile("submission.pbit", config)
//
// # Working with Grading Information Directly
//
//	info, err := pbimentor.GradingInfoFromFile("submission.pbit", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Summary.MainTable)
//
//	// Render later
//	text := pbimentor.Analyze(info)
//
// # Subpackages
//
// For finer control use the subpackages directly:
//
//   - extract: archive reading, decoding, parsing and reduction
//   - report: report rendering
//   - evaluator: LLM-backed scoring of answers and visuals
//   - mentor: grading of whole submissions against an assignment
package pbimentor
