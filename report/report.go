// Package report converts grading information into a plain-text report.
//
// Basic usage:
//
//	output, err := report.Generate(info)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(output)
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasefe/pbimentor/schema"
)

// Generate converts GradingInfo into report bytes.
// Sections always appear in the same order (model, data source, tables,
// measure details, relationships, hierarchies, summary) and tables, measures
// and relationships keep their model order, so identical input yields
// byte-identical output. The data source section is omitted when no source
// was found; other empty sections say "none".
func Generate(info *schema.GradingInfo) ([]byte, error) {
	if info == nil {
		info = &schema.GradingInfo{}
	}

	var builder strings.Builder

	generateHeader(&builder, info)
	generateDataSource(&builder, info.DataSource)
	generateTables(&builder, info.Tables)
	generateMeasures(&builder, info.Measures)
	generateRelationships(&builder, info.Relationships)
	generateHierarchies(&builder, info.Hierarchies)
	generateSummary(&builder, info.Summary)

	return []byte(builder.String()), nil
}

// GenerateString is a convenience wrapper that returns the report as a string.
func GenerateString(info *schema.GradingInfo) (string, error) {
	result, err := Generate(info)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func generateHeader(builder *strings.Builder, info *schema.GradingInfo) {
	builder.WriteString(fmt.Sprintf("Model: %s\n", orPlaceholder(info.ModelName, "Unknown")))

	level := "unknown"
	if info.CompatibilityLevel > 0 {
		level = strconv.Itoa(info.CompatibilityLevel)
	}
	builder.WriteString(fmt.Sprintf("Compatibility Level: %s\n", level))
	builder.WriteString("\n")
}

func generateDataSource(builder *strings.Builder, ds *schema.DataSourceInfo) {
	if ds == nil {
		return
	}
	builder.WriteString("Data Source:\n")
	builder.WriteString(fmt.Sprintf("  Type: %s\n", ds.Type))
	builder.WriteString(fmt.Sprintf("  Path: %s\n", ds.Path))
	builder.WriteString("\n")
}

func generateTables(builder *strings.Builder, tables []schema.TableInfo) {
	builder.WriteString("Tables:\n")
	for _, table := range tables {
		builder.WriteString(fmt.Sprintf("  - %s\n", table.Name))

		builder.WriteString("    Columns:\n")
		for _, column := range table.Columns {
			generateColumn(builder, column)
		}

		if len(table.Measures) > 0 {
			builder.WriteString("    Measures:\n")
			for _, name := range table.Measures {
				builder.WriteString(fmt.Sprintf("      • %s\n", name))
			}
		} else {
			builder.WriteString("    Measures: none\n")
		}

		builder.WriteString("\n")
	}
	if len(tables) == 0 {
		builder.WriteString("  none\n\n")
	}
}

func generateColumn(builder *strings.Builder, column schema.ColumnInfo) {
	builder.WriteString(fmt.Sprintf("      • %s (type=%s, summarize_by=%s, calculated=%t)\n",
		column.Name,
		orPlaceholder(column.DataType, "unknown"),
		orPlaceholder(column.SummarizeBy, "default"),
		column.IsCalculated))
}

func generateMeasures(builder *strings.Builder, measures []schema.MeasureInfo) {
	builder.WriteString("Measures (details):\n")
	for _, m := range measures {
		builder.WriteString(fmt.Sprintf("  - %s (table: %s)\n", m.Name, m.Table))
		for _, line := range strings.Split(m.Expression, "\n") {
			builder.WriteString(fmt.Sprintf("      %s\n", line))
		}
		builder.WriteString("\n")
	}
	if len(measures) == 0 {
		builder.WriteString("  none\n\n")
	}
}

func generateRelationships(builder *strings.Builder, relationships []schema.RelationshipInfo) {
	builder.WriteString("Relationships:\n")
	for _, rel := range relationships {
		builder.WriteString(fmt.Sprintf("  - %s -> %s (%s)\n",
			ColumnRef(rel.FromTable, rel.FromColumn),
			ColumnRef(rel.ToTable, rel.ToColumn),
			orPlaceholder(rel.Kind, "standard")))
	}
	if len(relationships) == 0 {
		builder.WriteString("  none\n")
	}
	builder.WriteString("\n")
}

func generateHierarchies(builder *strings.Builder, hierarchies []schema.HierarchyInfo) {
	builder.WriteString("Hierarchies:\n")
	for _, h := range hierarchies {
		builder.WriteString(fmt.Sprintf("  - %s (table: %s) levels: %s\n", h.Name, h.Table, strings.Join(h.Levels, ", ")))
	}
	if len(hierarchies) == 0 {
		builder.WriteString("  none\n")
	}
	builder.WriteString("\n")
}

func generateSummary(builder *strings.Builder, summary schema.Summary) {
	builder.WriteString("Summary:\n")
	builder.WriteString(fmt.Sprintf("  - main_table: %s\n", orPlaceholder(summary.MainTable, "none")))
	builder.WriteString(fmt.Sprintf("  - total_columns: %d\n", summary.TotalColumns))
	builder.WriteString(fmt.Sprintf("  - total_measures: %d\n", summary.TotalMeasures))
	builder.WriteString(fmt.Sprintf("  - total_relationships: %d\n", summary.TotalRelationships))
	builder.WriteString(fmt.Sprintf("  - total_hierarchies: %d\n", summary.TotalHierarchies))
	builder.WriteString(fmt.Sprintf("  - has_time_intelligence: %t\n", summary.HasTimeIntelligence))
}

// ColumnRef formats a table column reference the way DAX writes it: Table[Column].
func ColumnRef(table, column string) string {
	return fmt.Sprintf("%s[%s]", table, column)
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
