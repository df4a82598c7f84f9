package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor/schema"
)

// TimeIntelligenceFunctions lists the DAX functions whose presence in any
// measure marks a model as using time intelligence.
var TimeIntelligenceFunctions = []string{
	"SAMEPERIODLASTYEAR",
	"DATEADD",
	"DATESYTD",
	"DATESQTD",
	"DATESMTD",
	"TOTALYTD",
	"TOTALQTD",
	"TOTALMTD",
	"PARALLELPERIOD",
	"PREVIOUSYEAR",
	"PREVIOUSQUARTER",
	"PREVIOUSMONTH",
	"PREVIOUSDAY",
	"NEXTYEAR",
	"NEXTQUARTER",
	"NEXTMONTH",
	"NEXTDAY",
	"DATESINPERIOD",
	"DATESBETWEEN",
	"OPENINGBALANCEYEAR",
	"CLOSINGBALANCEYEAR",
	"STARTOFYEAR",
	"ENDOFYEAR",
}

// Reduce summarizes a Model for grading.
//
// Tables that are both hidden and private are dropped, along with
// relationships to generated date tables and template hierarchies.
// Relationships and hierarchies that reference tables or columns the model
// does not define are dropped and recorded as warnings. Reduce never fails;
// a nil model yields an empty summary.
func Reduce(model *schema.Model, opts ...Option) *schema.GradingInfo {
	o := newOptions(opts)

	info := &schema.GradingInfo{
		ModelName:     "Unknown",
		Tables:        []schema.TableInfo{},
		Measures:      []schema.MeasureInfo{},
		Relationships: []schema.RelationshipInfo{},
		Hierarchies:   []schema.HierarchyInfo{},
	}
	if model == nil {
		return info
	}

	if model.Name != "" {
		info.ModelName = model.Name
	}
	info.CompatibilityLevel = model.CompatibilityLevel

	retained := schema.FilterTables(model.Tables)
	for _, table := range retained {
		info.Tables = append(info.Tables, reduceTable(table))
		for _, measure := range table.Measures {
			info.Measures = append(info.Measures, schema.MeasureInfo{
				Name:       measure.Name,
				Table:      table.Name,
				Expression: measure.Expression.String(),
			})
		}
	}

	reduceRelationships(model, info)
	reduceHierarchies(retained, info)
	info.DataSource = findDataSource(model, retained, o.sourceMatcher)
	info.Summary = summarize(info)

	for _, w := range info.Warnings {
		o.logger.Warn("Malformed model entry dropped",
			zap.String("kind", string(w.Kind)),
			zap.String("subject", w.Subject),
			zap.String("message", w.Message))
	}

	return info
}

// HasTimeIntelligence reports whether a DAX expression calls one of
// TimeIntelligenceFunctions. Matching is a case-insensitive substring test.
func HasTimeIntelligence(expression string) bool {
	upper := strings.ToUpper(expression)
	for _, fn := range TimeIntelligenceFunctions {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

func reduceTable(table schema.Table) schema.TableInfo {
	tableInfo := schema.TableInfo{
		Name:     table.Name,
		Columns:  []schema.ColumnInfo{},
		Measures: []string{},
	}

	for _, col := range table.Columns {
		if col.IsHidden || col.Type == "rowNumber" {
			continue
		}
		tableInfo.Columns = append(tableInfo.Columns, schema.ColumnInfo{
			Name:         col.Name,
			DataType:     col.DataType,
			SummarizeBy:  col.SummarizeBy,
			IsCalculated: col.IsCalculated(),
		})
	}

	for _, measure := range table.Measures {
		tableInfo.Measures = append(tableInfo.Measures, measure.Name)
	}

	return tableInfo
}

func reduceRelationships(model *schema.Model, info *schema.GradingInfo) {
	index := model.TableIndex()

	for _, rel := range model.Relationships {
		if schema.IsLocalDateTable(rel.FromTable) || schema.IsLocalDateTable(rel.ToTable) {
			continue
		}

		subject := fmt.Sprintf("%s[%s] -> %s[%s]", rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn)
		if w, ok := checkEndpoint(model, index, rel.FromTable, rel.FromColumn, subject); !ok {
			info.Warnings = append(info.Warnings, w)
			continue
		}
		if w, ok := checkEndpoint(model, index, rel.ToTable, rel.ToColumn, subject); !ok {
			info.Warnings = append(info.Warnings, w)
			continue
		}

		kind := rel.JoinOnDateBehavior
		if kind == "" {
			kind = "standard"
		}

		info.Relationships = append(info.Relationships, schema.RelationshipInfo{
			FromTable:   rel.FromTable,
			FromColumn:  rel.FromColumn,
			ToTable:     rel.ToTable,
			ToColumn:    rel.ToColumn,
			Kind:        kind,
			Cardinality: fmt.Sprintf("%s-to-%s", orDefault(rel.FromCardinality, "many"), orDefault(rel.ToCardinality, "one")),
			Active:      rel.Active(),
		})
	}
}

func checkEndpoint(model *schema.Model, index map[string]int, table, column, subject string) (schema.Warning, bool) {
	i, ok := index[table]
	if !ok {
		return schema.Warning{
			Kind:    schema.WarningMissingTable,
			Subject: subject,
			Message: fmt.Sprintf("relationship references undefined table %q", table),
		}, false
	}
	if !model.Tables[i].HasColumn(column) {
		return schema.Warning{
			Kind:    schema.WarningMissingColumn,
			Subject: subject,
			Message: fmt.Sprintf("relationship references undefined column %q in table %q", column, table),
		}, false
	}
	return schema.Warning{}, true
}

func reduceHierarchies(tables []schema.Table, info *schema.GradingInfo) {
	for _, table := range tables {
		if schema.IsLocalDateTable(table.Name) {
			continue
		}

	hierarchies:
		for _, h := range table.Hierarchies {
			if schema.IsTemplateHierarchy(h) {
				continue
			}

			levels := make([]string, 0, len(h.Levels))
			for _, level := range h.Levels {
				if level.Column != "" && !table.HasColumn(level.Column) {
					info.Warnings = append(info.Warnings, schema.Warning{
						Kind:    schema.WarningMissingColumn,
						Subject: fmt.Sprintf("%s.%s", table.Name, h.Name),
						Message: fmt.Sprintf("hierarchy level %q references undefined column %q", level.Name, level.Column),
					})
					continue hierarchies
				}
				levels = append(levels, level.Name)
			}

			info.Hierarchies = append(info.Hierarchies, schema.HierarchyInfo{
				Name:   h.Name,
				Table:  table.Name,
				Levels: levels,
			})
		}
	}
}

// findDataSource scans M code in order: retained table partitions, shared
// expressions, then legacy connection strings. The first hit wins.
func findDataSource(model *schema.Model, tables []schema.Table, matcher SourceMatcher) *schema.DataSourceInfo {
	for _, table := range tables {
		for _, partition := range table.Partitions {
			if !strings.EqualFold(partition.Source.Type, "m") {
				continue
			}
			if ds := matcher.MatchSource(partition.Source.Expression.Flat()); ds != nil {
				return ds
			}
		}
	}

	for _, expr := range model.Expressions {
		if expr.Kind != "" && !strings.EqualFold(expr.Kind, "m") {
			continue
		}
		if ds := matcher.MatchSource(expr.Expression.Flat()); ds != nil {
			return ds
		}
	}

	for _, source := range model.DataSources {
		if ds := matcher.MatchSource(source.ConnectionString); ds != nil {
			return ds
		}
	}

	return nil
}

func summarize(info *schema.GradingInfo) schema.Summary {
	summary := schema.Summary{
		TotalMeasures:      len(info.Measures),
		TotalRelationships: len(info.Relationships),
		TotalHierarchies:   len(info.Hierarchies),
	}

	if top := mainTable(info); top != nil {
		summary.MainTable = top.Name
		summary.TotalColumns = len(top.Columns)
	}

	for _, m := range info.Measures {
		if HasTimeIntelligence(m.Expression) {
			summary.HasTimeIntelligence = true
			break
		}
	}

	return summary
}

// mainTable picks the table with the most columns, then the most
// relationships touching it, then the first encountered.
func mainTable(info *schema.GradingInfo) *schema.TableInfo {
	touching := make(map[string]int)
	for _, rel := range info.Relationships {
		touching[rel.FromTable]++
		if rel.ToTable != rel.FromTable {
			touching[rel.ToTable]++
		}
	}

	var best *schema.TableInfo
	for i := range info.Tables {
		candidate := &info.Tables[i]
		if best == nil {
			best = candidate
			continue
		}
		switch {
		case len(candidate.Columns) > len(best.Columns):
			best = candidate
		case len(candidate.Columns) == len(best.Columns) && touching[candidate.Name] > touching[best.Name]:
			best = candidate
		}
	}
	return best
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
