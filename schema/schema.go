// Package schema defines the data structures for representing a Power BI
// template data model and the grading summary reduced from it.
// These types are used throughout the pbimentor packages for extraction,
// reduction and report generation.
//
// Template schemas are loosely structured: every field here is optional and
// decodes to its zero value when the template omits it.
package schema

import (
	"encoding/json"
	"strings"
)

// Document is the root object of a DataModelSchema entry.
type Document struct {
	// Name is the model name as written by the authoring tool (often a GUID).
	Name string `json:"name"`
	// CompatibilityLevel is the tabular engine compatibility level, e.g. 1550.
	CompatibilityLevel int `json:"compatibilityLevel"`
	// Model holds the tabular model. Nil when the exporter flattened it into the root.
	Model *Model `json:"model"`
}

// Model represents the tabular model tree of a template.
type Model struct {
	// Name is the model display name, if any.
	Name string `json:"name"`
	// CompatibilityLevel is set on flattened documents only.
	CompatibilityLevel int `json:"compatibilityLevel"`
	// Culture is the model locale (e.g. "en-US").
	Culture string `json:"culture"`
	// Tables contains all tables, in document order.
	Tables []Table `json:"tables"`
	// Relationships contains declared links between table columns.
	Relationships []Relationship `json:"relationships"`
	// DataSources contains legacy (non-M) data source definitions.
	DataSources []DataSource `json:"dataSources"`
	// Expressions contains shared M queries and parameters.
	Expressions []NamedExpression `json:"expressions"`
	// Annotations are free-form tool metadata.
	Annotations []Annotation `json:"annotations"`
}

// Table represents a model table with its columns, measures, partitions
// and hierarchies.
type Table struct {
	Name                 string       `json:"name"`
	IsHidden             bool         `json:"isHidden"`
	IsPrivate            bool         `json:"isPrivate"`
	ShowAsVariationsOnly bool         `json:"showAsVariationsOnly"`
	Columns              []Column     `json:"columns"`
	Measures             []Measure    `json:"measures"`
	Partitions           []Partition  `json:"partitions"`
	Hierarchies          []Hierarchy  `json:"hierarchies"`
	Annotations          []Annotation `json:"annotations"`
}

// Column represents a table column.
type Column struct {
	// Name is the column name.
	Name string `json:"name"`
	// DataType is the engine type (e.g. "int64", "double", "dateTime", "string").
	DataType string `json:"dataType"`
	// SummarizeBy is the default aggregation (e.g. "sum", "none"); empty means default.
	SummarizeBy string `json:"summarizeBy"`
	// Type is the column kind: "data", "calculated", "rowNumber" or
	// "calculatedTableColumn". Empty means "data".
	Type string `json:"type"`
	// IsHidden hides the column from report view.
	IsHidden bool `json:"isHidden"`
	// Expression is the DAX expression of a calculated column.
	Expression Expression `json:"expression"`
}

// IsCalculated reports whether the column is computed by a DAX expression.
func (c Column) IsCalculated() bool {
	return c.Type == "calculated" || c.Type == "calculatedTableColumn"
}

// Measure represents a named DAX formula owned by a table.
type Measure struct {
	Name          string     `json:"name"`
	Expression    Expression `json:"expression"`
	FormatString  string     `json:"formatString"`
	DisplayFolder string     `json:"displayFolder"`
	IsHidden      bool       `json:"isHidden"`
}

// Partition represents a table partition and the query that loads it.
type Partition struct {
	Name   string          `json:"name"`
	Mode   string          `json:"mode"`
	Source PartitionSource `json:"source"`
}

// PartitionSource is the loading query of a partition.
type PartitionSource struct {
	// Type is "m" for Power Query sources, "calculated" for DAX tables.
	Type       string     `json:"type"`
	Expression Expression `json:"expression"`
}

// Hierarchy represents a drill-down path over columns of one table.
type Hierarchy struct {
	Name        string       `json:"name"`
	Levels      []Level      `json:"levels"`
	Annotations []Annotation `json:"annotations"`
}

// HasAnnotation reports whether the hierarchy carries an annotation with the given name.
func (h Hierarchy) HasAnnotation(name string) bool {
	for _, a := range h.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Level is one step of a hierarchy.
type Level struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Column  string `json:"column"`
}

// Relationship represents a link from one table column to another.
type Relationship struct {
	Name                   string `json:"name"`
	FromTable              string `json:"fromTable"`
	FromColumn             string `json:"fromColumn"`
	ToTable                string `json:"toTable"`
	ToColumn               string `json:"toColumn"`
	FromCardinality        string `json:"fromCardinality"`
	ToCardinality          string `json:"toCardinality"`
	CrossFilteringBehavior string `json:"crossFilteringBehavior"`
	// JoinOnDateBehavior is "datePartOnly" for date-only joins; empty otherwise.
	JoinOnDateBehavior string `json:"joinOnDateBehavior"`
	// IsActive is nil when the template omits it, which means active.
	IsActive *bool `json:"isActive"`
}

// Active reports whether the relationship is active.
func (r Relationship) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

// DataSource is a legacy provider data source.
type DataSource struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	ConnectionString string `json:"connectionString"`
}

// NamedExpression is a shared M query or parameter.
type NamedExpression struct {
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Expression Expression `json:"expression"`
}

// Annotation is a name/value pair attached by the authoring tool.
type Annotation struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Expression holds DAX or M source text. Templates store it either as a
// single string or as an array of lines; both forms decode into the same value.
type Expression []string

// UnmarshalJSON implements json.Unmarshaler for Expression.
func (e *Expression) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = Expression{single}
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		// Neither a string nor an array: treat as absent.
		*e = nil
		return nil
	}

	lines := make(Expression, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			lines = append(lines, s)
		}
	}
	*e = lines
	return nil
}

// String joins the non-blank lines of the expression with newlines and
// trims the result. Inner indentation is kept.
func (e Expression) String() string {
	lines := make([]string, 0, len(e))
	for _, line := range e {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Flat joins all lines with single spaces, for pattern scanning.
func (e Expression) Flat() string {
	return strings.Join(e, " ")
}
