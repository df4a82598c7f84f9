package schema

// GradingInfo is the grading-oriented summary reduced from a Model.
// It is the interchange record handed to the report generator and to
// evaluators, and serializes to JSON with camelCase keys.
type GradingInfo struct {
	ModelName          string             `json:"modelName"`
	CompatibilityLevel int                `json:"compatibilityLevel,omitempty"`
	Tables             []TableInfo        `json:"tables"`
	Measures           []MeasureInfo      `json:"measures"`
	Relationships      []RelationshipInfo `json:"relationships"`
	Hierarchies        []HierarchyInfo    `json:"hierarchies"`
	DataSource         *DataSourceInfo    `json:"dataSource"`
	Summary            Summary            `json:"summary"`
	Warnings           []Warning          `json:"warnings,omitempty"`
}

// TableInfo lists the graded columns and measure names of one table.
type TableInfo struct {
	Name     string       `json:"name"`
	Columns  []ColumnInfo `json:"columns"`
	Measures []string     `json:"measures"`
}

// ColumnInfo describes one visible column.
type ColumnInfo struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType,omitempty"`
	SummarizeBy  string `json:"summarizeBy,omitempty"`
	IsCalculated bool   `json:"isCalculated"`
}

// MeasureInfo is a measure with its owning table and full expression.
type MeasureInfo struct {
	Name       string `json:"name"`
	Table      string `json:"table"`
	Expression string `json:"expression"`
}

// RelationshipInfo is a graded relationship between two table columns.
type RelationshipInfo struct {
	FromTable   string `json:"fromTable"`
	FromColumn  string `json:"fromColumn"`
	ToTable     string `json:"toTable"`
	ToColumn    string `json:"toColumn"`
	Kind        string `json:"kind"`
	Cardinality string `json:"cardinality"`
	Active      bool   `json:"active"`
}

// HierarchyInfo is a user-authored hierarchy.
type HierarchyInfo struct {
	Name   string   `json:"name"`
	Table  string   `json:"table"`
	Levels []string `json:"levels"`
}

// DataSourceInfo is the first external source found in the model's M code.
type DataSourceInfo struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Summary holds derived counts and heuristics.
// MainTable and HasTimeIntelligence are advisory.
type Summary struct {
	MainTable           string `json:"mainTable"`
	TotalColumns        int    `json:"totalColumns"`
	TotalMeasures       int    `json:"totalMeasures"`
	TotalRelationships  int    `json:"totalRelationships"`
	TotalHierarchies    int    `json:"totalHierarchies"`
	HasTimeIntelligence bool   `json:"hasTimeIntelligence"`
}

// WarningKind classifies a non-fatal model defect.
type WarningKind string

const (
	WarningMissingTable  WarningKind = "missing_table"
	WarningMissingColumn WarningKind = "missing_column"
)

// Warning records a relationship or hierarchy that referenced something
// the model does not define. The offending entry is dropped from the
// reduced output; extraction continues.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}
