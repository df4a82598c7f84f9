package schema

import "strings"

// Name prefixes the authoring tool uses for tables it generates for
// auto date/time. Neither kind is authored by the user.
const (
	LocalDateTablePrefix    = "LocalDateTable_"
	DateTableTemplatePrefix = "DateTableTemplate_"
)

// TemplateHierarchyAnnotation marks hierarchies created from a date table template.
const TemplateHierarchyAnnotation = "TemplateId"

// DefaultDateHierarchyName is the name the authoring tool gives generated date hierarchies.
const DefaultDateHierarchyName = "Date Hierarchy"

// IsExcluded reports whether a table is left out of grading.
// Only tables that are both hidden and private are excluded; a table hidden
// from report view but authored by the user is still graded.
func IsExcluded(t Table) bool {
	return t.IsHidden && t.IsPrivate
}

// IsLocalDateTable reports whether a table name follows the generated
// date table naming convention.
func IsLocalDateTable(name string) bool {
	return strings.Contains(name, strings.TrimSuffix(LocalDateTablePrefix, "_")) ||
		strings.Contains(name, strings.TrimSuffix(DateTableTemplatePrefix, "_"))
}

// IsTemplateHierarchy reports whether a hierarchy was generated by the
// authoring tool rather than written by the user.
func IsTemplateHierarchy(h Hierarchy) bool {
	return h.HasAnnotation(TemplateHierarchyAnnotation) || h.Name == DefaultDateHierarchyName
}

// FilterTables removes the tables excluded from grading.
// It returns a new slice; the input is not modified.
func FilterTables(tables []Table) []Table {
	filtered := make([]Table, 0, len(tables))
	for _, table := range tables {
		if !IsExcluded(table) {
			filtered = append(filtered, table)
		}
	}
	return filtered
}

// TableIndex maps table names to their position in the model.
// The first table wins when names repeat.
func (m *Model) TableIndex() map[string]int {
	index := make(map[string]int, len(m.Tables))
	for i, table := range m.Tables {
		if _, exists := index[table.Name]; !exists {
			index[table.Name] = i
		}
	}
	return index
}

// HasColumn reports whether the table defines a column with the given name.
func (t Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}
