package schema

import (
	"encoding/json"
	"testing"
)

func TestFilterTables(t *testing.T) {
	tables := []Table{
		{Name: "Sales"},
		{Name: "Calendar", IsHidden: true},
		{Name: "DateTableTemplate_1", IsHidden: true, IsPrivate: true},
		{Name: "Scratch", IsPrivate: true},
	}

	filtered := FilterTables(tables)

	if len(filtered) != 3 {
		t.Errorf("Expected 3 tables after filtering, got %d", len(filtered))
	}

	expectedTables := map[string]bool{"Sales": true, "Calendar": true, "Scratch": true}
	for _, table := range filtered {
		if !expectedTables[table.Name] {
			t.Errorf("Unexpected table in filtered result: %s", table.Name)
		}
	}
}

func TestFilterTablesEmpty(t *testing.T) {
	filtered := FilterTables(nil)

	if len(filtered) != 0 {
		t.Errorf("Expected no tables, got %d", len(filtered))
	}
}

func TestFilterTablesOriginalUnmodified(t *testing.T) {
	tables := []Table{
		{Name: "Sales"},
		{Name: "LocalDateTable_abc", IsHidden: true, IsPrivate: true},
	}

	FilterTables(tables)

	if len(tables) != 2 || tables[1].Name != "LocalDateTable_abc" {
		t.Errorf("Original tables were modified: %+v", tables)
	}
}

func TestIsLocalDateTable(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"LocalDateTable_0b7f3c2e-91d2-4c55-a3f1-2f1ad5a2c0de", true},
		{"DateTableTemplate_9a1c7e55-3b2f-4f0e-b5a2-6d1c4a7f8e90", true},
		{"Calendar", false},
		{"Sales", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsLocalDateTable(tt.name); got != tt.expected {
			t.Errorf("IsLocalDateTable(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestIsTemplateHierarchy(t *testing.T) {
	generated := Hierarchy{Name: "Date Hierarchy"}
	annotated := Hierarchy{Name: "Fiscal", Annotations: []Annotation{{Name: "TemplateId", Value: "DateHierarchy"}}}
	authored := Hierarchy{Name: "Geography"}

	if !IsTemplateHierarchy(generated) {
		t.Error("Expected default date hierarchy to be template-generated")
	}
	if !IsTemplateHierarchy(annotated) {
		t.Error("Expected TemplateId-annotated hierarchy to be template-generated")
	}
	if IsTemplateHierarchy(authored) {
		t.Error("Expected Geography hierarchy to be user-authored")
	}
}

func TestExpressionUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"string", `"  SUM(Sales[Amount])  "`, "SUM(Sales[Amount])"},
		{"lines", `["CALCULATE(", "", "  SUM(Sales[Amount])", ")"]`, "CALCULATE(\n  SUM(Sales[Amount])\n)"},
		{"padded lines", `["  x  ", ""]`, "x"},
		{"padded single line array", `["  x  "]`, "x"},
		{"indented body", `["  CALCULATE(", "    [Sales],", "  )  "]`, "CALCULATE(\n    [Sales],\n  )"},
		{"mixed array", `["let", 1, "in"]`, "let\nin"},
		{"null", `null`, ""},
		{"number", `42`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Expression
			if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if got := e.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRelationshipActive(t *testing.T) {
	inactive := false

	if !(Relationship{}).Active() {
		t.Error("Expected relationship without isActive to be active")
	}
	if (Relationship{IsActive: &inactive}).Active() {
		t.Error("Expected relationship with isActive=false to be inactive")
	}
}

func TestTableIndexFirstWins(t *testing.T) {
	m := &Model{Tables: []Table{{Name: "Sales"}, {Name: "Calendar"}, {Name: "Sales"}}}

	index := m.TableIndex()

	if index["Sales"] != 0 || index["Calendar"] != 1 {
		t.Errorf("Unexpected table index: %v", index)
	}
}
