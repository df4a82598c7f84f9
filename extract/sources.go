package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lucasefe/pbimentor/schema"
)

// SourceMatcher finds the external data location referenced by a piece of
// M code. Implement this interface to recognize additional connectors.
type SourceMatcher interface {
	// MatchSource returns the earliest source reference in mcode, or nil.
	MatchSource(mcode string) *schema.DataSourceInfo
}

// SourcePattern maps a connector call to a data source type.
// The capture groups of Pattern, joined with "/", form the source path.
type SourcePattern struct {
	Type    string
	Pattern *regexp.Regexp
}

// DefaultSourcePatterns contains the connector calls recognized out of the box.
// This can be used as a reference when creating custom matchers.
var DefaultSourcePatterns = []SourcePattern{
	{Type: "File", Pattern: regexp.MustCompile(`File\.Contents\("([^"]+)"\)`)},
	{Type: "Folder", Pattern: regexp.MustCompile(`Folder\.Files\("([^"]+)"\)`)},
	{Type: "SharePoint", Pattern: regexp.MustCompile(`SharePoint\.(?:Files|Contents)\("([^"]+)"`)},
	{Type: "Web", Pattern: regexp.MustCompile(`Web\.Contents\("([^"]+)"`)},
	{Type: "SQL Server", Pattern: regexp.MustCompile(`Sql\.Databases?\("([^"]+)"(?:\s*,\s*"([^"]+)")?`)},
}

// PatternSourceMatcher matches M code against an ordered list of patterns.
// It supports custom patterns via the CustomPatterns field.
type PatternSourceMatcher struct {
	// CustomPatterns are tried before DefaultSourcePatterns.
	CustomPatterns []SourcePattern
}

// NewSourceMatcher creates a SourceMatcher with optional custom patterns.
// Keys are data source type names, values are regular expressions.
// If custom is nil, only default patterns are used.
//
// Example:
//
//	matcher := extract.NewSourceMatcher(map[string]string{
//	    "Snowflake": `Snowflake\.Databases\("([^"]+)"`,
//	})
func NewSourceMatcher(custom map[string]string) *PatternSourceMatcher {
	types := make([]string, 0, len(custom))
	for sourceType := range custom {
		types = append(types, sourceType)
	}
	sort.Strings(types)

	m := &PatternSourceMatcher{}
	for _, sourceType := range types {
		re, err := regexp.Compile(custom[sourceType])
		if err != nil {
			continue
		}
		m.CustomPatterns = append(m.CustomPatterns, SourcePattern{Type: sourceType, Pattern: re})
	}
	return m
}

// MatchSource implements SourceMatcher.
// When several patterns match, the one starting earliest in mcode wins;
// custom patterns win ties over defaults.
func (m *PatternSourceMatcher) MatchSource(mcode string) *schema.DataSourceInfo {
	var best *schema.DataSourceInfo
	bestPos := -1

	patterns := make([]SourcePattern, 0, len(m.CustomPatterns)+len(DefaultSourcePatterns))
	patterns = append(patterns, m.CustomPatterns...)
	patterns = append(patterns, DefaultSourcePatterns...)

	for _, p := range patterns {
		loc := p.Pattern.FindStringSubmatchIndex(mcode)
		if loc == nil {
			continue
		}
		if bestPos >= 0 && loc[0] >= bestPos {
			continue
		}

		var parts []string
		for g := 1; g*2+1 < len(loc); g++ {
			if loc[g*2] >= 0 {
				parts = append(parts, mcode[loc[g*2]:loc[g*2+1]])
			}
		}
		best = &schema.DataSourceInfo{Type: p.Type, Path: strings.Join(parts, "/")}
		bestPos = loc[0]
	}

	return best
}
