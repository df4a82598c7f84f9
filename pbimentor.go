package pbimentor

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor/extract"
	"github.com/lucasefe/pbimentor/report"
	"github.com/lucasefe/pbimentor/schema"
)

// Model is the parsed data model of a template.
type Model = schema.Model

// GradingInfo is the reduced, grading-oriented view of a Model.
type GradingInfo = schema.GradingInfo

// Config controls how templates are read and reduced.
type Config struct {
	// SchemaEntries overrides the archive entry names searched for the schema.
	SchemaEntries []string
	// SourcePatterns adds data source patterns (type name to regular expression).
	SourcePatterns map[string]string
	// SourceMatcher replaces the data source matcher entirely.
	// Takes precedence over SourcePatterns if both are set.
	SourceMatcher extract.SourceMatcher
	// Logger receives diagnostics and model warnings. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *Config) options() []extract.Option {
	if c == nil {
		return nil
	}

	var opts []extract.Option
	if len(c.SchemaEntries) > 0 {
		opts = append(opts, extract.WithSchemaEntries(c.SchemaEntries...))
	}
	if c.SourceMatcher != nil {
		opts = append(opts, extract.WithSourceMatcher(c.SourceMatcher))
	} else if len(c.SourcePatterns) > 0 {
		opts = append(opts, extract.WithSourcePatterns(c.SourcePatterns))
	}
	if c.Logger != nil {
		opts = append(opts, extract.WithLogger(c.Logger))
	}
	return opts
}

// LoadModel reads the data model out of the template at path.
func LoadModel(path string, config *Config) (*Model, error) {
	model, err := extract.Schema(path, config.options()...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}
	return model, nil
}

// GradingInfoFromFile extracts and reduces the template at path.
func GradingInfoFromFile(path string, config *Config) (*GradingInfo, error) {
	model, err := LoadModel(path, config)
	if err != nil {
		return nil, err
	}
	return extract.Reduce(model, config.options()...), nil
}

// Analyze renders the report for already reduced grading information.
func Analyze(info *GradingInfo) string {
	// The renderer never fails.
	text, _ := report.GenerateString(info)
	return text
}

// AnalyzeFile extracts, reduces and renders the template at path.
func AnalyzeFile(path string, config *Config) (string, error) {
	info, err := GradingInfoFromFile(path, config)
	if err != nil {
		return "", err
	}
	return Analyze(info), nil
}

// AnalyzeFileBytes is like AnalyzeFile but returns the report as bytes.
func AnalyzeFileBytes(path string, config *Config) ([]byte, error) {
	info, err := GradingInfoFromFile(path, config)
	if err != nil {
		return nil, err
	}
	return report.Generate(info)
}

// WriteToFile analyzes the template at path and writes the report to filename.
func WriteToFile(path, filename string, config *Config) error {
	content, err := AnalyzeFileBytes(path, config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
