package extract

import "go.uber.org/zap"

// Option configures extraction and reduction behavior.
type Option func(*options)

type options struct {
	schemaEntries []string
	sourceMatcher SourceMatcher
	logger        *zap.Logger
}

func defaultOptions() *options {
	return &options{
		schemaEntries: []string{"DataModelSchema", "DataModelSchema.txt"},
		sourceMatcher: NewSourceMatcher(nil),
		logger:        zap.NewNop(),
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSchemaEntries sets the archive entry names searched for the schema
// document, in order of preference. Matching is case-insensitive.
// If not specified, defaults to ["DataModelSchema", "DataModelSchema.txt"].
func WithSchemaEntries(names ...string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.schemaEntries = names
		}
	}
}

// WithSourceMatcher sets a custom matcher for locating data sources in M code.
// If not specified, uses DefaultSourcePatterns.
func WithSourceMatcher(matcher SourceMatcher) Option {
	return func(o *options) {
		if matcher != nil {
			o.sourceMatcher = matcher
		}
	}
}

// WithSourcePatterns adds source patterns as a simple map.
// This is a convenience alternative to WithSourceMatcher for simple use cases.
// Keys are data source type names, values are regular expressions whose
// capture groups form the source path. Custom patterns are tried before
// the defaults. Patterns that fail to compile are ignored.
func WithSourcePatterns(patterns map[string]string) Option {
	return func(o *options) {
		o.sourceMatcher = NewSourceMatcher(patterns)
	}
}

// WithLogger sets the logger used for diagnostics and model warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
