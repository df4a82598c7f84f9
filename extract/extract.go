// Package extract reads the data model out of Power BI template (.pbit)
// files and reduces it into grading information.
//
// Basic usage:
//
//	model, err := extract.Schema("report.pbit")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	info := extract.Reduce(model)
//
// With custom source patterns and a logger:
//
//	model, err := extract.Schema("report.pbit",
//	    extract.WithLogger(logger),
//	    extract.WithSourcePatterns(map[string]string{
//	        "Snowflake": `Snowflake\.Databases\("([^"]+)"`,
//	    }),
//	)
package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor/schema"
)

// Schema opens a template archive, locates its DataModelSchema entry and
// parses it into a Model.
//
// It returns an error wrapping ErrNotFound when the path is missing or not an
// archive, ErrSchemaNotFound when no schema entry exists, and ErrSchemaParse
// when the entry cannot be decoded or parsed.
func Schema(path string, opts ...Option) (*schema.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	defer f.Close()

	o := newOptions(opts)
	o.logger.Debug("Opening template", zap.String("path", path), zap.Int64("size", info.Size()))

	return fromArchive(f, info.Size(), o)
}

// FromArchive is like Schema but reads the template from an in-memory or
// uploaded archive.
func FromArchive(r io.ReaderAt, size int64, opts ...Option) (*schema.Model, error) {
	return fromArchive(r, size, newOptions(opts))
}

func fromArchive(r io.ReaderAt, size int64, o *options) (*schema.Model, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable archive: %w", ErrNotFound, err)
	}

	entry := findEntry(archive.File, o.schemaEntries)
	if entry == nil {
		return nil, fmt.Errorf("%w (looked for %s)", ErrSchemaNotFound, strings.Join(o.schemaEntries, ", "))
	}

	raw, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrSchemaParse, entry.Name, err)
	}

	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	model, err := Parse(text)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("Parsed template schema",
		zap.String("entry", entry.Name),
		zap.Int("tables", len(model.Tables)),
		zap.Int("relationships", len(model.Relationships)))

	return model, nil
}

// Parse decodes normalized schema text into a Model.
// Documents that nest the tabular model under "model" and documents that
// flatten it into the root are both accepted. Root-level name and
// compatibility level take precedence over the nested ones.
func Parse(text string) (*schema.Model, error) {
	var doc schema.Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaParse, err)
	}

	model := doc.Model
	if model == nil {
		model = &schema.Model{}
		if err := json.Unmarshal([]byte(text), model); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSchemaParse, err)
		}
	}

	if doc.Name != "" {
		model.Name = doc.Name
	}
	if doc.CompatibilityLevel != 0 {
		model.CompatibilityLevel = doc.CompatibilityLevel
	}

	return model, nil
}

func findEntry(files []*zip.File, names []string) *zip.File {
	for _, name := range names {
		for _, f := range files {
			if strings.EqualFold(f.Name, name) {
				return f
			}
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
