package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func utf16LE(t *testing.T, text string) []byte {
	t.Helper()
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)
	return encoded
}

func buildArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeTemplate(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pbit")
	require.NoError(t, os.WriteFile(path, buildArchive(t, entries), 0644))
	return path
}

func salesModelJSON(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "sales_model.json"))
	require.NoError(t, err)
	return string(data)
}

func TestSchema(t *testing.T) {
	path := writeTemplate(t, map[string][]byte{
		"Version":         utf16LE(t, "1.28"),
		"DataModelSchema": utf16LE(t, salesModelJSON(t)),
		"Report/Layout":   utf16LE(t, "{}"),
	})

	model, err := Schema(path)
	require.NoError(t, err)

	assert.Equal(t, "SalesModel", model.Name)
	assert.Equal(t, 1550, model.CompatibilityLevel)
	require.Len(t, model.Tables, 2)
	assert.Equal(t, "Sales", model.Tables[0].Name)
	assert.Len(t, model.Tables[0].Columns, 2)
	require.Len(t, model.Relationships, 1)
	assert.Equal(t, "Calendar", model.Relationships[0].ToTable)
}

func TestSchemaEntryCaseInsensitiveAndTxtVariant(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"lowercase", "datamodelschema"},
		{"txt suffix", "DataModelSchema.txt"},
		{"upper txt suffix", "DATAMODELSCHEMA.TXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemplate(t, map[string][]byte{tt.entry: utf16LE(t, salesModelJSON(t))})

			model, err := Schema(path)
			require.NoError(t, err)
			assert.Len(t, model.Tables, 2)
		})
	}
}

func TestSchemaMissingEntry(t *testing.T) {
	path := writeTemplate(t, map[string][]byte{
		"Version":       utf16LE(t, "1.28"),
		"Report/Layout": []byte("not json at all"),
	})

	_, err := Schema(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaNotFound)
	assert.NotErrorIs(t, err, ErrSchemaParse)
}

func TestSchemaNotFound(t *testing.T) {
	_, err := Schema(filepath.Join(t.TempDir(), "missing.pbit"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Schema(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSchemaNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pbit")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a zip"), 0644))

	_, err := Schema(path)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSchemaParseError(t *testing.T) {
	path := writeTemplate(t, map[string][]byte{
		"DataModelSchema": utf16LE(t, `{"name": "broken", "model": {"tables": [}`),
	})

	_, err := Schema(path)
	assert.ErrorIs(t, err, ErrSchemaParse)
}

func TestSchemaWithCustomEntries(t *testing.T) {
	path := writeTemplate(t, map[string][]byte{"Model.json": []byte(salesModelJSON(t))})

	_, err := Schema(path)
	require.ErrorIs(t, err, ErrSchemaNotFound)

	model, err := Schema(path, WithSchemaEntries("model.json"))
	require.NoError(t, err)
	assert.Len(t, model.Tables, 2)
}

func TestFromArchive(t *testing.T) {
	data := buildArchive(t, map[string][]byte{"DataModelSchema": utf16LE(t, salesModelJSON(t))})

	model, err := FromArchive(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "SalesModel", model.Name)
}

func TestParseFlattenedDocument(t *testing.T) {
	model, err := Parse(`{"name": "Flat", "compatibilityLevel": 1400, "tables": [{"name": "Sheet1"}]}`)
	require.NoError(t, err)

	assert.Equal(t, "Flat", model.Name)
	assert.Equal(t, 1400, model.CompatibilityLevel)
	require.Len(t, model.Tables, 1)
	assert.Equal(t, "Sheet1", model.Tables[0].Name)
}

func TestParseRootNameWins(t *testing.T) {
	model, err := Parse(`{"name": "root", "model": {"name": "nested", "compatibilityLevel": 1200}}`)
	require.NoError(t, err)

	assert.Equal(t, "root", model.Name)
	assert.Equal(t, 1200, model.CompatibilityLevel)
}

func TestParseRejectsNonObject(t *testing.T) {
	_, err := Parse(`[1, 2, 3]`)
	assert.ErrorIs(t, err, ErrSchemaParse)
}
