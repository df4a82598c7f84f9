package extract

import (
	"encoding/binary"
	"encoding/json"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestDecodeUTF16WithSmartQuotes(t *testing.T) {
	// Invalid JSON as written; valid once the typographic quotes are replaced.
	source := "{“name”: “Quoted”, “model”: {“tables”: [{“name”: “Sales”, “description”: “it’s ‘ours’”}]}}"

	var probe map[string]any
	require.Error(t, json.Unmarshal([]byte(source), &probe))

	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(source))
	require.NoError(t, err)

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Quoted", "model": {"tables": [{"name": "Sales", "description": "it's 'ours'"}]}}`, text)

	model, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "Quoted", model.Name)
	require.Len(t, model.Tables, 1)
	assert.Equal(t, "Sales", model.Tables[0].Name)
}

func TestDecodeUTF16BigEndianBOM(t *testing.T) {
	raw, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(`{"name": "BE"}`))
	require.NoError(t, err)

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "BE"}`, text)
}

func TestDecodeUTF16KeepsReplacementCharacter(t *testing.T) {
	source := "{\"name\": \"Imported\", \"model\": {\"tables\": [{\"name\": \"Caf\ufffd Sales\"}]}}"
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewEncoder().Bytes([]byte(source))
	require.NoError(t, err)

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, source, text)

	model, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, model.Tables, 1)
	assert.Equal(t, "Caf\ufffd Sales", model.Tables[0].Name)
}

func TestDecodeUTF16LoneSurrogate(t *testing.T) {
	units := utf16.Encode([]rune(`{"name": "A`))
	units = append(units, 0xD800)
	units = append(units, utf16.Encode([]rune(`B", "model": {"tables": [{"name": "Sales"}]}}`))...)

	raw := make([]byte, 0, 2*len(units))
	for _, u := range units {
		raw = binary.LittleEndian.AppendUint16(raw, u)
	}

	text, err := Decode(raw)
	require.NoError(t, err)

	model, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "A\ufffdB", model.Name)
	require.Len(t, model.Tables, 1)
	assert.Equal(t, "Sales", model.Tables[0].Name)
}

func TestDecodeFallsBackToUTF8(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("  {\"name\": \"utf8\"}\n")...)

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "utf8"}`, text)
}

func TestDecodeFallsBackToWindows1252(t *testing.T) {
	// 0x93 and 0x94 are curly double quotes in Windows-1252.
	raw := []byte{'{', 0x93, 'n', 0x94, ':', ' ', 0x93, 'c', 'a', 'f', 0xE9, 0x94, '}'}

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"n": "café"}`, text)
}

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"“quoted”", `"quoted"`},
		{"it’s", "it's"},
		{"‘single’", "'single'"},
		{"plain \"ascii\"", "plain \"ascii\""},
	}

	for _, tt := range tests {
		if got := NormalizeQuotes(tt.input); got != tt.expected {
			t.Errorf("NormalizeQuotes(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
