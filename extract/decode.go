package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var quoteReplacer = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw schema bytes into normalized JSON text.
//
// UTF-16 (little-endian unless a BOM says otherwise) is tried first, since
// that is what the authoring tool writes. Unpaired surrogates decode to
// U+FFFD. When the bytes do not decode to something that looks like a JSON
// document the data is read as 8-bit text:
// UTF-8 if valid, Windows-1252 otherwise. Typographic quotes are then
// replaced with their ASCII equivalents.
func Decode(raw []byte) (string, error) {
	text, ok := decodeUTF16(raw)
	if !ok {
		var err error
		text, err = decode8Bit(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSchemaParse, err)
		}
	}

	return strings.TrimSpace(NormalizeQuotes(text)), nil
}

// NormalizeQuotes replaces left/right single and double quotation marks
// with ASCII quotes.
func NormalizeQuotes(text string) string {
	return quoteReplacer.Replace(text)
}

func decodeUTF16(raw []byte) (string, bool) {
	if len(raw) < 2 || len(raw)%2 != 0 {
		return "", false
	}

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	text := string(decoded)
	trimmed := strings.TrimLeft(text, "\ufeff \t\r\n")
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return "", false
	}

	return strings.TrimPrefix(text, "\ufeff"), true
}

func decode8Bit(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode schema as Windows-1252: %w", err)
	}
	return string(decoded), nil
}
