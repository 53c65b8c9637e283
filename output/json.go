package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// JSONText encodes v as ASCII-only JSON. Non-ASCII characters are written as
// \uXXXX escapes (surrogate pairs outside the BMP). With indent the layout
// uses two spaces per level; without it the output is compact. A nil slice is
// written as [] rather than null.
func JSONText(v any, indent bool) (string, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
		v = []any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode json text: %w", err)
	}

	return escapeNonASCII(strings.TrimSuffix(buf.String(), "\n")), nil
}

// escapeNonASCII rewrites every non-ASCII rune as a JSON escape. Encoded JSON
// only carries such runes inside string literals, so a plain scan is enough.
func escapeNonASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			sb.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&sb, `\u%04x`, r)
	}
	return sb.String()
}
