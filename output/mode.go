package output

import (
	"fmt"

	"github.com/lakehouselib/lakehouse"
)

// Mode selects how records are presented.
type Mode int

const (
	// ModeTable returns a table structure with the id column first.
	ModeTable Mode = iota
	// ModeRaw returns the records unchanged.
	ModeRaw
	// ModeJSON returns 2-space indented, ASCII-only JSON text.
	ModeJSON
	// ModeText returns a fixed-width text table.
	ModeText
)

// Modes returns every mode.
func Modes() []Mode {
	return []Mode{ModeTable, ModeRaw, ModeJSON, ModeText}
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeTable:
		return "table-structure"
	case ModeRaw:
		return "raw"
	case ModeJSON:
		return "json-text"
	case ModeText:
		return "table-text"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) IsValid() bool {
	return m >= ModeTable && m <= ModeText
}

// ParseMode accepts the canonical mode names and their short aliases:
// "raw"/"dict", "table-structure"/"df", "json-text"/"json" and
// "table-text"/"table".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "table-structure", "df":
		return ModeTable, nil
	case "raw", "dict":
		return ModeRaw, nil
	case "json-text", "json":
		return ModeJSON, nil
	case "table-text", "table":
		return ModeText, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid formats: df, dict, json, table)", lakehouse.ErrUnsupportedOutputFormat, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s", lakehouse.ErrUnsupportedOutputFormat, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
