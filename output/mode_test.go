package output_test

import (
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want output.Mode
	}{
		{in: "raw", want: output.ModeRaw},
		{in: "dict", want: output.ModeRaw},
		{in: "table-structure", want: output.ModeTable},
		{in: "df", want: output.ModeTable},
		{in: "json-text", want: output.ModeJSON},
		{in: "json", want: output.ModeJSON},
		{in: "table-text", want: output.ModeText},
		{in: "table", want: output.ModeText},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMode_Unsupported(t *testing.T) {
	for _, in := range []string{"", "xml", "JSON", "csv"} {
		t.Run(in, func(t *testing.T) {
			_, err := output.ParseMode(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, lakehouse.ErrUnsupportedOutputFormat)
		})
	}
}

func TestMode_StringRoundTrip(t *testing.T) {
	for _, m := range output.Modes() {
		assert.True(t, m.IsValid())
		parsed, err := output.ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestMode_Text(t *testing.T) {
	var m output.Mode
	require.NoError(t, m.UnmarshalText([]byte("json")))
	assert.Equal(t, output.ModeJSON, m)

	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "json-text", string(b))

	_, err = output.Mode(42).MarshalText()
	assert.ErrorIs(t, err, lakehouse.ErrUnsupportedOutputFormat)
}
