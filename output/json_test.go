package output_test

import (
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONText_EscapesNonASCII(t *testing.T) {
	records := []lakehouse.Record{lakehouse.NewRecord("name", "café \U0001F600", "q", "<a&b>")}

	got, err := output.JSONText(records, true)
	require.NoError(t, err)

	want := `[
  {
    "name": "caf\u00e9 \ud83d\ude00",
    "q": "<a&b>"
  }
]`
	assert.Equal(t, want, got)
	for _, r := range got {
		assert.Less(t, r, rune(128))
	}
}

func TestJSONText_Compact(t *testing.T) {
	got, err := output.JSONText([]lakehouse.Record{lakehouse.NewRecord("a", 1, "b", "ü")}, false)
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1,"b":"\u00fc"}]`, got)
}

func TestJSONText_Empty(t *testing.T) {
	var records []lakehouse.Record

	got, err := output.JSONText(records, true)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	got, err = output.JSONText([]lakehouse.Record{}, true)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}
