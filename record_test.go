package lakehouse_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_UnmarshalKeepsOrder(t *testing.T) {
	input := `{"zeta":1,"alpha":"a","mid":{"x":true},"list":[1,2],"none":null}`

	var r lakehouse.Record
	require.NoError(t, json.Unmarshal([]byte(input), &r))

	assert.Equal(t, []string{"zeta", "alpha", "mid", "list", "none"}, r.Keys())
	assert.Equal(t, 5, r.Len())

	v, ok := r.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), v)

	v, ok = r.Get("none")
	assert.True(t, ok)
	assert.Nil(t, v)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":{"x":true},"list":[1,2],"none":null}`, string(out))
}

func TestRecord_UnmarshalList(t *testing.T) {
	var records []lakehouse.Record
	require.NoError(t, json.Unmarshal([]byte(`[{"b":1,"a":2},{"a":3}]`), &records))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"b", "a"}, records[0].Keys())
	assert.Equal(t, []string{"a"}, records[1].Keys())
}

func TestRecord_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "array", input: `[1,2]`},
		{name: "string", input: `"text"`},
		{name: "truncated", input: `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r lakehouse.Record
			assert.Error(t, json.Unmarshal([]byte(tt.input), &r))
		})
	}
}

func TestRecord_UnmarshalNull(t *testing.T) {
	r := lakehouse.NewRecord("a", 1)
	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.Equal(t, 1, r.Len())
}

func TestRecord_SetKeepsPosition(t *testing.T) {
	r := lakehouse.NewRecord("id", 1, "name", "x", "size", 10)
	r.Set("name", "y")
	r.Set("extra", true)

	assert.Equal(t, []string{"id", "name", "size", "extra"}, r.Keys())
	assert.Equal(t, "y", r.String("name"))
}

func TestRecord_Delete(t *testing.T) {
	r := lakehouse.NewRecord("id", 1, "name", "x")
	r.Delete("id")
	r.Delete("missing")

	assert.Equal(t, []string{"name"}, r.Keys())
	_, ok := r.Get("id")
	assert.False(t, ok)
}

func TestRecord_Clone(t *testing.T) {
	r := lakehouse.NewRecord("id", 1)
	c := r.Clone()
	c.Set("id", 2)
	c.Set("new", "v")

	assert.Equal(t, "1", r.String("id"))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "2", c.String("id"))
}

func TestRecord_String(t *testing.T) {
	r := lakehouse.NewRecord("s", "text", "n", json.Number("12"), "b", false, "nil", nil)

	assert.Equal(t, "text", r.String("s"))
	assert.Equal(t, "12", r.String("n"))
	assert.Equal(t, "false", r.String("b"))
	assert.Equal(t, "", r.String("nil"))
	assert.Equal(t, "", r.String("absent"))
}

func TestRecord_MarshalNoHTMLEscape(t *testing.T) {
	r := lakehouse.NewRecord("q", "a<b&c>d")

	out, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"q":"a<b&c>d"}`, string(out))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode([]lakehouse.Record{r}))
	assert.Equal(t, `[{"q":"a<b&c>d"}]`+"\n", buf.String())
}

func TestRecord_NestedObjectsKeepOrder(t *testing.T) {
	var r lakehouse.Record
	require.NoError(t, json.Unmarshal([]byte(`{"meta":{"z":1,"a":{"y":true,"b":null}},"list":[{"k2":"x","k1":"y"}]}`), &r))

	v, ok := r.Get("meta")
	require.True(t, ok)
	meta, ok := v.(lakehouse.Record)
	require.True(t, ok, "nested object decodes as a Record, got %T", v)
	assert.Equal(t, []string{"z", "a"}, meta.Keys())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{"z":1,"a":{"y":true,"b":null}},"list":[{"k2":"x","k1":"y"}]}`, string(out))
}

func TestRecord_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "array", in: `[1,2]`},
		{name: "scalar", in: `"text"`},
		{name: "truncated nested", in: `{"a":{"b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r lakehouse.Record
			assert.Error(t, json.Unmarshal([]byte(tt.in), &r))
		})
	}
}

func TestRecord_ZeroValue(t *testing.T) {
	var r lakehouse.Record
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	r.Set("a", 1)
	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestNewRecord_Panics(t *testing.T) {
	assert.Panics(t, func() { lakehouse.NewRecord("a") })
	assert.Panics(t, func() { lakehouse.NewRecord(1, "a") })
}
