package lakehouse_test

import (
	"encoding/json"
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersFromConditions(t *testing.T) {
	conds, err := lakehouse.ParseQueries("inserted_at>1747934722", "collection_name*lake")
	require.NoError(t, err)

	filters := lakehouse.FiltersFromConditions(conds)
	require.Len(t, filters, len(conds))

	for i, c := range conds {
		assert.Equal(t, c.Key, filters[i].PropertyName)
		assert.Equal(t, c.Operator, filters[i].Operator)
		assert.Equal(t, c.Value, filters[i].PropertyValue)
	}
}

func TestNewFilterPayload_JSONShape(t *testing.T) {
	conds, err := lakehouse.ParseQueries("inserted_by=user1@gmail.com", "file_size>=1024")
	require.NoError(t, err)

	payload, err := lakehouse.NewFilterPayload(lakehouse.FiltersFromConditions(conds)...)
	require.NoError(t, err)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"filters":[
		{"property_name":"inserted_by","operator":"=","property_value":"user1@gmail.com"},
		{"property_name":"file_size","operator":">=","property_value":"1024"}
	]}`, string(out))
}

func TestNewFilterPayload_Empty(t *testing.T) {
	payload, err := lakehouse.NewFilterPayload()
	require.NoError(t, err)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Equal(t, `{"filters":[]}`, string(out))
}

func TestNewFilterPayload_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		filter lakehouse.Filter
	}{
		{
			name:   "bad property name",
			filter: lakehouse.Filter{PropertyName: "bad-name", Operator: lakehouse.OpEqual, PropertyValue: "x"},
		},
		{
			name:   "empty property name",
			filter: lakehouse.Filter{PropertyName: "", Operator: lakehouse.OpEqual, PropertyValue: "x"},
		},
		{
			name:   "unknown operator",
			filter: lakehouse.Filter{PropertyName: "file_size", Operator: "~", PropertyValue: "x"},
		},
		{
			name:   "bool value",
			filter: lakehouse.Filter{PropertyName: "public", Operator: lakehouse.OpEqual, PropertyValue: true},
		},
		{
			name:   "nil value",
			filter: lakehouse.Filter{PropertyName: "public", Operator: lakehouse.OpEqual, PropertyValue: nil},
		},
		{
			name:   "list value",
			filter: lakehouse.Filter{PropertyName: "tags", Operator: lakehouse.OpEqual, PropertyValue: []string{"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lakehouse.NewFilterPayload(tt.filter)
			require.Error(t, err)
			assert.ErrorIs(t, err, lakehouse.ErrInvalidFilterFormat)
		})
	}
}

func TestNewFilterPayload_NumericValues(t *testing.T) {
	payload, err := lakehouse.NewFilterPayload(
		lakehouse.Filter{PropertyName: "file_size", Operator: lakehouse.OpGreater, PropertyValue: 10},
		lakehouse.Filter{PropertyName: "score", Operator: lakehouse.OpLess, PropertyValue: 0.5},
		lakehouse.Filter{PropertyName: "inserted_at", Operator: lakehouse.OpLessEqual, PropertyValue: json.Number("1700000000")},
	)
	require.NoError(t, err)
	assert.Len(t, payload.Filters, 3)
}

func TestKeywordFilter(t *testing.T) {
	f := lakehouse.KeywordFilter("file_name", "sample")
	assert.Equal(t, lakehouse.Filter{PropertyName: "file_name", Operator: lakehouse.OpContains, PropertyValue: "sample"}, f)
}

func TestFilterPayload_Map(t *testing.T) {
	payload, err := lakehouse.NewFilterPayload(lakehouse.KeywordFilter("collection_name", "lake"))
	require.NoError(t, err)

	m := payload.Map()
	filters, ok := m["filters"].([]any)
	require.True(t, ok)
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]any{
		"property_name":  "collection_name",
		"operator":       "*",
		"property_value": "lake",
	}, filters[0])
}
