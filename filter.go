package lakehouse

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Filter is a single property filter of a catalog search.
type Filter struct {
	PropertyName  string   `json:"property_name" validate:"identifier"`
	Operator      Operator `json:"operator" validate:"filterop"`
	PropertyValue any      `json:"property_value"`
}

// FilterPayload is the request body of a catalog search. The backend ANDs
// the filters; order is kept for deterministic requests.
type FilterPayload struct {
	Filters []Filter `json:"filters" validate:"dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return IsValidPropertyName(fl.Field().String())
	})
	_ = v.RegisterValidation("filterop", func(fl validator.FieldLevel) bool {
		return Operator(fl.Field().String()).IsValid()
	})
	return v
}

// FiltersFromConditions converts parsed query conditions into filters.
// Values stay strings; the backend coerces them.
func FiltersFromConditions(conds []Condition) []Filter {
	filters := make([]Filter, len(conds))
	for i, c := range conds {
		filters[i] = Filter{PropertyName: c.Key, Operator: c.Operator, PropertyValue: c.Value}
	}
	return filters
}

// KeywordFilter returns the substring filter used by keyword searches.
func KeywordFilter(property, keyword string) Filter {
	return Filter{PropertyName: property, Operator: OpContains, PropertyValue: keyword}
}

// NewFilterPayload validates filters and wraps them in a payload.
// An empty filter list is valid.
func NewFilterPayload(filters ...Filter) (FilterPayload, error) {
	payload := FilterPayload{Filters: filters}
	if payload.Filters == nil {
		payload.Filters = []Filter{}
	}

	if err := validate.Struct(&payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return FilterPayload{}, fmt.Errorf("%w: %s failed %q check", ErrInvalidFilterFormat, verrs[0].Namespace(), verrs[0].Tag())
		}
		return FilterPayload{}, fmt.Errorf("%w: %w", ErrInvalidFilterFormat, err)
	}

	for i, f := range payload.Filters {
		if !isFilterValue(f.PropertyValue) {
			return FilterPayload{}, fmt.Errorf("%w: filters[%d].property_value must be a string or number, got %T",
				ErrInvalidFilterFormat, i, f.PropertyValue)
		}
	}

	return payload, nil
}

// Map returns the payload as plain nested maps and slices.
func (p FilterPayload) Map() map[string]any {
	filters := make([]any, len(p.Filters))
	for i, f := range p.Filters {
		filters[i] = map[string]any{
			"property_name":  f.PropertyName,
			"operator":       string(f.Operator),
			"property_value": f.PropertyValue,
		}
	}
	return map[string]any{"filters": filters}
}

func isFilterValue(v any) bool {
	switch v.(type) {
	case string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
