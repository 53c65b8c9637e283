package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lakehouselib/lakehouse"
)

// MatchAll reports whether doc satisfies every filter. An empty filter list
// matches everything.
func MatchAll(doc lakehouse.Record, filters []lakehouse.Filter) bool {
	for _, f := range filters {
		if !Match(doc, f) {
			return false
		}
	}
	return true
}

// Match evaluates one filter against doc. A missing property never matches.
// Numbers compare numerically and booleans by value when the filter value
// converts; everything else compares as text. The "*" operator is a
// case-insensitive substring test.
func Match(doc lakehouse.Record, f lakehouse.Filter) bool {
	left, ok := doc.Get(f.PropertyName)
	if !ok {
		return false
	}

	if f.Operator == lakehouse.OpContains {
		return strings.Contains(strings.ToLower(text(left)), strings.ToLower(text(f.PropertyValue)))
	}

	if left == nil {
		switch f.Operator {
		case lakehouse.OpEqual:
			return text(f.PropertyValue) == "null"
		case lakehouse.OpNotEqual:
			return text(f.PropertyValue) != "null"
		default:
			return false
		}
	}

	if l, ok := lakehouse.ToFloat(left); ok {
		if r, ok := toNumber(f.PropertyValue); ok {
			return compareOrdered(l, f.Operator, r)
		}
	}

	if l, ok := left.(bool); ok {
		if r, err := strconv.ParseBool(text(f.PropertyValue)); err == nil {
			switch f.Operator {
			case lakehouse.OpEqual:
				return l == r
			case lakehouse.OpNotEqual:
				return l != r
			default:
				return false
			}
		}
	}

	return compareOrdered(text(left), f.Operator, text(f.PropertyValue))
}

func compareOrdered[T float64 | string](left T, op lakehouse.Operator, right T) bool {
	switch op {
	case lakehouse.OpEqual:
		return left == right
	case lakehouse.OpNotEqual:
		return left != right
	case lakehouse.OpGreater:
		return left > right
	case lakehouse.OpLess:
		return left < right
	case lakehouse.OpGreaterEqual:
		return left >= right
	case lakehouse.OpLessEqual:
		return left <= right
	default:
		return false
	}
}

func toNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return lakehouse.ToFloat(v)
}

func text(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}
