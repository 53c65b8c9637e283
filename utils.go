package lakehouse

import (
	"cmp"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

var propertyNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]+$`)

// IsValidPropertyName reports whether name is an identifier of at least two
// characters: letters, digits and underscores, not starting with a digit.
func IsValidPropertyName(name string) bool {
	return propertyNameRegex.MatchString(name)
}

// SortRecords returns the records stably sorted by the given field.
// Every record must carry the field, otherwise ErrInvalidSortKey is returned.
// An empty key returns the records unchanged.
func SortRecords(records []Record, key string, desc bool) ([]Record, error) {
	if key == "" {
		return records, nil
	}
	for i := range records {
		if _, ok := records[i].Get(key); !ok {
			return nil, fmt.Errorf("%w: %q missing from record %d", ErrInvalidSortKey, key, i)
		}
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		av, _ := a.Get(key)
		bv, _ := b.Get(key)
		if desc {
			return CompareValues(bv, av)
		}
		return CompareValues(av, bv)
	})
	return sorted, nil
}

// FilterByLevel keeps the records whose processing_level is one of levels.
// With no levels selected the result is empty.
func FilterByLevel(records []Record, levels ...ProcessingLevel) []Record {
	out := make([]Record, 0, len(records))
	if len(levels) == 0 {
		return out
	}
	for i := range records {
		level := ProcessingLevel(records[i].String("processing_level"))
		if slices.Contains(levels, level) {
			out = append(out, records[i])
		}
	}
	return out
}

// CompareValues orders two decoded JSON values. Numbers compare numerically,
// strings lexically and booleans false before true. Values of different kinds
// order as null < bool < number < string < anything else.
func CompareValues(a, b any) int {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNull:
		return 0
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		af, _ := ToFloat(a)
		bf, _ := ToFloat(b)
		return cmp.Compare(af, bf)
	case rankString:
		return cmp.Compare(a.(string), b.(string))
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func valueRank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case string:
		return rankString
	default:
		if _, ok := ToFloat(v); ok {
			return rankNumber
		}
		return rankOther
	}
}

// ToFloat converts a numeric value, including json.Number, to float64.
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToInt converts a numeric value or numeric string to int64.
func ToInt(v any) (int64, bool) {
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return int64(f), err == nil
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := ToFloat(v)
	return int64(f), ok
}
