package lakehouse

import (
	"fmt"
	"regexp"
)

// queryPattern matches KEY OPERATOR VALUE. Two-character operators come first
// in the alternation so ">=" is never read as ">" followed by "=".
var queryPattern = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]+)\s*(!=|>=|<=|=|>|<|\*)\s*(.+?)\s*$`)

const queryFormatHint = "Expected format: (KEY)(OPERATOR)(VALUE). Ex: 'collection_name=lakehouse'"

// ParseQuery parses a single query expression such as "inserted_at>1747934722".
func ParseQuery(query string) (Condition, error) {
	m := queryPattern.FindStringSubmatch(query)
	if m == nil {
		return Condition{}, fmt.Errorf("%w: %q. %s", ErrInvalidQuerySyntax, query, queryFormatHint)
	}
	return Condition{Key: m[1], Operator: Operator(m[2]), Value: m[3]}, nil
}

// ParseQueries parses query expressions in order. Duplicate keys are kept.
func ParseQueries(queries ...string) ([]Condition, error) {
	conds := make([]Condition, 0, len(queries))
	for _, q := range queries {
		c, err := ParseQuery(q)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// ParseQueryValues is ParseQueries for untyped input, e.g. decoded JSON or
// arguments collected from a scripting layer. Every element must be a string.
func ParseQueryValues(values ...any) ([]Condition, error) {
	queries := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: arguments must be a string, got: %T", ErrInvalidArgumentType, v)
		}
		queries = append(queries, s)
	}
	return ParseQueries(queries...)
}
