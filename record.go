package lakehouse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Record is a catalog record: a JSON object whose fields keep the order in
// which the backend sent them, nested objects included. Numbers are held as
// json.Number so that values survive a decode/encode cycle unchanged.
//
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key, value arguments.
// It panics if a key is not a string or the argument count is odd.
func NewRecord(kv ...any) Record {
	if len(kv)%2 != 0 {
		panic("lakehouse: NewRecord called with odd argument count")
	}
	var r Record
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("lakehouse: NewRecord key %d is %T, not string", i/2, kv[i]))
		}
		r.Set(key, kv[i+1])
	}
	return r
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Get returns the value of a field and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns a field formatted as text, or "" when absent.
func (r *Record) String(key string) string {
	v, ok := r.values[key]
	if !ok || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return fmt.Sprint(v)
}

// Set adds or replaces a field. A replaced field keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	if _, exists := r.values[key]; !exists {
		return
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
}

// Clone returns a shallow copy of the record.
func (r *Record) Clone() Record {
	out := Record{keys: slices.Clone(r.keys), values: make(map[string]any, len(r.values))}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Map returns the fields as a plain map.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the record with its fields in order. Strings are not
// HTML-escaped here, but json.Marshal escapes the result again; encode with
// a json.Encoder after SetEscapeHTML(false) to keep <, > and & as is.
//
// The value receiver lets json.Marshal use it for records held by value in
// slices, maps and struct fields.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSONValue(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSONValue(&buf, r.values[key]); err != nil {
			return nil, fmt.Errorf("encode field %q: %w", key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping field order.
func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("decode record: expected JSON object")
	}

	obj, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode record: trailing data after object")
	}
	*r = obj
	return nil
}

// decodeObject reads the fields of an object whose opening brace has been
// consumed, through the closing brace.
func decodeObject(dec *json.Decoder) (Record, error) {
	r := Record{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Record{}, fmt.Errorf("unexpected token %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return Record{}, fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// decodeValue reads one JSON value. Objects become Records so their key
// order survives; arrays become []any.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		items := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// encodeJSONValue writes v without HTML escaping and without the trailing
// newline json.Encoder adds. A caller going through json.Marshal still gets
// escaped output.
func encodeJSONValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
