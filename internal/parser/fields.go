package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingField is wrapped by DecodeError when a required field is absent or null.
	ErrMissingField = errors.New("missing required field")

	// ErrWrongType is wrapped by DecodeError when a field has an unexpected JSON type.
	ErrWrongType = errors.New("unexpected field type")
)

// object is a JSON object with lazily decoded values.
type object map[string]json.RawMessage

// raw returns the value for a required field, rejecting absent and null values.
func (o object) raw(field string) (json.RawMessage, error) {
	v, ok := o[field]
	if !ok || isNull(v) {
		return nil, ErrMissingField
	}
	return v, nil
}

func (o object) str(field string) (string, error) {
	v, err := o.raw(field)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%w: want string, got %s", ErrWrongType, jsonType(v))
	}
	return s, nil
}

func (o object) float(field string) (float64, error) {
	v, err := o.raw(field)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, fmt.Errorf("%w: want number, got %s", ErrWrongType, jsonType(v))
	}
	return f, nil
}

func (o object) integer(field string) (int, error) {
	v, err := o.raw(field)
	if err != nil {
		return 0, err
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, fmt.Errorf("%w: want integer, got %s", ErrWrongType, jsonType(v))
	}
	return n, nil
}

func (o object) stringSlice(field string) ([]string, error) {
	v, err := o.raw(field)
	if err != nil {
		return nil, err
	}
	var ss []string
	if err := json.Unmarshal(v, &ss); err != nil {
		return nil, fmt.Errorf("%w: want array of strings, got %s", ErrWrongType, jsonType(v))
	}
	return ss, nil
}

// decimalText normalizes a number-or-string JSON value to canonical decimal
// text. Absent, null and non-scalar values yield "".
func decimalText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || isNull(v) {
		return ""
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return NormalizeDecimal(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return NormalizeDecimal(string(v))
	default:
		return ""
	}
}

// NormalizeDecimal returns the canonical text of a decimal ("1234.50" and
// "1.2345e3" both become "1234.5"). Text that is not a decimal is returned
// trimmed but otherwise unchanged.
func NormalizeDecimal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.String()
}

// integerValue reads a number-or-string JSON value as an int64, truncating fractions.
func integerValue(v json.RawMessage) (int64, bool) {
	text := decimalText(v)
	if text == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	return d.IntPart(), true
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func jsonType(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "nothing"
	}
	switch v[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
