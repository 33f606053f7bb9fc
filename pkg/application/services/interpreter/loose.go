package interpreter

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Text decodes a JSON string or number as text. Any other JSON value decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*t = Text(strings.TrimSpace(x))
	case float64:
		*t = Text(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		*t = ""
	}
	return nil
}

// String returns the text
func (t Text) String() string {
	return string(t)
}

// Number decodes a JSON number. Valid is false for any other value, numeric strings included.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number{}
	if x, ok := v.(float64); ok {
		*n = Number{Value: x, Valid: true}
	}
	return nil
}

// InRange returns the value when valid and within [lo, hi], otherwise def
func (n Number) InRange(lo, hi, def float64) float64 {
	if !n.Valid || n.Value < lo || n.Value > hi {
		return def
	}
	return n.Value
}
