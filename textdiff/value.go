package textdiff

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type valueKind uint8

const (
	valueMissing valueKind = iota
	valueText
	valueRaw
)

// Value is an engine input at the boundary. A caller hands the engine either
// text, a non-text value to be coerced once in the normalizer, or nothing.
// The zero Value is missing and fails the input gate.
type Value struct {
	kind valueKind
	text string
	raw  any
}

// Text wraps an already-textual input. An empty string is a present, valid
// input (it diffs as a single empty line).
func Text(s string) Value {
	return Value{kind: valueText, text: s}
}

// Raw wraps a non-text input. Coercion to text happens once, in the
// normalizer; values that cannot be rendered (cycles, channels, functions)
// surface as the computation-failed terminal state, never as a panic.
func Raw(v any) Value {
	return Value{kind: valueRaw, raw: v}
}

// Missing reports whether the value was never supplied.
func (v Value) Missing() bool {
	return v.kind == valueMissing
}

// Original returns the uncoerced input for degraded display: the string for
// text values, the wrapped value for raw ones, nil when missing.
func (v Value) Original() any {
	switch v.kind {
	case valueText:
		return v.text
	case valueRaw:
		return v.raw
	default:
		return nil
	}
}

// normalize coerces the value to text. Text passes through untouched; raw
// values render via their natural textual form, falling back to JSON.
func (v Value) normalize() (string, error) {
	switch v.kind {
	case valueText:
		return v.text, nil
	case valueRaw:
		return coerce(v.raw)
	default:
		return "", ErrInvalidInput
	}
}

func coerce(raw any) (string, error) {
	switch t := raw.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("%w: nil value", ErrCoerce)
	}
	// Structured values render as JSON. Marshal rejects cycles and
	// non-serializable kinds, which is exactly the uncoercible case.
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoerce, err)
	}
	return string(data), nil
}

// ValueFromJSON converts a raw JSON field into a Value: absent or null is
// missing, a JSON string is text, anything else is a raw value coerced by
// the normalizer. This is the decoding used by the HTTP and MCP boundaries.
func ValueFromJSON(raw json.RawMessage) Value {
	if len(raw) == 0 || string(raw) == "null" {
		return Value{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Text(s)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Raw(string(raw))
	}
	return Raw(v)
}
