package interpreter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawPrefixLimit caps the number of runes of a response kept on a ParseError
const RawPrefixLimit = 200

// ParseObject decodes text as a JSON object into T.
// check, when non-nil, can reject the decoded value.
func ParseObject[T any](feature, text string, check func(T) error) (T, error) {
	var zero T

	raw, err := decodeRaw(feature, text, '{')
	if err != nil {
		return zero, err
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, newParseError(feature, KindSchema, text, err)
	}
	if check != nil {
		if err := check(value); err != nil {
			return zero, newParseError(feature, KindSchema, text, err)
		}
	}
	return value, nil
}

// ParseArray decodes text as a JSON array of T.
// An empty array is a successful, empty result. Elements that do not decode
// into T are counted as dropped rather than failing the whole array.
func ParseArray[T any](feature, text string) (Batch[T], error) {
	raw, err := decodeRaw(feature, text, '[')
	if err != nil {
		return Batch[T]{}, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Batch[T]{}, newParseError(feature, KindSchema, text, err)
	}

	batch := Batch[T]{Items: make([]T, 0, len(elems))}
	for _, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			batch.Dropped++
			continue
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

// decodeRaw strips fences, checks the text is valid JSON and that its
// top-level value starts with want.
func decodeRaw(feature, text string, want byte) (json.RawMessage, error) {
	body := []byte(StripFences(text))

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newParseError(feature, KindDecode, text, err)
	}

	got := jsonKind(raw)
	if got != kindName(want) {
		return nil, newParseError(feature, KindShape, text,
			fmt.Errorf("expected a JSON %s, got %s", kindName(want), got))
	}
	return raw, nil
}

func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	return kindName(trimmed[0])
}

func kindName(first byte) string {
	switch first {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func newParseError(feature string, kind ParseKind, text string, err error) *ParseError {
	return &ParseError{
		Feature:   feature,
		Kind:      kind,
		RawPrefix: truncateRunes(text, RawPrefixLimit),
		Err:       err,
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
