package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Parse decodes a webhook body. Numbers are kept as json.Number so ids and
// prices survive unchanged; anything after the first JSON value is rejected.
func Parse(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshaling payload: unexpected data after top-level value")
	}
	return v, nil
}

// Object returns v as a JSON object, if it is one
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// String renders a decoded JSON scalar as text. Strings are returned
// verbatim, numbers as their literal, anything else as compact JSON.
// null renders as the empty string.
func String(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("marshaling value: %w", err)
		}
		return string(raw), nil
	}
}
