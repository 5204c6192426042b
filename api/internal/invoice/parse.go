package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ParseJSON decodes normalized model text. The value is returned as decoded,
// numbers kept as json.Number; the shape is not checked against Record.
func ParseJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, FormatError(text, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("invalid character after top-level value")
		}
		return nil, FormatError(text, err)
	}
	return v, nil
}

// Normalize runs fence stripping and JSON parsing over raw model output.
func Normalize(raw string) (Result, error) {
	text := StripFence(raw)
	res := Result{Raw: raw, Text: text}
	v, err := ParseJSON(text)
	if err != nil {
		return res, err
	}
	res.Value = v
	return res, nil
}
