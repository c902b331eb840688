package models

import (
	"bytes"
	"strconv"
	"strings"
)

// FlexNumber accepts a JSON number or a numeric string. Form clients send
// week numbers, durations and ratings in either shape.
//
// Present reports whether the field carried a non-empty, non-zero value;
// zero and empty string count as absent, matching how the upstream form
// contract treats them. Valid reports whether the raw value parsed as a
// number at all.
type FlexNumber struct {
	Present bool
	Valid   bool
	Value   float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	if raw == "" || raw == "null" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.Present = true
		return nil
	}

	f.Valid = true
	f.Value = v
	f.Present = v != 0
	return nil
}

// Int returns the truncated integer value.
func (f FlexNumber) Int() int {
	return int(f.Value)
}
