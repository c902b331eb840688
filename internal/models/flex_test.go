package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumberUnmarshal(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		present bool
		valid   bool
		value   float64
	}{
		{"number", `5`, true, true, 5},
		{"numeric string", `"12"`, true, true, 12},
		{"float", `3.5`, true, true, 3.5},
		{"zero counts as absent", `0`, false, true, 0},
		{"empty string counts as absent", `""`, false, false, 0},
		{"null counts as absent", `null`, false, false, 0},
		{"garbage is present but invalid", `"abc"`, true, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexNumber
			require.NoError(t, json.Unmarshal([]byte(tc.input), &f))
			assert.Equal(t, tc.present, f.Present)
			assert.Equal(t, tc.valid, f.Valid)
			assert.Equal(t, tc.value, f.Value)
		})
	}
}

func TestFlexNumberInt(t *testing.T) {
	var f FlexNumber
	require.NoError(t, json.Unmarshal([]byte(`7.9`), &f))
	assert.Equal(t, 7, f.Int())
}
