package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "integer", input: "42", want: 42, ok: true},
		{name: "decimal", input: "3.5", want: 3.5, ok: true},
		{name: "exponent", input: "1E-3", want: 0.001, ok: true},
		{name: "padded", input: " 7 ", want: 7, ok: true},
		{name: "thousands is text", input: "1,000", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "word", input: "pcs", ok: false},
		{name: "nan", input: "NaN", ok: false},
		{name: "inf", input: "Inf", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseNumber(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestParseLooseNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "thousand with space", input: "1 000", want: 1000},
		{name: "thousand comma", input: "12,345", want: 12345},
		{name: "decimal comma", input: "1,5", want: 1.5},
		{name: "negative", input: "-2,000", want: -2000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLooseNumber(tc.input)
			if !ok {
				t.Fatalf("ParseLooseNumber(%q) not ok", tc.input)
			}
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, ok := ParseLooseNumber("P100")
	assert.False(t, ok)
}
