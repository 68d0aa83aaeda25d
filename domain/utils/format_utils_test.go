package utils

import (
	"testing"

	"barrierbet/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		expected string
	}{
		{name: "zero", cents: 0, expected: "0.00"},
		{name: "single cent", cents: 7, expected: "0.07"},
		{name: "whole units", cents: 1000, expected: "10.00"},
		{name: "payout with fraction", cents: 1250, expected: "12.50"},
		{name: "negative", cents: -50, expected: "-0.50"},
		{name: "negative whole", cents: -1200, expected: "-12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.cents))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{name: "integer", input: "10", expected: 1000},
		{name: "one decimal", input: "12.5", expected: 1250},
		{name: "two decimals", input: "0.07", expected: 7},
		{name: "leading dot", input: ".5", expected: 50},
		{name: "trailing dot digits", input: "3.10", expected: 310},
		{name: "negative", input: "-3", expected: -300},
		{name: "explicit plus", input: "+1.01", expected: 101},
		{name: "surrounding whitespace", input: " 2.00 ", expected: 200},
		{name: "empty", input: "", wantErr: true},
		{name: "sign only", input: "-", wantErr: true},
		{name: "dot only", input: ".", wantErr: true},
		{name: "too many decimals", input: "1.234", wantErr: true},
		{name: "trailing dot", input: "5.", wantErr: true},
		{name: "letters", input: "12a", wantErr: true},
		{name: "exponent", input: "1e3", wantErr: true},
		{name: "overflow", input: "99999999999999999999", wantErr: true},
		{name: "maximum amount", input: "10000000000000", expected: entities.MaxAmount},
		{name: "negative maximum", input: "-10000000000000.00", expected: -entities.MaxAmount},
		{name: "one cent over maximum", input: "10000000000000.01", wantErr: true},
		{name: "near int64 limit", input: "90000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAmountRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, -250} {
		parsed, err := ParseAmount(FormatAmount(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, parsed)
	}
}
