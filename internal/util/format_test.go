package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "zero", input: 0, expected: "0"},
		{name: "hundreds", input: 999, expected: "999"},
		{name: "exactly 1000", input: 1000, expected: "1.0K"},
		{name: "thousands", input: 1500, expected: "1.5K"},
		{name: "exactly 1 million", input: 1000000, expected: "1.0M"},
		{name: "millions", input: 2500000, expected: "2.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{name: "negative", input: -time.Second, expected: "0s"},
		{name: "seconds", input: 42 * time.Second, expected: "42s"},
		{name: "minutes", input: 3*time.Minute + 5*time.Second, expected: "3m 5s"},
		{name: "hours", input: 2*time.Hour + 30*time.Minute + 10*time.Second, expected: "2h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatElapsed(tt.input))
		})
	}
}

func TestFormatSpan(t *testing.T) {
	assert.Equal(t, "500ns", FormatSpan(500*time.Nanosecond))
	assert.Equal(t, "1.235ms", FormatSpan(1234567*time.Nanosecond))
	assert.Equal(t, "2s", FormatSpan(2*time.Second))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0.0/s", FormatRate(0))
	assert.Equal(t, "59.5/s", FormatRate(59.5))
	assert.Equal(t, "2.5K/s", FormatRate(2500))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.0%", FormatPercent(5, 0))
	assert.Equal(t, "50.0%", FormatPercent(5, 10))
	assert.Equal(t, "100.0%", FormatPercent(10, 10))
}
