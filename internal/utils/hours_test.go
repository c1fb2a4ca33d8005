package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "00:00"},
		{-1, "00:00"},
		{0.5, "00:30"},
		{0.7, "00:42"},
		{1.5, "01:30"},
		{3.75, "03:45"},
		{2.999, "02:59"},
		{12.01, "12:00"},
		{100, "100:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHours(tt.hours), "hours=%v", tt.hours)
	}
}
