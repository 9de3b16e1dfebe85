package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil stays nil", input: nil, expected: nil},
		{name: "empty stays empty", input: []string{}, expected: []string{}},
		{name: "trims license numbers", input: []string{" MD-1 ", "RN-2"}, expected: []string{"MD-1", "RN-2"}},
		{name: "first occurrence wins", input: []string{"MD-1", "RN-2", " MD-1"}, expected: []string{"MD-1", "RN-2"}},
		{name: "blanks dropped", input: []string{"", "  ", "late charting"}, expected: []string{"late charting"}},
		{name: "case is significant", input: []string{"md-1", "MD-1"}, expected: []string{"md-1", "MD-1"}},
		{name: "all blank", input: []string{" ", ""}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
