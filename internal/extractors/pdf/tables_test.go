package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCells(t *testing.T) {
	tests := []struct {
		name     string
		line     []run
		expected []string
	}{
		{
			name:     "empty",
			line:     nil,
			expected: nil,
		},
		{
			name: "word spacing stays in one cell",
			line: []run{
				{X: 10, W: 25, Size: 10, S: "Hello "},
				{X: 36, W: 25, Size: 10, S: "world"},
			},
			expected: []string{"Hello world"},
		},
		{
			name: "wide gap splits cells",
			line: []run{
				{X: 200, W: 20, Size: 10, S: "42"},
				{X: 10, W: 30, Size: 10, S: "Name"},
				{X: 100, W: 30, Size: 10, S: "Age"},
			},
			expected: []string{"Name", "Age", "42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitCells(tt.line))
		})
	}
}

func TestTableRows(t *testing.T) {
	row := func(a, b string) []run {
		return []run{{X: 10, W: 20, Size: 10, S: a}, {X: 120, W: 20, Size: 10, S: b}}
	}
	prose := []run{{X: 10, W: 300, Size: 10, S: "A paragraph of running text."}}

	lines := [][]run{
		prose,
		row("Item", "Price"),
		row("Tea", "3"),
		prose,
		row("Lonely", "row"),
	}

	assert.Equal(t, []string{"Item | Price", "Tea | 3"}, tableRows(lines))
}

func TestTableRows_NoTables(t *testing.T) {
	prose := []run{{X: 10, W: 300, Size: 10, S: "text"}}

	assert.Empty(t, tableRows([][]run{prose, prose}))
}
