package pdf

import (
	"sort"
	"strings"
)

// cellGapFactor is the horizontal gap, in multiples of the font size,
// that separates two table cells on the same baseline. Ordinary word
// spacing is roughly a quarter of the font size.
const cellGapFactor = 2.0

// minTableRows is the number of consecutive multi-cell lines needed before
// they are treated as a table rather than a stray aligned line.
const minTableRows = 2

// run is a piece of text positioned on a line.
type run struct {
	X, W, Size float64
	S          string
}

// splitCells groups the runs of one line into cells.
func splitCells(line []run) []string {
	if len(line) == 0 {
		return nil
	}

	sorted := make([]run, len(line))
	copy(sorted, line)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var (
		cells []string
		cell  strings.Builder
		end   = sorted[0].X
	)
	for i, r := range sorted {
		size := r.Size
		if size <= 0 {
			size = 1
		}
		if i > 0 && r.X-end > size*cellGapFactor {
			if s := strings.TrimSpace(cell.String()); s != "" {
				cells = append(cells, s)
			}
			cell.Reset()
		}
		cell.WriteString(r.S)
		if r.X+r.W > end {
			end = r.X + r.W
		}
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

// tableRows returns every line that belongs to a run of at least
// minTableRows consecutive lines with two or more cells, formatted with
// cells joined by " | ".
func tableRows(lines [][]run) []string {
	var (
		rows    []string
		pending []string
	)
	flush := func() {
		if len(pending) >= minTableRows {
			rows = append(rows, pending...)
		}
		pending = pending[:0]
	}

	for _, line := range lines {
		cells := splitCells(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		pending = append(pending, strings.Join(cells, " | "))
	}
	flush()

	return rows
}
