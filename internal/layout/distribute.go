// Package layout distributes fixed-size boxes over rows of a bounded width.
//
// The breaking strategy follows TeX's paragraph builder in spirit: every
// line carries a badness equal to the cube of its unused width, and the
// partition with the lowest total badness wins.
package layout

import "math"

// Box is a fixed-size element to be placed, measured in terminal cells.
type Box struct {
	Width  int
	Height int
}

// Position is the top-left cell of a placed box, relative to (0, 0).
type Position struct {
	X int
	Y int
}

// maxGap caps the extra spacing inserted after each box on a line.
const maxGap = 2

type badness = uint64

const infinite badness = math.MaxUint64

// Distribute places boxes left to right over lines of at most maxWidth cells,
// choosing line breaks that minimize the summed badness of all lines.
//
// The returned slice holds one position per box, in input order. A box wider
// than maxWidth is placed on a line of its own.
func Distribute(maxWidth int, boxes []Box) []Position {
	if len(boxes) == 0 {
		return nil
	}
	breaks := breakpoints(maxWidth, boxes)

	positions := make([]Position, 0, len(boxes))
	y := 0
	for start := 0; start < len(boxes); {
		end := breaks[start]
		line := boxes[start:end]

		content, height := 0, 0
		for _, b := range line {
			content += b.Width
			height = max(height, b.Height)
		}
		gap := min(maxGap, max(0, maxWidth-content)/len(line))

		x := 0
		for _, b := range line {
			positions = append(positions, Position{X: x, Y: y})
			x += b.Width + gap
		}
		y += height
		start = end
	}
	return positions
}

// Lines returns how many rows a distribution spans, assuming unit-height boxes
// on the last row.
func Lines(positions []Position) int {
	if len(positions) == 0 {
		return 0
	}
	return positions[len(positions)-1].Y - positions[0].Y + 1
}

// breakpoints returns, for every start index i, the exclusive end of the first
// line in the best partition of boxes[i:]. Suffixes are solved from the back
// so each one is computed exactly once.
func breakpoints(maxWidth int, boxes []Box) []int {
	n := len(boxes)
	best := make([]badness, n+1) // best[n] = 0: empty suffix
	next := make([]int, n)

	for start := n - 1; start >= 0; start-- {
		best[start] = infinite
		next[start] = start + 1

		width := 0
		for end := start + 1; end <= n; end++ {
			width += boxes[end-1].Width
			line := lineBadness(maxWidth, width)
			if line == infinite {
				if end > start+1 {
					// Wider lines only get worse.
					break
				}
				// A lone oversized box fills its row; charging it infinity
				// would poison every partition of the prefix.
				line = 0
			}
			total := addBadness(line, best[end])
			if total < best[start] {
				best[start] = total
				next[start] = end
			}
		}
	}
	return next
}

func lineBadness(maxWidth, width int) badness {
	if width > maxWidth {
		return infinite
	}
	slack := badness(maxWidth - width)
	return slack * slack * slack
}

func addBadness(a, b badness) badness {
	if a > infinite-b {
		return infinite
	}
	return a + b
}
