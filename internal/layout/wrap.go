package layout

import (
	"strings"

	"boyl/internal/ui/textutil"
)

// Wrap hard-wraps the whitespace-delimited words of text so no line exceeds
// width cells (unless a single word does), breaking where Distribute would.
// It returns the wrapped text and its number of lines.
func Wrap(text string, width int) (string, int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", 0
	}

	// Each word carries the space that follows it; widening the line by one
	// cell absorbs the trailing space of the last word.
	boxes := make([]Box, len(words))
	for i, w := range words {
		boxes[i] = Box{Width: textutil.VisualWidth(w) + 1, Height: 1}
	}
	breaks := breakpoints(width+1, boxes)

	var b strings.Builder
	lines := 0
	for start := 0; start < len(words); {
		end := breaks[start]
		if lines > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(words[start:end], " "))
		lines++
		start = end
	}
	return b.String(), lines
}
