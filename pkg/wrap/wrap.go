// Package wrap partitions a sequence of words into lines that fit per-line
// width budgets.
//
// Two algorithms are provided: FirstFit fills each line greedily, OptimalFit
// minimizes a global cost over all line breaks, which avoids very short lines
// in the middle of a paragraph.
package wrap

import (
	"fmt"
	"strings"
)

// Fragment is an unbreakable piece of text followed by optional whitespace.
// When a line is broken after a fragment, its whitespace is dropped and its
// penalty is shown instead.
type Fragment interface {
	// Width is the display width of the fragment text.
	Width() int
	// WhitespaceWidth is the display width of the trailing whitespace.
	WhitespaceWidth() int
	// PenaltyWidth is the display width of the text shown at a line break.
	PenaltyWidth() int
}

// Algorithm selects a line breaking strategy.
type Algorithm int

// Line breaking strategies.
const (
	OptimalFit Algorithm = iota
	FirstFit
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case OptimalFit:
		return "optimal"
	case FirstFit:
		return "first-fit"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm converts a configuration name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "optimal", "optimal-fit":
		return OptimalFit, nil
	case "first-fit", "firstfit", "greedy":
		return FirstFit, nil
	}
	return OptimalFit, fmt.Errorf("unknown wrap algorithm %q", name)
}

// Wrap partitions frags into lines using algo with default penalties.
// widths[i] is the budget of line i; the last entry applies to all further
// lines. An empty widths slice means zero width.
func Wrap[T Fragment](frags []T, widths []int, algo Algorithm) [][]T {
	if algo == FirstFit {
		return WrapFirstFit(frags, widths)
	}
	return WrapOptimalFit(frags, widths, DefaultPenalties())
}

func lineWidth(widths []int, line int) int {
	if len(widths) == 0 {
		return 0
	}
	if line >= len(widths) {
		line = len(widths) - 1
	}
	if widths[line] < 0 {
		return 0
	}
	return widths[line]
}

// WrapFirstFit starts a new line whenever the next fragment would not fit.
// A fragment wider than its line is placed alone on the line.
// An empty input yields a single empty line.
func WrapFirstFit[T Fragment](frags []T, widths []int) [][]T {
	var lines [][]T
	start := 0
	width := 0
	for idx, frag := range frags {
		if idx > start && width+frag.Width()+frag.PenaltyWidth() > lineWidth(widths, len(lines)) {
			lines = append(lines, frags[start:idx])
			start = idx
			width = 0
		}
		width += frag.Width() + frag.WhitespaceWidth()
	}
	return append(lines, frags[start:])
}

// Penalties are the cost weights of WrapOptimalFit.
type Penalties struct {
	// NLinePenalty is paid for every line, favoring fewer lines.
	NLinePenalty int
	// OverflowPenalty is paid per column a line exceeds its width.
	OverflowPenalty int
	// ShortLastLineFraction and ShortLastLinePenalty discourage a last line
	// holding a single fragment narrower than width/fraction.
	ShortLastLineFraction int
	ShortLastLinePenalty  int
	// HyphenPenalty is paid for a break that shows a penalty text.
	HyphenPenalty int
}

// DefaultPenalties returns weights that favor balanced paragraphs.
func DefaultPenalties() Penalties {
	return Penalties{
		NLinePenalty:          1000,
		OverflowPenalty:       50 * 50,
		ShortLastLineFraction: 4,
		ShortLastLinePenalty:  25,
		HyphenPenalty:         25,
	}
}

// WrapOptimalFit finds the breaks minimizing the total cost, where a line's
// cost is the square of its unused width plus the configured penalties. Only
// a single fragment may exceed its line's width, so every line fits unless
// it holds one fragment wider than the budget.
// An empty input yields a single empty line.
func WrapOptimalFit[T Fragment](frags []T, widths []int, p Penalties) [][]T {
	n := len(frags)
	if n == 0 {
		return [][]T{frags}
	}
	if p.ShortLastLineFraction <= 0 {
		p.ShortLastLineFraction = 1
	}

	// prefix[i] is the width of frags[:i] including whitespace.
	prefix := make([]int, n+1)
	for i, frag := range frags {
		prefix[i+1] = prefix[i] + frag.Width() + frag.WhitespaceWidth()
	}

	widest := 0
	for line := range widths {
		widest = max(widest, lineWidth(widths, line))
	}

	const unreachable = int(^uint(0) >> 2)
	minima := make([]int, n+1)
	best := make([]int, n+1)
	lineNo := make([]int, n+1)
	for j := 1; j <= n; j++ {
		minima[j] = unreachable
	}

	for j := 1; j <= n; j++ {
		last := frags[j-1]
		for i := j - 1; i >= 0; i-- {
			if minima[i] == unreachable {
				continue
			}
			target := lineWidth(widths, lineNo[i])
			width := prefix[j] - prefix[i] - last.WhitespaceWidth() + last.PenaltyWidth()
			if width > target && j-i > 1 {
				if width > widest {
					// Lines only grow as i decreases.
					break
				}
				continue
			}

			cost := minima[i] + p.NLinePenalty
			switch {
			case width > target:
				cost += (width - target) * p.OverflowPenalty
			case j < n:
				gap := target - width
				cost += gap * gap
			case j-i == 1 && width*p.ShortLastLineFraction < target:
				cost += p.ShortLastLinePenalty
			}
			if last.PenaltyWidth() > 0 {
				cost += p.HyphenPenalty
			}

			if cost < minima[j] {
				minima[j] = cost
				best[j] = i
				lineNo[j] = lineNo[i] + 1
			}
		}
	}

	var breaks []int
	for j := n; j > 0; j = best[j] {
		breaks = append(breaks, j)
	}
	lines := make([][]T, 0, len(breaks))
	start := 0
	for k := len(breaks) - 1; k >= 0; k-- {
		lines = append(lines, frags[start:breaks[k]])
		start = breaks[k]
	}
	return lines
}
