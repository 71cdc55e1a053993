package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/0raclide/nihontowatch-sub000/pkg/gesture"
	"github.com/0raclide/nihontowatch-sub000/pkg/query"
)

// trackRect is the screen-space hit box of a slider track, recorded at
// render time so mouse events map back onto track fractions.
type trackRect struct {
	x, y, w int
}

func (t trackRect) contains(px, py int) bool {
	return t.w > 0 && py == t.y && px >= t.x && px < t.x+t.w
}

// frac maps a column onto a 0..1 position along the track.
func (t trackRect) frac(px int) float64 {
	if t.w <= 1 {
		return 0
	}
	f := float64(px-t.x) / float64(t.w-1)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f
}

// renderTrackLine draws a slider as a one-line track: rail, selected
// span and the two handles.
func renderTrackLine(s *gesture.Slider, width int, focused bool, t Theme) string {
	if width < 2 {
		width = 2
	}
	last := s.VisibleCount() - 1
	if last < 1 {
		last = 1
	}
	minCol := s.MinIndex() * (width - 1) / last
	maxCol := s.MaxIndex() * (width - 1) / last

	handleStyle := t.Renderer.NewStyle().Foreground(t.Subtext)
	if focused {
		handleStyle = t.Renderer.NewStyle().Foreground(t.Accent).Bold(true)
	}
	railStyle := t.Renderer.NewStyle().Foreground(t.Border)
	spanStyle := t.Renderer.NewStyle().Foreground(t.Primary)

	var b strings.Builder
	for col := 0; col < width; col++ {
		switch {
		case col == minCol || col == maxCol:
			b.WriteString(handleStyle.Render("┃"))
		case col > minCol && col < maxCol:
			b.WriteString(spanStyle.Render("━"))
		default:
			b.WriteString(railStyle.Render("─"))
		}
	}
	return b.String()
}

// sparkline renders bucket counts as a block-character strip aligned
// with the slider track.
func sparkline(h *query.Histogram, visible, width int, t Theme) string {
	if h == nil || width <= 0 || visible <= 0 {
		return strings.Repeat(" ", width)
	}
	counts := make([]int, visible)
	maxCount := 0
	for _, b := range h.Buckets {
		if b.Index >= 0 && b.Index < visible {
			counts[b.Index] += b.Count
			if counts[b.Index] > maxCount {
				maxCount = counts[b.Index]
			}
		}
	}
	if maxCount == 0 {
		return strings.Repeat(" ", width)
	}

	levels := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for col := 0; col < width; col++ {
		idx := col * visible / width
		if idx > visible-1 {
			idx = visible - 1
		}
		c := counts[idx]
		if c == 0 {
			b.WriteRune(' ')
			continue
		}
		lvl := c * (len(levels) - 1) / maxCount
		b.WriteRune(levels[lvl])
	}
	return t.Renderer.NewStyle().Foreground(t.Secondary).Render(b.String())
}

// sliderRangeLabel describes the committed selection in domain values.
func sliderRangeLabel(s *gesture.Slider, format func(float64) string) string {
	r := s.Selection()
	switch {
	case r.Min == nil && r.Max == nil:
		return "any"
	case r.Min == nil:
		return "to " + format(*r.Max)
	case r.Max == nil:
		return "from " + format(*r.Min)
	default:
		return format(*r.Min) + "-" + format(*r.Max)
	}
}

// formatYenCompact renders JPY amounts in slider-label width.
func formatYenCompact(v float64) string {
	switch {
	case v <= 0:
		return "¥0"
	case v < 1000:
		return fmt.Sprintf("¥%d", int64(v))
	case v < 1_000_000:
		s := strings.TrimSuffix(strconv.FormatFloat(v/1000, 'f', 1, 64), ".0")
		return "¥" + s + "k"
	default:
		s := strings.TrimSuffix(strconv.FormatFloat(v/1_000_000, 'f', 1, 64), ".0")
		return "¥" + s + "M"
	}
}

// formatCM renders a blade length boundary, keeping the shaku-cutoff
// decimals (30.3, 60.6) intact.
func formatCM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "cm"
}
