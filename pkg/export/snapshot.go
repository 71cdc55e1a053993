// Package export renders the current market view into shareable
// snapshot cards (SVG or PNG) and can serve the exported cards locally
// for a quick look before sharing.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/0raclide/nihontowatch-sub000/pkg/query"
	"github.com/0raclide/nihontowatch-sub000/pkg/stats"
	"github.com/0raclide/nihontowatch-sub000/pkg/version"
)

const (
	cardWidth  = 640
	cardHeight = 400
	cardMargin = 28
)

// Card palette, matching the TUI theme.
const (
	cardBG     = "#282A36"
	cardFG     = "#F8F8F2"
	cardMuted  = "#6272A4"
	cardAccent = "#BD93F9"
)

// SnapshotOptions configures one card export.
type SnapshotOptions struct {
	// Path is the output file. When Format is empty the file extension
	// decides the format.
	Path   string
	Format string // "svg" or "png"

	Title     string // defaults to "nihonto market snapshot"
	Summary   stats.Summary
	Histogram *query.Histogram // asking-price distribution, may be nil
	Taken     time.Time        // zero means now
}

// SaveSnapshotCard renders the market summary as a card image at
// opts.Path.
func SaveSnapshotCard(opts SnapshotOptions) error {
	format := opts.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Path)), ".")
	}
	if opts.Title == "" {
		opts.Title = "nihonto market snapshot"
	}
	if opts.Taken.IsZero() {
		opts.Taken = time.Now()
	}

	switch format {
	case "svg":
		var buf bytes.Buffer
		renderSVG(&buf, opts)
		if err := os.WriteFile(opts.Path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		return nil
	case "png":
		return renderPNG(opts)
	default:
		return fmt.Errorf("unsupported snapshot format %q (want svg or png)", format)
	}
}

func renderSVG(w io.Writer, opts SnapshotOptions) {
	canvas := svg.New(w)
	canvas.Start(cardWidth, cardHeight)
	canvas.Rect(0, 0, cardWidth, cardHeight, "fill:"+cardBG)

	y := cardMargin + 18
	canvas.Text(cardMargin, y, opts.Title, svgStyle(cardFG, 20, true))
	y += 20
	canvas.Text(cardMargin, y, opts.Taken.Format("2 Jan 2006"), svgStyle(cardMuted, 12, false))

	y += 30
	for _, line := range summaryLines(opts.Summary) {
		canvas.Text(cardMargin, y, line, svgStyle(cardFG, 14, false))
		y += 22
	}

	bandTop := y + 16
	bandHeight := 110
	bars := histogramBars(opts.Histogram, cardMargin, bandTop, cardWidth-2*cardMargin, bandHeight)
	if len(bars) > 0 {
		canvas.Text(cardMargin, bandTop-4, "asking prices", svgStyle(cardMuted, 12, false))
		for _, b := range bars {
			canvas.Rect(b.x, b.y, b.w, b.h, "fill:"+cardAccent)
		}
		lo, hi := histogramEdgeLabels(opts.Histogram)
		canvas.Text(cardMargin, bandTop+bandHeight+16, lo, svgStyle(cardMuted, 11, false))
		canvas.Text(cardWidth-cardMargin, bandTop+bandHeight+16, hi, svgStyle(cardMuted, 11, false)+";text-anchor:end")
	}

	if line := categoriesLine(opts.Summary); line != "" {
		canvas.Text(cardMargin, cardHeight-cardMargin-18, line, svgStyle(cardFG, 13, false))
	}
	canvas.Text(cardMargin, cardHeight-cardMargin+6, "nihontowatch "+version.Version, svgStyle(cardMuted, 11, false))
	canvas.End()
}

func svgStyle(color string, size int, bold bool) string {
	s := fmt.Sprintf("fill:%s;font-family:sans-serif;font-size:%dpx", color, size)
	if bold {
		s += ";font-weight:bold"
	}
	return s
}

func renderPNG(opts SnapshotOptions) error {
	heading, err := cardFace(gobold.TTF, 20)
	if err != nil {
		return err
	}
	body, err := cardFace(goregular.TTF, 14)
	if err != nil {
		return err
	}
	small, err := cardFace(goregular.TTF, 11.5)
	if err != nil {
		return err
	}

	dc := gg.NewContext(cardWidth, cardHeight)
	dc.SetHexColor(cardBG)
	dc.Clear()

	y := float64(cardMargin + 18)
	dc.SetFontFace(heading)
	dc.SetHexColor(cardFG)
	dc.DrawString(opts.Title, cardMargin, y)
	y += 20
	dc.SetFontFace(small)
	dc.SetHexColor(cardMuted)
	dc.DrawString(opts.Taken.Format("2 Jan 2006"), cardMargin, y)

	y += 30
	dc.SetFontFace(body)
	dc.SetHexColor(cardFG)
	for _, line := range summaryLines(opts.Summary) {
		dc.DrawString(line, cardMargin, y)
		y += 22
	}

	bandTop := int(y) + 16
	bandHeight := 110
	bars := histogramBars(opts.Histogram, cardMargin, bandTop, cardWidth-2*cardMargin, bandHeight)
	if len(bars) > 0 {
		dc.SetFontFace(small)
		dc.SetHexColor(cardMuted)
		dc.DrawString("asking prices", cardMargin, float64(bandTop-4))
		dc.SetHexColor(cardAccent)
		for _, b := range bars {
			dc.DrawRectangle(float64(b.x), float64(b.y), float64(b.w), float64(b.h))
		}
		dc.Fill()
		lo, hi := histogramEdgeLabels(opts.Histogram)
		dc.SetHexColor(cardMuted)
		labelY := float64(bandTop + bandHeight + 16)
		dc.DrawString(lo, cardMargin, labelY)
		hiWidth, _ := dc.MeasureString(hi)
		dc.DrawString(hi, float64(cardWidth-cardMargin)-hiWidth, labelY)
	}

	if line := categoriesLine(opts.Summary); line != "" {
		dc.SetFontFace(body)
		dc.SetHexColor(cardFG)
		dc.DrawString(line, cardMargin, float64(cardHeight-cardMargin-18))
	}
	dc.SetFontFace(small)
	dc.SetHexColor(cardMuted)
	dc.DrawString("nihontowatch "+version.Version, cardMargin, float64(cardHeight-cardMargin+6))

	if err := dc.SavePNG(opts.Path); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func cardFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build font face: %w", err)
	}
	return face, nil
}

type histBar struct {
	x, y, w, h int
}

// histogramBars lays the sparse histogram out as bar rectangles inside
// the given band, scaled against the fullest bucket. Empty buckets get
// no bar; a nil or all-zero histogram yields none.
func histogramBars(h *query.Histogram, x, y, width, height int) []histBar {
	if h == nil || len(h.Boundaries) == 0 {
		return nil
	}
	counts := make([]int, len(h.Boundaries))
	maxCount := 0
	for _, b := range h.Buckets {
		if b.Index >= 0 && b.Index < len(counts) {
			counts[b.Index] = b.Count
			if b.Count > maxCount {
				maxCount = b.Count
			}
		}
	}
	if maxCount == 0 {
		return nil
	}

	step := width / len(counts)
	if step < 3 {
		step = 3
	}
	var bars []histBar
	for i, c := range counts {
		if c == 0 {
			continue
		}
		bh := c * height / maxCount
		if bh < 2 {
			bh = 2
		}
		bars = append(bars, histBar{x: x + i*step, y: y + height - bh, w: step - 2, h: bh})
	}
	return bars
}

func histogramEdgeLabels(h *query.Histogram) (lo, hi string) {
	return compactJPY(h.Boundaries[0]), compactJPY(h.Boundaries[len(h.Boundaries)-1])
}

func summaryLines(s stats.Summary) []string {
	lines := []string{
		fmt.Sprintf("%d listings · %d open · %d sold", s.Total, s.Open, s.Sold),
	}
	if s.Price.Count > 0 {
		lines = append(lines,
			fmt.Sprintf("median %s · mean %s", compactJPY(s.Price.Median), compactJPY(s.Price.Mean)),
			fmt.Sprintf("range %s to %s · %d price on ask", compactJPY(s.Price.Min), compactJPY(s.Price.Max), s.Unpriced),
		)
	}
	if s.MeanNagasa > 0 {
		lines = append(lines, fmt.Sprintf("mean nagasa %.1f cm · %d papered", s.MeanNagasa, s.Certified))
	}
	return lines
}

func categoriesLine(s stats.Summary) string {
	if len(s.Categories) == 0 {
		return ""
	}
	var parts []string
	for i, c := range s.Categories {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("+%d more", len(s.Categories)-5))
			break
		}
		parts = append(parts, fmt.Sprintf("%s %d", c.Value, c.Count))
	}
	return strings.Join(parts, " · ")
}

func compactJPY(v float64) string {
	switch {
	case v >= 1000000:
		s := strconv.FormatFloat(v/1000000, 'f', 1, 64)
		return "¥" + strings.TrimSuffix(s, ".0") + "M"
	case v >= 1000:
		return fmt.Sprintf("¥%.0fk", v/1000)
	case v <= 0:
		return "¥0"
	default:
		return fmt.Sprintf("¥%.0f", v)
	}
}
