package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// Fixed column widths; the title takes whatever is left.
const (
	colCursor = 2
	colBadge  = 5
	colCat    = 11
	colNagasa = 8
	colPrice  = 12
	colDealer = 15
	colAge    = 7
)

// rowCells holds the padded plain-text cells of one table row, built
// once and styled per render path.
type rowCells struct {
	cursor string
	cat    string
	title  string
	nagasa string
	price  string
	dealer string
	age    string
}

func buildRowCells(l model.Listing, selected bool, width int) rowCells {
	c := rowCells{cursor: "  "}
	if selected {
		c.cursor = "▸ "
	}

	c.cat = fitCell(l.Category, colCat-1)
	c.title = fitCell(l.DisplayTitle(), titleWidth(width)-1)

	c.nagasa = fmt.Sprintf("%*s", colNagasa, "--")
	if l.NagasaCM > 0 {
		c.nagasa = fmt.Sprintf("%*.1fcm", colNagasa-2, l.NagasaCM)
	}

	switch {
	case l.HasPrice():
		c.price = fmt.Sprintf("%*s", colPrice, "¥"+humanize.Comma(l.PriceJPY))
	case l.PriceOnAsk:
		c.price = fmt.Sprintf("%*s", colPrice, "ask")
	default:
		c.price = fmt.Sprintf("%*s", colPrice, "--")
	}

	dealer := ""
	if l.Dealer != nil {
		dealer = l.Dealer.Name
	}
	c.dealer = fitCell(dealer, colDealer-1)

	c.age = fmt.Sprintf("%*s", colAge, FormatTimeRel(l.UpdatedAt))
	return c
}

// renderColumnHeader renders the table header row for the given width.
func renderColumnHeader(width int, t Theme) string {
	h := fmt.Sprintf("%-*s%-*s%-*s%*s%*s  %-*s%*s",
		colCursor+colBadge, "",
		colCat, "type",
		titleWidth(width), "title",
		colNagasa, "nagasa",
		colPrice, "price",
		colDealer, "dealer",
		colAge, "age")
	return t.Renderer.NewStyle().
		Foreground(t.Subtext).
		Render(padLine(h, width))
}

// renderListingRow renders one table row, CJK-safe in every column. The
// selected row trades per-cell color for a full-width highlight.
func renderListingRow(l model.Listing, selected bool, width int, t Theme) string {
	c := buildRowCells(l, selected, width)

	if selected {
		plain := c.cursor + statusShort(l.Status) + " " + c.cat + c.title +
			c.nagasa + c.price + "  " + c.dealer + c.age
		return t.Renderer.NewStyle().
			Background(ColorBgHighlight).
			Foreground(t.Primary).
			Bold(true).
			Render(padLine(plain, width))
	}

	sub := t.Renderer.NewStyle().Foreground(t.Subtext)
	cat := c.cat
	if l.Certification != "" {
		cat = t.Renderer.NewStyle().Foreground(CertificationColor(l.Certification)).Render(c.cat)
	}
	return c.cursor + RenderStatusBadge(l.Status) + " " + cat + c.title +
		sub.Render(c.nagasa) + c.price + "  " + sub.Render(c.dealer) + sub.Render(c.age)
}

// titleWidth computes the flexible title column width.
func titleWidth(total int) int {
	w := total - colCursor - colBadge - colCat - colNagasa - colPrice - colDealer - colAge - 3
	if w < 8 {
		w = 8
	}
	return w
}

// fitCell pads or truncates a value into a fixed display width,
// accounting for double-width runes, and leaves one trailing space.
func fitCell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width-1, "…")
	}
	return runewidth.FillRight(s, width) + " "
}

// padLine right-pads a rendered line to the given display width.
func padLine(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// statusShort is the uncolored badge text used inside the highlight row.
func statusShort(s model.Status) string {
	switch s {
	case model.StatusAvailable:
		return "AVBL"
	case model.StatusOnHold:
		return "HOLD"
	case model.StatusSold:
		return "SOLD"
	case model.StatusArchived:
		return "ARCH"
	}
	return "????"
}
