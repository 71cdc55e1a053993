package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

const (
	quickViewMaxWidth = 96
	quickViewChrome   = 5 // border rows, header, divider, footer
)

// QuickViewModel renders one listing as a centered overlay card: status
// header, glamour-rendered body in a viewport, key hints below.
type QuickViewModel struct {
	theme Theme
	vp    viewport.Model
	md    *glamour.TermRenderer

	listing  model.Listing
	loading  bool
	errText  string
	hasPrev  bool
	hasNext  bool
	position string

	width  int
	height int
}

func NewQuickView(t Theme) QuickViewModel {
	return QuickViewModel{theme: t, vp: viewport.New(0, 0)}
}

// SetSize fits the card into the screen and rebuilds the markdown
// renderer for the new wrap width.
func (q *QuickViewModel) SetSize(screenW, screenH int) {
	w := screenW - 8
	if w > quickViewMaxWidth {
		w = quickViewMaxWidth
	}
	if w < 20 {
		w = 20
	}
	h := screenH - 4
	if h < 6 {
		h = 6
	}
	q.width = w
	q.height = h
	q.vp.Width = w - 4
	q.vp.Height = h - quickViewChrome

	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(q.vp.Width),
	)
	if err == nil {
		q.md = md
	}
	q.refresh()
}

// SetListing shows a listing from the already-loaded summary row while
// its detail is fetched.
func (q *QuickViewModel) SetListing(l model.Listing, hasPrev, hasNext bool, position string) {
	q.listing = l
	q.hasPrev, q.hasNext = hasPrev, hasNext
	q.position = position
	q.loading = true
	q.errText = ""
	q.refresh()
	q.vp.GotoTop()
}

// SetDetail swaps in the fully fetched listing.
func (q *QuickViewModel) SetDetail(l model.Listing) {
	q.listing = l
	q.loading = false
	q.errText = ""
	q.refresh()
}

func (q *QuickViewModel) SetError(msg string) {
	q.loading = false
	q.errText = msg
}

func (q *QuickViewModel) SetLoading() {
	q.loading = true
	q.errText = ""
}

func (q *QuickViewModel) ScrollBy(lines int) {
	if lines >= 0 {
		q.vp.LineDown(lines)
	} else {
		q.vp.LineUp(-lines)
	}
}

func (q *QuickViewModel) HalfPageDown() { q.vp.HalfViewDown() }
func (q *QuickViewModel) HalfPageUp()   { q.vp.HalfViewUp() }
func (q *QuickViewModel) GotoTop()      { q.vp.GotoTop() }

// refresh re-renders the markdown body into the viewport, preserving
// the scroll offset where it still fits.
func (q *QuickViewModel) refresh() {
	if q.listing.ID == 0 {
		return
	}
	src := q.markdown()
	body := src
	if q.md != nil {
		if out, err := q.md.Render(src); err == nil {
			body = out
		}
	}
	q.vp.SetContent(body)
}

func (q *QuickViewModel) markdown() string {
	l := q.listing
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l.DisplayTitle())
	if l.TitleJa != "" && l.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", l.TitleJa)
	}

	fact := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "- **%s** %s\n", label, value)
		}
	}
	fact("Category", l.Category)
	switch {
	case l.HasPrice():
		fact("Price", "¥"+humanize.Comma(l.PriceJPY))
	case l.PriceOnAsk:
		fact("Price", "on request")
	}
	if l.NagasaCM > 0 {
		fact("Nagasa", fmt.Sprintf("%.1f cm", l.NagasaCM))
	}
	fact("Papers", l.Certification)
	fact("Period", l.Period)
	if l.Signature != "" {
		fact("Signature", string(l.Signature))
	}
	if l.Dealer != nil {
		d := l.Dealer.Name
		if l.Dealer.Location != "" {
			d += " (" + l.Dealer.Location + ")"
		}
		fact("Dealer", d)
	}
	if !l.UpdatedAt.IsZero() {
		fact("Updated", humanize.Time(l.UpdatedAt))
	}

	if l.Description != "" {
		b.WriteString("\n---\n\n")
		b.WriteString(l.Description)
		b.WriteString("\n")
	}
	if l.URL != "" {
		fmt.Fprintf(&b, "\n[dealer page](%s)\n", l.URL)
	}
	return b.String()
}

func (q *QuickViewModel) View() string {
	t := q.theme

	titleW := q.width - 4 - len(q.position) - 7
	if titleW < 8 {
		titleW = 8
	}
	header := RenderStatusBadge(q.listing.Status) + " " +
		t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).
			Render(runewidth.Truncate(q.listing.DisplayTitle(), titleW, "…")) +
		" " + t.Renderer.NewStyle().Foreground(t.Subtext).Render(q.position)

	var footer string
	switch {
	case q.errText != "":
		footer = t.Renderer.NewStyle().Foreground(t.Danger).
			Render("detail fetch failed: " + q.errText)
	case q.loading:
		footer = t.Renderer.NewStyle().Foreground(t.Subtext).Render("fetching detail...")
	default:
		hints := []string{}
		if q.hasPrev {
			hints = append(hints, "p prev")
		}
		if q.hasNext {
			hints = append(hints, "n next")
		}
		hints = append(hints, "r refresh", "o dealer page", "y copy link", "esc close")
		footer = t.Renderer.NewStyle().Foreground(t.Subtext).
			Render(strings.Join(hints, " · "))
	}

	inner := header + "\n" +
		RenderDivider(q.width-4) + "\n" +
		q.vp.View() + "\n" +
		footer

	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(q.width - 2).
		Render(inner)
}
