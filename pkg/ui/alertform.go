package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type alertFormStatus int

const (
	alertFormIdle alertFormStatus = iota
	alertFormActive
	alertFormDone
	alertFormCancelled
)

// AlertFormModel wraps the save-search-alert form: a name for the saved
// search plus whether to copy the share link. The results are bound to
// heap pointers so the model stays safe to copy between updates.
type AlertFormModel struct {
	theme    Theme
	form     *huh.Form
	name     *string
	copyLink *bool
	status   alertFormStatus

	width  int
	height int
}

func NewAlertForm(t Theme) AlertFormModel {
	return AlertFormModel{theme: t}
}

func (m *AlertFormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Open builds a fresh one-shot form seeded with a default name and
// returns its init command.
func (m *AlertFormModel) Open(defaultName string) tea.Cmd {
	m.name = new(string)
	*m.name = defaultName
	m.copyLink = new(bool)
	*m.copyLink = true

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Alert name").
				Description("Tags the share link so arrivals see where it came from.").
				Value(m.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name must not be empty")
					}
					return nil
				}),
			huh.NewConfirm().
				Key("copy").
				Title("Copy share link to clipboard?").
				Affirmative("Copy").
				Negative("Just show").
				Value(m.copyLink),
		),
	).
		WithTheme(huh.ThemeDracula()).
		WithWidth(46).
		WithShowHelp(true)

	m.status = alertFormActive
	return m.form.Init()
}

// Update feeds one message through the form and tracks completion.
func (m AlertFormModel) Update(msg tea.Msg) (AlertFormModel, tea.Cmd) {
	if m.form == nil || m.status != alertFormActive {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.status = alertFormCancelled
		return m, nil
	}

	f, cmd := m.form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.form = hf
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.status = alertFormDone
	case huh.StateAborted:
		m.status = alertFormCancelled
	}
	return m, cmd
}

func (m *AlertFormModel) Status() alertFormStatus { return m.status }

// Result returns the entered name and whether to copy the link.
func (m *AlertFormModel) Result() (string, bool) {
	if m.name == nil || m.copyLink == nil {
		return "", false
	}
	return strings.TrimSpace(*m.name), *m.copyLink
}

func (m *AlertFormModel) View() string {
	if m.form == nil {
		return ""
	}
	t := m.theme
	title := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).
		Render("Save search as alert")
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(title + "\n\n" + m.form.View())
}
