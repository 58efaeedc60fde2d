package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/theme"
)

// StatusBar shows the current image's mode, history position and any
// transient message at the bottom of the screen.
type StatusBar struct {
	mode     string // "SFW", "NSFW" or empty before the first image
	tag      string
	loading  string // spinner frame while a fetch is in flight
	position int    // 1-based; 0 when history is empty
	total    int
	width    int
	message  string
	isError  bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// SetSelection updates the mode badge and tag of the displayed image.
func (s *StatusBar) SetSelection(sel gallery.Selection) {
	s.mode = sel.Mode.Label()
	s.tag = sel.Tag
}

// SetLoading shows frame as a loading indicator; an empty frame hides it.
func (s *StatusBar) SetLoading(frame string) {
	s.loading = frame
}

// SetPosition sets the history cursor as a 1-based position out of total.
func (s *StatusBar) SetPosition(pos, total int) {
	s.position = pos
	s.total = total
}

// SetMessage sets an informational message.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
	s.isError = false
}

// SetError sets an error message.
func (s *StatusBar) SetError(msg string) {
	s.message = msg
	s.isError = true
}

// ClearMessage removes any message.
func (s *StatusBar) ClearMessage() {
	s.message = ""
	s.isError = false
}

// Message returns the current message text.
func (s *StatusBar) Message() string {
	return s.message
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := theme.Current

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(t.Background)

	var mode string
	switch s.mode {
	case "SFW":
		mode = modeStyle.Background(t.General).Render("SFW")
	case "NSFW":
		mode = modeStyle.Background(t.Restricted).Render("NSFW")
	default:
		mode = modeStyle.Background(t.Primary).Render("WGEN")
	}

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface)

	var left string
	switch {
	case s.loading != "":
		loadStyle := lipgloss.NewStyle().
			Foreground(t.Warning).
			Background(t.Surface).
			Bold(true).
			Padding(0, 1)
		left = loadStyle.Render(s.loading + " Loading...")
	case s.message != "":
		color := t.Info
		if s.isError {
			color = t.Error
		}
		msgStyle := lipgloss.NewStyle().
			Foreground(color).
			Background(t.Surface).
			Padding(0, 1)
		left = msgStyle.Render(s.message)
	case s.tag != "":
		tagStyle := lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Surface).
			Padding(0, 1)
		left = tagStyle.Render(s.tag)
	}

	posStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		Background(t.Surface).
		Padding(0, 1)
	right := posStyle.Render(s.positionText())

	modeWidth := lipgloss.Width(mode)
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	spacerWidth := s.width - modeWidth - leftWidth - rightWidth
	if spacerWidth < 0 {
		spacerWidth = 0
	}

	spacerStyle := lipgloss.NewStyle().
		Background(t.Surface)
	spacer := spacerStyle.Render(fmt.Sprintf("%*s", spacerWidth, ""))

	return barStyle.Render(mode + left + spacer + right)
}

func (s *StatusBar) positionText() string {
	if s.total == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.position, s.total)
}
