package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wgen/internal/theme"
)

// ImageCard describes the image shown in the pane.
type ImageCard struct {
	URL      string
	Mode     string
	Tag      string
	Details  string // format, dimensions, size
	TempPath string // empty once the temp file has expired
	Saved    bool
}

// ImagePane wraps bubbles/viewport and renders the welcome screen, the
// current image card or a fetch error.
type ImagePane struct {
	viewport viewport.Model
	ready    bool
	state    paneState
	card     ImageCard
	errText  string
	loading  bool
}

type paneState int

const (
	paneWelcome paneState = iota
	paneImage
	paneError
)

// NewImagePane creates a new pane (dimensions set on first WindowSizeMsg).
func NewImagePane() ImagePane {
	return ImagePane{}
}

// SetSize updates the pane dimensions.
func (p *ImagePane) SetSize(width, height int) {
	if !p.ready {
		p.viewport = viewport.New(width, height)
		p.viewport.MouseWheelEnabled = true
		p.viewport.MouseWheelDelta = 3
		p.ready = true
	} else {
		p.viewport.Width = width
		p.viewport.Height = height
	}
	p.refresh()
}

// SetLoading marks a fetch as in flight. The previous content stays visible.
func (p *ImagePane) SetLoading(loading bool) {
	p.loading = loading
	p.refresh()
}

// ShowImage replaces the content with card.
func (p *ImagePane) ShowImage(card ImageCard) {
	p.state = paneImage
	p.card = card
	p.errText = ""
	p.refresh()
}

// ShowError replaces the content with an error message.
func (p *ImagePane) ShowError(msg string) {
	p.state = paneError
	p.errText = msg
	p.refresh()
}

// Card returns the card being displayed and whether one is shown.
func (p *ImagePane) Card() (ImageCard, bool) {
	return p.card, p.state == paneImage
}

// Update forwards messages to the viewport.
func (p *ImagePane) Update(msg tea.Msg) (*ImagePane, tea.Cmd) {
	if !p.ready {
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the pane.
func (p *ImagePane) View() string {
	if !p.ready {
		return "\n  Initializing..."
	}
	return p.viewport.View()
}

func (p *ImagePane) refresh() {
	if !p.ready {
		return
	}
	var content string
	switch p.state {
	case paneImage:
		content = p.renderCard()
	case paneError:
		content = p.renderError()
	default:
		content = p.renderWelcome()
	}
	p.viewport.SetContent(content)
	p.viewport.GotoTop()
}

func (p *ImagePane) renderCard() string {
	t := theme.Current
	c := p.card

	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Width(10)
	valueStyle := lipgloss.NewStyle().Foreground(t.Text)
	urlStyle := lipgloss.NewStyle().Foreground(t.Secondary).Underline(true)

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(t.Background)
	if c.Mode == "NSFW" {
		badge = badge.Background(t.Restricted)
	} else {
		badge = badge.Background(t.General)
	}

	var sb strings.Builder
	sb.WriteString("\n  ")
	sb.WriteString(badge.Render(c.Mode))
	sb.WriteString(" ")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(t.TextBright).Render(c.Tag))
	if c.Saved {
		sb.WriteString(lipgloss.NewStyle().Foreground(t.Success).Render("  ✓ saved"))
	}
	sb.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"url", urlStyle.Render(c.URL)},
		{"image", valueStyle.Render(c.Details)},
	}
	if c.TempPath != "" {
		rows = append(rows, struct{ label, value string }{"file", valueStyle.Render(c.TempPath)})
	} else {
		rows = append(rows, struct{ label, value string }{"file", labelStyle.Render("expired")})
	}
	for _, r := range rows {
		sb.WriteString("  ")
		sb.WriteString(labelStyle.Render(r.label))
		sb.WriteString(r.value)
		sb.WriteString("\n")
	}

	if p.loading {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Render("  Fetching next image..."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (p *ImagePane) renderError() string {
	t := theme.Current

	errStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Error)
	hintStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	var sb strings.Builder
	sb.WriteString("\n  ")
	sb.WriteString(errStyle.Render("Error: " + p.errText))
	sb.WriteString("\n\n")
	sb.WriteString(hintStyle.Render("  Press r to try again, or c to change categories."))
	sb.WriteString("\n")
	return sb.String()
}

func (p *ImagePane) renderWelcome() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	accentStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Secondary)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Text)

	logo := `
   __      ____ _  ___ _ __
   \ \ /\ / / _' |/ _ \ '_ \
    \ V  V / (_| |  __/ | | |
     \_/\_/ \__, |\___|_| |_|
            |___/
`

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("  A terminal waifu image generator"))
	sb.WriteString("\n\n")
	sb.WriteString(accentStyle.Render("  ⌨ Quick Start"))
	sb.WriteString("\n\n")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"n / l / →", "Next image (generates at the end)"},
		{"p / h / ←", "Previous image"},
		{"r", "Generate a new image"},
		{"s", "Save current image"},
		{"c", "Choose categories"},
		{"?", "Show all keybindings"},
		{"q", "Quit"},
	}

	for _, s := range shortcuts {
		sb.WriteString(keyStyle.Render(fmt.Sprintf("  %-14s", s.key)))
		sb.WriteString(descStyle.Render(s.desc))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("  Press n to generate your first image"))
	sb.WriteString("\n")

	return sb.String()
}
