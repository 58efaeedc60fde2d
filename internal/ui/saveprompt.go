package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wgen/internal/theme"
)

// SavePrompt asks for the destination path of the current image.
type SavePrompt struct {
	input  textinput.Model
	active bool
	width  int
}

// NewSavePrompt creates a new save prompt.
func NewSavePrompt() SavePrompt {
	ti := textinput.New()
	ti.Placeholder = "path/to/image.png"
	ti.CharLimit = 4096
	ti.Width = 60

	return SavePrompt{
		input: ti,
	}
}

// SetWidth updates the prompt width.
func (sp *SavePrompt) SetWidth(w int) {
	sp.width = w
	sp.input.Width = w - 14
}

// Open activates the prompt pre-filled with suggestion.
func (sp *SavePrompt) Open(suggestion string) tea.Cmd {
	sp.active = true
	sp.input.SetValue(suggestion)
	sp.input.CursorEnd()
	return sp.input.Focus()
}

// Close deactivates and clears the prompt.
func (sp *SavePrompt) Close() {
	sp.active = false
	sp.input.Blur()
	sp.input.Reset()
}

// IsActive reports whether the prompt is open.
func (sp *SavePrompt) IsActive() bool {
	return sp.active
}

// Value returns the entered path.
func (sp *SavePrompt) Value() string {
	return sp.input.Value()
}

// Update handles messages for the prompt.
func (sp *SavePrompt) Update(msg tea.Msg) (*SavePrompt, tea.Cmd) {
	if !sp.active {
		return sp, nil
	}
	var cmd tea.Cmd
	sp.input, cmd = sp.input.Update(msg)
	return sp, cmd
}

// View renders the prompt.
func (sp *SavePrompt) View() string {
	t := theme.Current

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Width(sp.width - 2)

	promptStyle := lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	content := promptStyle.Render("Save as:") + " " + sp.input.View()

	return barStyle.Render(content)
}
