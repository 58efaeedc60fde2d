package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/storage"
	"github.com/vidyasagar/wgen/internal/theme"
)

// Option is one selectable category in the settings panel.
type Option struct {
	Tag      string
	Selected bool
}

// SettingsPanel lists the general and restricted categories as checkboxes.
// The cursor walks a single list: general options first, then restricted.
type SettingsPanel struct {
	general    []Option
	restricted []Option
	cursor     int
	offset     int // first visible row
	width      int
	height     int
	visible    bool
	loading    bool
}

// NewSettingsPanel creates a new settings panel.
func NewSettingsPanel() SettingsPanel {
	return SettingsPanel{}
}

// SetSize updates the panel dimensions.
func (sp *SettingsPanel) SetSize(w, h int) {
	sp.width = w
	sp.height = h
	sp.ensureVisible()
}

// Show opens the panel in the loading state until Load is called.
func (sp *SettingsPanel) Show() {
	sp.visible = true
	sp.loading = true
	sp.general = nil
	sp.restricted = nil
	sp.cursor = 0
	sp.offset = 0
}

// Hide closes the panel.
func (sp *SettingsPanel) Hide() {
	sp.visible = false
	sp.loading = false
}

// IsVisible reports whether the panel is shown.
func (sp *SettingsPanel) IsVisible() bool {
	return sp.visible
}

// IsLoading reports whether the panel is waiting for the catalog.
func (sp *SettingsPanel) IsLoading() bool {
	return sp.loading
}

// CanSave reports whether the options are loaded and may be saved.
func (sp *SettingsPanel) CanSave() bool {
	return sp.visible && !sp.loading
}

// Load fills the option lists from the catalog and marks the tags selected
// in s. Selected tags missing from the catalog are kept so saving does not
// silently drop them.
func (sp *SettingsPanel) Load(catalog gallery.Catalog, s storage.UserSettings) {
	sp.general = buildOptions(catalog.SFW, s.General)
	sp.restricted = buildOptions(catalog.NSFW, s.Restricted)
	sp.loading = false
	sp.cursor = 0
	sp.offset = 0
}

func buildOptions(tags, selected []string) []Option {
	chosen := make(map[string]bool, len(selected))
	for _, t := range selected {
		chosen[t] = true
	}
	opts := make([]Option, 0, len(tags)+len(selected))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		opts = append(opts, Option{Tag: t, Selected: chosen[t]})
	}
	for _, t := range selected {
		if !seen[t] {
			seen[t] = true
			opts = append(opts, Option{Tag: t, Selected: true})
		}
	}
	return opts
}

func (sp *SettingsPanel) total() int {
	return len(sp.general) + len(sp.restricted)
}

// at returns the option under index i of the combined list.
func (sp *SettingsPanel) at(i int) *Option {
	if i < len(sp.general) {
		return &sp.general[i]
	}
	return &sp.restricted[i-len(sp.general)]
}

// CursorUp moves the cursor up one option.
func (sp *SettingsPanel) CursorUp() {
	if sp.cursor > 0 {
		sp.cursor--
		sp.ensureVisible()
	}
}

// CursorDown moves the cursor down one option.
func (sp *SettingsPanel) CursorDown() {
	if sp.cursor < sp.total()-1 {
		sp.cursor++
		sp.ensureVisible()
	}
}

// GotoTop moves to the first option.
func (sp *SettingsPanel) GotoTop() {
	sp.cursor = 0
	sp.offset = 0
}

// GotoBottom moves to the last option.
func (sp *SettingsPanel) GotoBottom() {
	if sp.total() > 0 {
		sp.cursor = sp.total() - 1
		sp.ensureVisible()
	}
}

// Toggle flips the option under the cursor.
func (sp *SettingsPanel) Toggle() {
	if sp.loading || sp.cursor >= sp.total() {
		return
	}
	o := sp.at(sp.cursor)
	o.Selected = !o.Selected
}

// Selection returns the checked tags of both groups in display order.
func (sp *SettingsPanel) Selection() storage.UserSettings {
	return storage.UserSettings{
		General:    selectedTags(sp.general),
		Restricted: selectedTags(sp.restricted),
	}
}

func selectedTags(opts []Option) []string {
	tags := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.Selected {
			tags = append(tags, o.Tag)
		}
	}
	return tags
}

// panelRow is one rendered line: a group heading or an option.
type panelRow struct {
	heading string
	option  int // index into the combined list, -1 for headings
}

func (sp *SettingsPanel) rows() []panelRow {
	rows := make([]panelRow, 0, sp.total()+2)
	rows = append(rows, panelRow{heading: "Versatile Categories", option: -1})
	for i := range sp.general {
		rows = append(rows, panelRow{option: i})
	}
	rows = append(rows, panelRow{heading: "NSFW Categories", option: -1})
	for i := range sp.restricted {
		rows = append(rows, panelRow{option: len(sp.general) + i})
	}
	return rows
}

// cursorRow returns the row index of the cursor. Each group heading
// precedes its options.
func (sp *SettingsPanel) cursorRow() int {
	if sp.cursor < len(sp.general) {
		return sp.cursor + 1
	}
	return sp.cursor + 2
}

// visibleCount returns how many rows fit below the header and above the hint.
func (sp *SettingsPanel) visibleCount() int {
	available := sp.height - 4
	if available < 1 {
		return 1
	}
	return available
}

// ensureVisible adjusts offset so the cursor row is within the window.
func (sp *SettingsPanel) ensureVisible() {
	visible := sp.visibleCount()
	row := sp.cursorRow()
	if sp.cursor == 0 {
		row = 0
	}
	if row < sp.offset {
		sp.offset = row
	}
	if row >= sp.offset+visible {
		sp.offset = row - visible + 1
	}
	if sp.offset < 0 {
		sp.offset = 0
	}
}

// View renders the settings panel.
func (sp *SettingsPanel) View() string {
	if !sp.visible {
		return ""
	}

	t := theme.Current

	panelStyle := lipgloss.NewStyle().
		Width(sp.width).
		Height(sp.height).
		Background(t.Background)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Background(t.Surface).
		Width(sp.width).
		Padding(0, 1)

	separatorStyle := lipgloss.NewStyle().
		Foreground(t.Border)

	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(t.TextBright).
		Background(t.Primary).
		Bold(true).
		Width(sp.width).
		Padding(0, 1)

	normalStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Width(sp.width).
		Padding(0, 1)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 1)

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("⚙ Category Selection"))
	sb.WriteString("\n")

	sepWidth := sp.width - 2
	if sepWidth < 1 {
		sepWidth = 1
	}
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", sepWidth)))
	sb.WriteString("\n")

	if sp.loading {
		sb.WriteString(dimStyle.Render("Loading categories..."))
		sb.WriteString("\n")
		return panelStyle.Render(sb.String())
	}

	rows := sp.rows()
	end := sp.offset + sp.visibleCount()
	if end > len(rows) {
		end = len(rows)
	}

	for i := sp.offset; i < end; i++ {
		r := rows[i]
		if r.option < 0 {
			sb.WriteString(headingStyle.Render(r.heading))
			sb.WriteString("\n")
			continue
		}
		o := sp.at(r.option)
		box := "[ ]"
		if o.Selected {
			box = "[x]"
		}
		line := box + " " + capitalize(o.Tag)
		if r.option == sp.cursor {
			sb.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString(normalStyle.Render("  " + line))
		}
		sb.WriteString("\n")
	}

	linesUsed := 2 + (end - sp.offset)
	remaining := sp.height - linesUsed
	if remaining > 1 {
		for i := 0; i < remaining-1; i++ {
			sb.WriteString("\n")
		}
		hintStyle := lipgloss.NewStyle().
			Foreground(t.TextDim).
			Italic(true).
			Padding(0, 1)
		sb.WriteString(hintStyle.Render("j/k:move  Space:toggle  Enter:save  Esc:cancel"))
	}

	return panelStyle.Render(sb.String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
