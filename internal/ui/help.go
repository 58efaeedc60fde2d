package ui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// Cached glamour renderer; building one parses the whole style sheet.
var (
	cachedRenderer      *glamour.TermRenderer
	cachedRendererWidth int
	cachedRendererStyle string
	rendererMu          sync.Mutex
)

// RenderMarkdown renders markdown for the terminal using the named glamour
// style. On failure the raw markdown is returned.
func RenderMarkdown(markdown, style string, width int) string {
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4
	if contentWidth > 100 {
		contentWidth = 100
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	out, err := renderWithGlamour(markdown, style, contentWidth)
	if err != nil {
		return markdown
	}
	return out
}

func renderWithGlamour(markdown, style string, width int) (string, error) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if cachedRenderer == nil || cachedRendererWidth != width || cachedRendererStyle != style {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		cachedRenderer = renderer
		cachedRendererWidth = width
		cachedRendererStyle = style
	}

	return cachedRenderer.Render(markdown)
}
