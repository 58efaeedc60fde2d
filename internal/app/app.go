package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/storage"
	"github.com/vidyasagar/wgen/internal/theme"
	"github.com/vidyasagar/wgen/internal/ui"
)

// Deps are the collaborators the Model is built from.
type Deps struct {
	Client       *gallery.Client
	Temp         *gallery.TempStore
	Saved        *storage.SavedStore // nil disables the ledger
	Logger       *zap.SugaredLogger
	Rand         gallery.Rand
	Settings     storage.UserSettings
	SettingsPath string
	// SettingsUpdates delivers settings re-read after an external edit.
	SettingsUpdates <-chan storage.UserSettings
	HistorySize     int
	Timeout         time.Duration
	Now             func() time.Time
	// GenerateOnStart fetches the first image as soon as the program starts.
	GenerateOnStart bool
}

// Model is the top-level bubbletea model for wgen. It is the only owner of
// the history and settings; fetch results reach it as messages.
type Model struct {
	// UI components
	pane     ui.ImagePane
	status   ui.StatusBar
	panel    ui.SettingsPanel
	prompt   ui.SavePrompt
	help     viewport.Model
	showHelp bool
	spinner  spinner.Model

	keys   KeyMap
	width  int
	height int
	ready  bool

	client  *gallery.Client
	history *gallery.History
	meta    map[string]gallery.Selection          // selection that produced each history URL
	images  *lru.Cache[string, *gallery.Image]    // downloaded bytes for instant back/forward
	temp    *gallery.TempStore
	saved   *storage.SavedStore
	logger  *zap.SugaredLogger
	rnd     gallery.Rand
	timeout time.Duration
	now     func() time.Time

	settings        storage.UserSettings
	settingsPath    string
	settingsUpdates <-chan storage.UserSettings

	// gen identifies the latest fetch; results tagged with an older value are dropped.
	gen             uint64
	loading         bool
	generateOnStart bool
}

// New creates a new wgen Model.
func New(d Deps) Model {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Client == nil {
		d.Client = gallery.NewClient(gallery.WithLogger(d.Logger))
	}
	if d.Temp == nil {
		d.Temp = gallery.NewTempStore("", gallery.DefaultTempTTL)
	}
	if d.Rand == nil {
		d.Rand = gallery.DefaultRand()
	}
	if d.HistorySize < 1 {
		d.HistorySize = gallery.DefaultHistorySize
	}
	if d.Timeout <= 0 {
		d.Timeout = gallery.DefaultTimeout
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	// lru.New only fails for a non-positive size, ruled out above.
	images, _ := lru.New[string, *gallery.Image](d.HistorySize)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Current.Warning)

	return Model{
		pane:            ui.NewImagePane(),
		status:          ui.NewStatusBar(),
		panel:           ui.NewSettingsPanel(),
		prompt:          ui.NewSavePrompt(),
		help:            viewport.New(0, 0),
		spinner:         sp,
		keys:            DefaultKeyMap(),
		client:          d.Client,
		history:         gallery.NewHistory(d.HistorySize),
		meta:            make(map[string]gallery.Selection),
		images:          images,
		temp:            d.Temp,
		saved:           d.Saved,
		logger:          d.Logger,
		rnd:             d.Rand,
		timeout:         d.Timeout,
		now:             d.Now,
		settings:        d.Settings,
		settingsPath:    d.SettingsPath,
		settingsUpdates: d.SettingsUpdates,
		generateOnStart: d.GenerateOnStart,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if w := waitForSettings(m.settingsUpdates); w != nil {
		cmds = append(cmds, w)
	}
	if m.generateOnStart {
		cmds = append(cmds, func() tea.Msg { return generateMsg{} })
	}
	return tea.Batch(cmds...)
}

// generateMsg asks the model to start a generate from inside the event loop.
type generateMsg struct{}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case generateMsg:
		cmd := m.generate()
		return m, cmd

	case imageURLMsg:
		return m.handleImageURL(msg)

	case imageLoadedMsg:
		return m.handleImageLoaded(msg)

	case tempExpiredMsg:
		return m.handleTempExpired(msg)

	case catalogMsg:
		return m.handleCatalog(msg)

	case settingsSavedMsg:
		if msg.err != nil {
			m.logger.Errorw("saving settings failed", "path", m.settingsPath, "error", msg.err)
			m.status.SetError(fmt.Sprintf("Could not save settings: %s", msg.err))
		} else {
			m.logger.Infow("settings saved", "path", m.settingsPath)
			m.status.SetMessage("Settings saved")
		}
		return m, nil

	case settingsChangedMsg:
		if !msg.settings.Equal(m.settings) {
			m.settings = msg.settings
			m.logger.Infow("settings reloaded",
				"general", msg.settings.General,
				"restricted", msg.settings.Restricted,
			)
			m.status.SetMessage("Settings reloaded")
		}
		return m, waitForSettings(m.settingsUpdates)

	case imageSavedMsg:
		return m.handleImageSaved(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.SetLoading(m.spinner.View())
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	cmd := m.updateComponents(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading wgen..."
	}

	var sections []string

	switch {
	case m.showHelp:
		sections = append(sections, m.help.View())
	case m.panel.IsVisible():
		t := theme.Current
		dividerStyle := lipgloss.NewStyle().
			Foreground(t.Border).
			Background(t.Background)

		dividerLines := make([]string, m.contentHeight())
		for i := range dividerLines {
			dividerLines[i] = "│"
		}
		divider := dividerStyle.Render(strings.Join(dividerLines, "\n"))

		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			m.panel.View(),
			divider,
			m.pane.View(),
		))
	default:
		sections = append(sections, m.pane.View())
	}

	if m.prompt.IsActive() {
		sections = append(sections, m.prompt.View())
	}
	sections = append(sections, m.status.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) contentHeight() int {
	statusBarHeight := 1
	promptHeight := 0
	if m.prompt.IsActive() {
		promptHeight = 3 // border adds height
	}
	h := m.height - statusBarHeight - promptHeight
	if h < 1 {
		h = 1
	}
	return h
}

// layout recalculates component sizes after a resize or a panel change.
func (m *Model) layout() {
	m.status.SetWidth(m.width)
	m.prompt.SetWidth(m.width)

	height := m.contentHeight()
	paneWidth := m.width
	if m.panel.IsVisible() {
		panelWidth := m.width * 35 / 100
		if panelWidth < 24 {
			panelWidth = 24
		}
		m.panel.SetSize(panelWidth, height)
		paneWidth = m.width - panelWidth - 1 // -1 for divider
	}
	m.pane.SetSize(paneWidth, height)

	m.help.Width = m.width
	m.help.Height = height
}

// handleKeyMsg routes keys to the active dialog or the gallery.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.prompt.IsActive():
		return m.handlePromptKeys(msg)
	case m.panel.IsVisible():
		return m.handlePanelKeys(msg)
	case m.showHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleGalleryKeys(msg)
	}
}

func (m Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		cmd := m.next()
		return m, cmd

	case key.Matches(msg, m.keys.Prev):
		cmd := m.back()
		return m, cmd

	case key.Matches(msg, m.keys.Generate):
		cmd := m.generate()
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		cmd := m.openSavePrompt()
		return m, cmd

	case key.Matches(msg, m.keys.Settings):
		m.panel.Show()
		m.layout()
		m.status.SetMessage("Loading categories...")
		return m, fetchCatalog(m.client, m.timeout)

	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	}

	pane, cmd := m.pane.Update(msg)
	m.pane = *pane
	return m, cmd
}

func (m Model) handlePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), msg.String() == "q":
		m.panel.Hide()
		m.layout()
		m.status.ClearMessage()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if !m.panel.CanSave() {
			return m, nil
		}
		s := m.panel.Selection()
		m.panel.Hide()
		m.layout()
		m.settings = s
		if s.Empty() {
			m.status.SetError("No categories selected; pick at least one to generate images")
		}
		return m, saveSettings(m.settingsPath, s)

	case key.Matches(msg, m.keys.Toggle):
		m.panel.Toggle()
	case key.Matches(msg, m.keys.Up):
		m.panel.CursorUp()
	case key.Matches(msg, m.keys.Down):
		m.panel.CursorDown()
	case key.Matches(msg, m.keys.Top):
		m.panel.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.panel.GotoBottom()
	}
	return m, nil
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.prompt.Close()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		dst := expandHome(strings.TrimSpace(m.prompt.Value()))
		m.prompt.Close()
		m.layout()
		if dst == "" {
			m.status.SetError("Save cancelled: empty path")
			return m, nil
		}
		url, ok := m.history.Current()
		img, cached := m.images.Get(url)
		if !ok || !cached {
			m.status.SetError("No image to save")
			return m, nil
		}
		return m, saveImage(m.saved, img, dst, m.meta[url])
	}

	prompt, cmd := m.prompt.Update(msg)
	m.prompt = *prompt
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.showHelp = false
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.help.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.help.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

// next moves forward in history, or generates a new image at the head.
func (m *Model) next() tea.Cmd {
	if m.history.CanGoForward() {
		url, _ := m.history.Forward()
		return m.navigate(url)
	}
	return m.generate()
}

// back moves to the previous image in history.
func (m *Model) back() tea.Cmd {
	url, ok := m.history.Back()
	if !ok {
		m.status.SetMessage("Already at the oldest image")
		return nil
	}
	return m.navigate(url)
}

// navigate shows a history entry. Any fetch still in flight is superseded.
func (m *Model) navigate(url string) tea.Cmd {
	m.gen++
	m.stopLoading()
	m.syncPosition()
	return m.display(url)
}

// generate selects a tag from the current settings and fetches a new image.
func (m *Model) generate() tea.Cmd {
	m.gen++
	sel, err := gallery.SelectTag(m.rnd, m.settings.General, m.settings.Restricted)
	if err != nil {
		m.stopLoading()
		m.showError(err)
		return nil
	}

	m.logger.Debugw("generating image", "gen", m.gen, "tag", sel.Tag, "mode", sel.Mode.String())
	m.status.SetSelection(sel)
	return tea.Batch(m.startLoading(), fetchImageURL(m.client, m.timeout, m.gen, sel))
}

func (m Model) handleImageURL(msg imageURLMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		m.logger.Debugw("discarding stale image url", "gen", msg.gen, "current", m.gen)
		return m, nil
	}
	if msg.err != nil {
		m.stopLoading()
		m.showError(msg.err)
		return m, nil
	}

	m.history.Push(msg.url)
	m.meta[msg.url] = msg.sel
	m.pruneMeta()
	m.syncPosition()
	m.logger.Infow("image generated", "url", msg.url, "tag", msg.sel.Tag, "mode", msg.sel.Mode.String())

	cmd := m.display(msg.url)
	return m, cmd
}

// display shows url from the cache or starts downloading it.
func (m *Model) display(url string) tea.Cmd {
	if sel, ok := m.meta[url]; ok {
		m.status.SetSelection(sel)
	}
	if img, ok := m.images.Get(url); ok {
		m.stopLoading()
		return m.showImage(img)
	}
	return tea.Batch(m.startLoading(), downloadImage(m.client, m.timeout, m.gen, url))
}

func (m Model) handleImageLoaded(msg imageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.images.Add(msg.url, msg.img)
	}
	current, _ := m.history.Current()
	if msg.gen != m.gen || msg.url != current {
		m.logger.Debugw("discarding stale image", "gen", msg.gen, "current", m.gen, "url", msg.url)
		return m, nil
	}

	m.stopLoading()
	if msg.err != nil {
		m.showError(msg.err)
		return m, nil
	}
	cmd := m.showImage(msg.img)
	return m, cmd
}

// showImage writes img to a temp file, shows its card and schedules the
// temp file's removal.
func (m *Model) showImage(img *gallery.Image) tea.Cmd {
	path, err := m.temp.Write(img)
	if err != nil {
		m.logger.Warnw("writing temp file failed", "url", img.URL, "error", err)
		path = ""
	}

	sel := m.meta[img.URL]
	m.pane.ShowImage(ui.ImageCard{
		URL:      img.URL,
		Mode:     sel.Mode.Label(),
		Tag:      sel.Tag,
		Details:  img.Describe(),
		TempPath: path,
		Saved:    m.saved != nil && m.saved.Has(img.URL),
	})
	m.status.ClearMessage()

	if path == "" {
		return nil
	}
	return expireTemp(path, m.temp.TTL())
}

func (m Model) handleTempExpired(msg tempExpiredMsg) (tea.Model, tea.Cmd) {
	m.temp.Remove(msg.path)
	if card, ok := m.pane.Card(); ok && card.TempPath == msg.path {
		card.TempPath = ""
		m.pane.ShowImage(card)
	}
	return m, nil
}

func (m Model) handleCatalog(msg catalogMsg) (tea.Model, tea.Cmd) {
	if !m.panel.IsVisible() {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warnw("tag listing unavailable, using built-in catalog", "error", msg.err)
	}
	m.panel.Load(msg.catalog, m.settings)
	m.status.ClearMessage()
	return m, nil
}

func (m Model) handleImageSaved(msg imageSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Errorw("saving image failed", "url", msg.url, "path", msg.path, "error", msg.err)
		m.status.SetError(fmt.Sprintf("Save failed: %s", msg.err))
		return m, nil
	}
	if msg.ledgerErr != nil {
		m.logger.Warnw("recording saved image failed", "path", msg.path, "error", msg.ledgerErr)
	}
	m.logger.Infow("image saved", "url", msg.url, "path", msg.path)
	m.status.SetMessage("Saved to " + msg.path)

	if card, ok := m.pane.Card(); ok && card.URL == msg.url {
		card.Saved = true
		m.pane.ShowImage(card)
	}
	return m, nil
}

func (m *Model) openSavePrompt() tea.Cmd {
	url, ok := m.history.Current()
	img, cached := m.images.Get(url)
	if _, shown := m.pane.Card(); !ok || !cached || !shown {
		m.status.SetError("No image to save")
		return nil
	}
	cmd := m.prompt.Open(gallery.SuggestedFilename(m.now(), img))
	m.layout()
	return cmd
}

func (m *Model) openHelp() {
	m.showHelp = true
	m.help.SetContent(ui.RenderMarkdown(m.helpMarkdown(), theme.Current.Markdown, m.width))
	m.help.GotoTop()
}

func (m *Model) helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# wgen keybindings\n\n")
	for _, section := range m.keys.helpSections() {
		sb.WriteString("## " + section.name + "\n\n")
		sb.WriteString("| Key | Action |\n|---|---|\n")
		for _, b := range section.bindings {
			h := b.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Images are fetched from a random selected category. ")
	sb.WriteString("Categories are stored in `" + m.settingsPath + "`.\n")
	return sb.String()
}

func (m *Model) startLoading() tea.Cmd {
	m.loading = true
	m.pane.SetLoading(true)
	m.status.SetLoading(m.spinner.View())
	return m.spinner.Tick
}

func (m *Model) stopLoading() {
	m.loading = false
	m.pane.SetLoading(false)
	m.status.SetLoading("")
}

func (m *Model) syncPosition() {
	m.status.SetPosition(m.history.Position()+1, m.history.Len())
}

// pruneMeta drops selections for URLs evicted from history.
func (m *Model) pruneMeta() {
	if len(m.meta) <= m.history.Len() {
		return
	}
	live := make(map[string]struct{}, m.history.Len())
	for _, u := range m.history.Entries() {
		live[u] = struct{}{}
	}
	for u := range m.meta {
		if _, ok := live[u]; !ok {
			delete(m.meta, u)
		}
	}
}

func (m *Model) showError(err error) {
	text := describeError(err)
	m.logger.Warnw("fetch failed", "error", err)
	m.pane.ShowError(text)
	m.status.SetError(text)
}

// describeError turns fetch errors into short user-facing text.
func describeError(err error) string {
	var httpErr *gallery.HTTPError
	var netErr *gallery.NetworkError
	switch {
	case errors.Is(err, gallery.ErrInvalidSelection):
		return "No categories selected. Press c to choose some."
	case errors.As(err, &httpErr):
		return fmt.Sprintf("The image service returned HTTP %d", httpErr.StatusCode)
	case gallery.IsTimeout(err):
		return "The request timed out"
	case errors.As(err, &netErr):
		return fmt.Sprintf("Network error: %s", netErr.Err)
	case errors.Is(err, gallery.ErrMalformedResponse):
		return "The image service sent an unexpected response"
	default:
		return err.Error()
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// updateComponents forwards other messages to the focused component.
func (m *Model) updateComponents(msg tea.Msg) tea.Cmd {
	if m.prompt.IsActive() {
		prompt, cmd := m.prompt.Update(msg)
		m.prompt = *prompt
		return cmd
	}
	pane, cmd := m.pane.Update(msg)
	m.pane = *pane
	return cmd
}
