package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidyasagar/wgen/internal/app"
	"github.com/vidyasagar/wgen/internal/config"
	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/logging"
	"github.com/vidyasagar/wgen/internal/storage"
	"github.com/vidyasagar/wgen/internal/theme"
)

// App holds state shared by all commands.
type App struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	syncLog func()

	// flag values, applied over the loaded config when set
	themeName    string
	settingsPath string
	debug        bool
}

func newRootCmd() *cobra.Command {
	a := &App{}

	rootCmd := &cobra.Command{
		Use:   "wgen",
		Short: "A terminal waifu image generator",
		Long: `wgen fetches random anime images from waifu.pics for the categories you
choose, and lets you browse back and forth through the last ones.

Run without a subcommand to start the interactive viewer.

Examples:
  wgen                              # start the viewer
  wgen --theme nord                 # use the nord theme
  wgen fetch --count 3              # print three image URLs
  wgen fetch --download ~/Pictures  # download one image
  wgen settings set --general waifu,neko,hug
  wgen tags                         # list available categories`,
		Version:           version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
		RunE:              a.runViewer,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.themeName, "theme", "", fmt.Sprintf("color theme (%s)", strings.Join(theme.List(), ", ")))
	pf.StringVar(&a.settingsPath, "config", "", "path of the settings file")
	pf.BoolVar(&a.debug, "debug", false, "write debug entries to the log file")

	rootCmd.AddCommand(newFetchCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))
	rootCmd.AddCommand(newTagsCmd(a))
	rootCmd.AddCommand(newSavedCmd(a))

	return rootCmd
}

// setup loads configuration, applies flags and opens the log file.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Theme = a.themeName
	}
	if flags.Changed("config") {
		cfg.SettingsPath = a.settingsPath
	}
	if flags.Changed("debug") {
		cfg.Debug = a.debug
	}
	if err := cfg.ResolvePaths(); err != nil {
		return err
	}
	if !theme.Set(cfg.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", cfg.Theme, strings.Join(theme.List(), ", "))
	}

	logger, syncLog, err := logging.New(cfg.DataDir, cfg.Debug)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
		logger, syncLog = logging.Nop(), func() {}
	}

	a.cfg = cfg
	a.logger = logger
	a.syncLog = syncLog

	a.logger.Debugw("starting",
		"version", version,
		"command", cmd.Name(),
		"api", cfg.APIBase,
		"settings", cfg.SettingsPath,
	)
	return nil
}

func (a *App) teardown() {
	if a.syncLog != nil {
		a.syncLog()
	}
}

func (a *App) newClient() *gallery.Client {
	return gallery.NewClient(
		gallery.WithBaseURL(a.cfg.APIBase),
		gallery.WithTimeout(a.cfg.Timeout),
		gallery.WithLogger(a.logger),
	)
}

func (a *App) loadSettings() storage.UserSettings {
	s, err := storage.LoadSettings(a.cfg.SettingsPath)
	if err != nil {
		a.logger.Warnw("settings unreadable, using defaults", "path", a.cfg.SettingsPath, "error", err)
	}
	return s
}

// openSaved opens the saved-image ledger. A nil store means the ledger is
// unavailable; callers continue without it.
func (a *App) openSaved() (*storage.SavedStore, func()) {
	db, err := storage.OpenDB(a.cfg.DataDir)
	if err != nil {
		a.logger.Warnw("saved-image ledger disabled", "error", err)
		return nil, func() {}
	}
	return storage.NewSavedStore(db), func() { db.Close() }
}

func (a *App) runViewer(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	saved, closeSaved := a.openSaved()
	defer closeSaved()

	temp := gallery.NewTempStore("", a.cfg.TempTTL)
	defer temp.Close()

	updates := make(chan storage.UserSettings, 1)
	var settingsUpdates <-chan storage.UserSettings = updates
	_, err := storage.WatchSettings(ctx, a.cfg.SettingsPath, a.logger, func(s storage.UserSettings) {
		// keep only the newest value
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	if err != nil {
		a.logger.Warnw("settings watcher unavailable", "error", err)
		settingsUpdates = nil
	}

	m := app.New(app.Deps{
		Client:          a.newClient(),
		Temp:            temp,
		Saved:           saved,
		Logger:          a.logger,
		Settings:        a.loadSettings(),
		SettingsPath:    a.cfg.SettingsPath,
		SettingsUpdates: settingsUpdates,
		HistorySize:     a.cfg.HistorySize,
		Timeout:         a.cfg.Timeout,
		GenerateOnStart: true,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	a.logger.Infow("viewer started", "theme", a.cfg.Theme)
	if _, err := p.Run(); err != nil {
		a.logger.Errorw("viewer exited with error", "error", err)
		return fmt.Errorf("running viewer: %w", err)
	}
	a.logger.Infow("viewer stopped")
	return nil
}

func printErr(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}
