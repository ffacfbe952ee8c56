package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/sadopc/zenfocus/internal/config"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/i18n"
	"github.com/sadopc/zenfocus/internal/ipc"
	"github.com/sadopc/zenfocus/internal/logging"
	"github.com/sadopc/zenfocus/internal/notify"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/session"
	"github.com/sadopc/zenfocus/internal/sound"
	"github.com/sadopc/zenfocus/internal/store"
	"github.com/sadopc/zenfocus/internal/tui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "zenfocus",
	Short: "A focus timer with phases, rounds and sounds",
	Long: `zenfocus runs focus sessions made of rounds. Each round walks through
a catalog of phases (focus, short break, long break) and the timer moves on
by itself when a phase ends.

With no arguments, zenfocus opens the timer in the terminal. While it runs,
other programs can control it with 'zenfocus send <command>', over HTTP or
socket.io on the loopback address, or by creating a file named after the
command in the signals directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimer()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/zenfocus/config.yaml)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// cliContext loads config and a stderr logger for the short-lived commands.
func cliContext() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, _, err := logging.Setup(cfg.Log.Level, "")
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func runTimer() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, logCloser, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logCloser.Close()

	var guard *ipc.Guard
	if cfg.IPC.Enabled {
		guard, err = ipc.Acquire(cfg.IPC.Address)
		if err != nil {
			return fmt.Errorf("%w; use 'zenfocus send <command>' to control it", err)
		}
		defer guard.Release()
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	sounds := sound.DefaultCatalog()
	player := sound.New(cfg.Sound.Enabled, cfg.Sound.Dir, sounds, logger)
	tr := i18n.New(i18n.Detect(cfg.Lang))

	eng, err := engine.New(engine.Config{
		Catalog:      phase.DefaultCatalog(),
		Durations:    engine.DefaultDurations(),
		TickInterval: cfg.Timer.TickInterval,
		AutoAdvance:  cfg.Timer.AutoAdvance,
	}, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	var mgr *session.Manager
	surface := control.New(eng, player, nil, control.Options{
		Debounce: cfg.Input.Debounce,
		Logger:   logger,
		Hooks: control.Hooks{
			NewSession:    func() error { return mgr.NewSession() },
			ToggleCompact: func() error { return mgr.ToggleCompact() },
		},
	})

	bridge := notify.New(notify.Options{
		Player:     player,
		AlertSound: cfg.Sound.AlertID,
		Translate:  tr.T,
		Label:      tr.Phase,
		Logger:     logger,
	})
	surface.SetPrompter(bridge)

	mgr, err = session.NewManager(st, eng, bridge, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if guard != nil {
		srv := ipc.NewServer(surface, eng, logger)
		bridge.AddSink("socket", srv)
		go func() {
			if err := srv.Serve(guard.Listener()); err != nil {
				logger.Error().Err(err).Msg("host api stopped")
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("host api shutdown")
			}
		}()

		watcher, err := ipc.NewWatcher(cfg.IPC.SignalsDir, surface, logger)
		if err != nil {
			logger.Warn().Err(err).Str("dir", cfg.IPC.SignalsDir).Msg("signal directory disabled")
		} else {
			go watcher.Run(ctx)
		}
	}

	bridgeSnaps, unsubscribeBridge := eng.Subscribe(64)
	defer unsubscribeBridge()
	go bridge.Run(ctx, bridgeSnaps)
	go surface.Run(ctx)

	uiSnaps, unsubscribeUI := eng.Subscribe(64)
	defer unsubscribeUI()

	if err := mgr.NewSession(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	app := tui.NewApp(tui.Deps{
		Store:      st,
		Surface:    surface,
		Session:    mgr,
		Translator: tr,
		Sounds:     sounds,
		Player:     player,
		Initial:    eng.Snapshot(),
		Snapshots:  uiSnaps,
		Prompts:    bridge.Prompts(),
		Alerts:     bridge.Alerts(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Preferences can change from the host side too.
	mgr.OnPreferences(func(prefs store.Preferences) {
		p.Send(tui.PreferencesMsg{Prefs: prefs})
	})

	logger.Info().Str("addr", guard.Address()).Str("lang", tr.Lang()).Msg("zenfocus started")
	_, err = p.Run()
	return err
}
