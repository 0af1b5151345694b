package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/edu-arcade/internal/audio"
	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/level"
	"github.com/vovakirdan/edu-arcade/internal/platform/tui"
	"github.com/vovakirdan/edu-arcade/internal/profile"
	"github.com/vovakirdan/edu-arcade/internal/progress"
	"github.com/vovakirdan/edu-arcade/internal/report"
	"github.com/vovakirdan/edu-arcade/internal/storage"
)

// app holds the services shared by every command.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	user     string
	diff     config.Difficulty
	store    *storage.Store // Nil when the database could not be opened
	progress *progress.Store
	api      profile.API
	reporter *report.Reporter
	sound    *audio.Beep // Nil unless the command plays sound
	loader   *level.Loader
	levels   *level.Registry
	cancel   context.CancelFunc
	resynced chan struct{}
}

type appOptions struct {
	sound    bool // Open the speaker
	reporter bool // Start the result reporter
	noResync bool // Skip the background outbox replay at startup
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "arcade",
	})
	if lvl, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using warn", "level", flagLogLevel)
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// newApp loads config and levels, opens storage and wires the reporter.
// Failures of optional services are logged and the app continues without them.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	logger := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg)

	diff, err := config.ParseDifficulty(cfg.Player.Difficulty)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		user:   cfg.Player.User,
		diff:   diff,
	}

	loader := level.NewLoader(cfg.Levels.Dir, logger.WithPrefix("levels"))
	levels, err := loader.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot load levels: %w", err)
	}
	a.loader = loader
	a.levels, err = level.NewRegistry(levels)
	if err != nil {
		return nil, err
	}

	var progStorage progress.Storage = progress.NewMemoryStorage()
	if store, err := storage.Open(cfg.Storage.Path); err != nil {
		logger.Warn("could not open database, progress will not be saved", "path", cfg.Storage.Path, "error", err)
	} else {
		a.store = store
		progStorage = store
	}
	a.progress = progress.New(progStorage, logger.WithPrefix("progress"))

	a.api = profile.Offline{}
	if !flagOffline && cfg.Profile.BaseURL != "" {
		client, err := profile.NewClient(cfg.Profile.BaseURL, cfg.Profile.Timeout)
		if err != nil {
			logger.Warn("profile API disabled", "error", err)
		} else {
			a.api = client
		}
	}

	if opts.reporter {
		var local report.Local
		if a.store != nil {
			local = a.store
		}
		a.reporter = report.New(report.Options{
			UserID:      a.user,
			Difficulty:  a.diff,
			QueueSize:   cfg.Reporter.QueueSize,
			Timeout:     cfg.Profile.Timeout,
			ResyncLimit: cfg.Reporter.ResyncLimit,
		}, a.api, local, a.progress, logger.WithPrefix("report"))

		runCtx, cancel := context.WithCancel(ctx)
		a.cancel = cancel
		a.reporter.Start(runCtx)
		if !opts.noResync {
			a.resynced = make(chan struct{})
			go a.resync(runCtx)
		}
	}

	if opts.sound {
		a.sound = audio.NewBeep(cfg.Audio, logger.WithPrefix("audio"))
		//nolint:errcheck // Init logs failures and leaves the player silent
		a.sound.Init()
	}

	return a, nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.Config) {
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagUser != "" {
		cfg.Player.User = flagUser
	}
	if cfg.Player.User == "" {
		cfg.Player.User = "player"
	}
	if flagDifficulty != "" {
		cfg.Player.Difficulty = flagDifficulty
	}
	if flagFPS > 0 {
		cfg.Runtime.TickRate = flagFPS
	}
	if flagLevelsDir != "" {
		cfg.Levels.Dir = flagLevelsDir
	}
	if flagMute {
		cfg.Audio.Enabled = false
	}
}

// resync replays reports left over from earlier runs.
func (a *app) resync(ctx context.Context) {
	defer close(a.resynced)
	res, err := a.reporter.Resync(ctx)
	if err != nil && !errors.Is(err, profile.ErrOffline) && !errors.Is(err, context.Canceled) {
		a.logger.Warn("resync failed", "error", err)
		return
	}
	if res.Sent > 0 {
		a.logger.Info("delivered pending reports", "sent", res.Sent)
	}
}

// Close drains the reporter and releases every resource.
func (a *app) Close() {
	if a.reporter != nil {
		a.reporter.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.resynced != nil {
		<-a.resynced
	}
	if a.sound != nil {
		a.sound.Shutdown()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// runtime builds the simulation settings, sized to the terminal when attached.
func (a *app) runtime() core.RuntimeConfig {
	width, height := a.cfg.Runtime.Width, a.cfg.Runtime.Height
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	rt := core.DefaultConfig()
	rt.ScreenW = width
	rt.ScreenH = height
	if a.cfg.Runtime.TickRate > 0 {
		rt.TickRate = a.cfg.Runtime.TickRate
	}
	if a.cfg.Runtime.MaxFrames > 0 {
		rt.MaxFrames = a.cfg.Runtime.MaxFrames
	}
	rt.Seed = flagSeed
	return rt
}

func (a *app) services() tui.Services {
	svc := tui.Services{
		Levels:     a.levels,
		Progress:   a.progress,
		Reporter:   a.reporter,
		Difficulty: a.cfg.Difficulty,
		Runtime:    a.runtime(),
		Logger:     a.logger,
	}
	if a.store != nil {
		svc.Scores = a.store
	}
	if a.sound != nil {
		svc.Audio = a.sound
	}
	return svc
}

// lookup finds a level by ID or by its ordinal number.
func (a *app) lookup(ref string) (level.Level, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		return a.levels.ByOrdinal(n)
	}
	return a.levels.Get(ref)
}

// checkPlayable refuses levels the user has not unlocked yet.
func (a *app) checkPlayable(ctx context.Context, lvl level.Level) error {
	if err := a.progress.Check(ctx, a.user, a.diff, lvl.Ordinal()); err != nil {
		if errors.Is(err, progress.ErrLocked) {
			return fmt.Errorf("%w: finish level %d first to play %q as %s on %s",
				progress.ErrLocked, lvl.Ordinal()-1, lvl.ID(), a.user, a.diff)
		}
		return err
	}
	return nil
}

// withTimeout bounds one-shot remote operations.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := a.cfg.Profile.Timeout
	if timeout <= 0 {
		timeout = profile.DefaultTimeout
	}
	return context.WithTimeout(ctx, 2*timeout+time.Second)
}
