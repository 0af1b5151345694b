package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/edu-arcade/internal/level"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Validate or watch level descriptors",
}

var levelsValidateCmd = &cobra.Command{
	Use:   "validate [file or dir...]",
	Short: "Check level descriptor files",
	Long: `Parse and compile level descriptors, reporting every problem found.
Without arguments the whole search path is checked, embedded levels included.

Examples:
  arcade levels validate
  arcade levels validate ./levels/11-space-quiz.yaml
  arcade levels validate ./levels`,
	RunE: runLevelsValidate,
}

var levelsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload levels whenever descriptor files change",
	Long: `Watch the level directories and print the level list after each reload.
Useful while writing new descriptors. Press Ctrl+C to stop.`,
	RunE: runLevelsWatch,
}

func init() {
	levelsCmd.AddCommand(levelsValidateCmd)
	levelsCmd.AddCommand(levelsWatchCmd)
}

func runLevelsValidate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	if len(args) == 0 {
		loader := level.NewLoader(flagLevelsDir, logger)
		levels, err := loader.LoadAll()
		if err != nil {
			return err
		}
		if _, err := level.NewRegistry(levels); err != nil {
			return err
		}
		fmt.Printf("%d levels OK\n", len(levels))
		return nil
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := level.Files(arg)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	failed := 0
	for _, path := range files {
		lvl, err := level.LoadFile(path)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %s\n      %v\n", path, err)
			continue
		}
		fmt.Printf("ok    %s  (%s, #%d)\n", path, lvl.ID(), lvl.Ordinal())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptors invalid", failed, len(files))
	}
	return nil
}

func runLevelsWatch(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	loader := level.NewLoader(flagLevelsDir, logger)
	levels, err := loader.LoadAll()
	if err != nil {
		return err
	}
	reg, err := level.NewRegistry(levels)
	if err != nil {
		return err
	}

	w, err := level.NewWatcher(loader, reg, logger)
	if err != nil {
		return err
	}
	w.OnReload(func(infos []level.Info, err error) {
		if err != nil {
			fmt.Printf("reload failed: %v\n", err)
			return
		}
		fmt.Printf("reloaded %d levels\n", len(infos))
		for _, l := range infos {
			fmt.Printf("  %2d  %-20s  %s\n", l.Ordinal, l.ID, l.Title)
		}
	})

	fmt.Printf("watching %v (Ctrl+C to stop)\n", loader.Dirs)
	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchLevels hot-reloads the app's registry until ctx is cancelled.
func (a *app) watchLevels(ctx context.Context) {
	w, err := level.NewWatcher(a.loader, a.levels, a.logger.WithPrefix("levels"))
	if err != nil {
		a.logger.Warn("level hot-reload disabled", "error", err)
		return
	}
	w.OnReload(func(infos []level.Info, err error) {
		if err == nil {
			a.logger.Info("levels reloaded", "count", len(infos))
		}
	})
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("level watcher stopped", "error", err)
		}
	}()
}
