package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/edu-arcade/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play <level>",
	Short: "Play a level",
	Long: `Start playing the specified level by ID or ordinal number.
Only unlocked levels can be played; finish a level to unlock the next.

Controls:
  Arrows/WASD  - Move
  Space        - Action (tap, throw, jump)
  Mouse click  - Tap
  P            - Pause
  R/Enter      - Play again (on the result card)
  Esc          - Leave the level
  Q/Ctrl+C     - Quit

Examples:
  arcade play fruit-catch
  arcade play 3 --difficulty hard
  arcade play maze-escape --user sam`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{sound: true, reporter: true})
	if err != nil {
		return err
	}
	defer a.Close()

	lvl, err := a.lookup(args[0])
	if err != nil {
		return fmt.Errorf("%w (run 'arcade list' to see available levels)", err)
	}

	if err := a.checkPlayable(cmd.Context(), lvl); err != nil {
		return err
	}

	a.logger.Debug("starting level", "level", lvl.ID(), "source", lvl.Source)
	if err := tui.RunPlay(lvl, a.services(), a.diff, a.reporter); err != nil {
		return fmt.Errorf("cannot run level: %w", err)
	}
	return nil
}
