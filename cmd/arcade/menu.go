package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/edu-arcade/internal/platform/tui"
)

var flagWatch bool

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a level picker menu",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, left/right to change difficulty and
Enter to play. Locked levels open as you finish the ones before them.
After a level ends, play again, go on to the next level or return to the menu.

Controls:
  Up/Down/j/k     - Navigate menu
  Left/Right      - Change difficulty
  Enter/Space     - Play level
  Tab             - High scores
  Q               - Quit

Examples:
  arcade menu
  arcade menu --fps 30
  arcade menu --levels ./my-levels --watch`,
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload level descriptors when they change on disk")
}

func runMenu(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, appOptions{sound: true, reporter: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if flagWatch {
		a.watchLevels(ctx)
	}

	return tui.RunSession(a.services(), a.user, a.diff)
}
