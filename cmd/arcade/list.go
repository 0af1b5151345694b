package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all levels",
	Long:  `Shows every level in unlock order with its lock state for the current player.`,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	levels := a.levels.List()
	if len(levels) == 0 {
		fmt.Println("No levels available.")
		return nil
	}

	unlocked := a.progress.Unlocked(cmd.Context(), a.user, a.diff)
	fmt.Printf("Levels for %s (%s):\n", a.user, a.diff)
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, l := range levels {
		if len(l.ID) > maxIDLen {
			maxIDLen = len(l.ID)
		}
	}

	// Print header
	fmt.Printf("  %-3s  %-*s  %-6s  %-7s  %s\n", "#", maxIDLen, "ID", "Mode", "State", "Title")
	fmt.Printf("  %-3s  %-*s  %-6s  %-7s  %s\n", "-", maxIDLen, "--", "----", "-----", "-----")

	for _, l := range levels {
		state := "open"
		if l.Ordinal > unlocked {
			state = "locked"
		}
		fmt.Printf("  %-3d  %-*s  %-6s  %-7s  %s\n", l.Ordinal, maxIDLen, l.ID, l.Mode, state, l.Title)
	}

	fmt.Println()
	fmt.Println("Run 'arcade play <id>' to play a level.")
	return nil
}
