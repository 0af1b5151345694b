package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/edu-arcade/internal/platform/tui"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show high scores for a level",
	Long: `Display the top scores and play statistics for the specified level.
Without a level the interactive scoreboard opens.

Examples:
  arcade scores
  arcade scores fruit-catch
  arcade scores 2 --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
}

func runScores(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return errors.New("scores database is not available")
	}
	if len(args) == 0 {
		rt := a.runtime()
		_, err := tui.RunScoreboard(a.levels, a.store, rt.ScreenW, rt.ScreenH)
		return err
	}

	lvl, err := a.lookup(args[0])
	if err != nil {
		return fmt.Errorf("%w\nRun 'arcade list' to see available levels", err)
	}

	scores, err := a.store.TopScores(lvl.ID(), flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n", lvl.Title())
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'arcade play %s' to set the first high score!\n", lvl.ID())
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-5s  %-12s  %-6s  %s\n", "Rank", "Points", "Stars", "Player", "Track", "Date")
	fmt.Printf("  %-4s  %-8s  %-5s  %-12s  %-6s  %s\n", "----", "------", "-----", "------", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-8d  %-5d  %-12s  %-6s  %s\n",
			i+1, entry.Points, entry.Stars, entry.UserID, entry.Difficulty,
			entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := a.store.GetLevelStats(lvl.ID())
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Plays: %d  Wins: %d  Best: %d  Avg: %.1f", stats.Plays, stats.Wins, stats.HighScore, stats.AvgPoints)
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("  Last played: %s", stats.LastPlayed.Local().Format(time.DateTime))
	}
	fmt.Println()
	return nil
}
