// arcade is an educational arcade of short mini-game levels played in the
// terminal, locally or over SSH.
//
// Usage:
//
//	arcade list                    - List levels and their lock state
//	arcade play <level>            - Play one level
//	arcade menu                    - Pick levels interactively
//	arcade sim <level>             - Run a level headless and print the result
//	arcade scores <level>          - Show high scores for a level
//	arcade progress show|sync      - Inspect or reconcile unlock progress
//	arcade levels validate|watch   - Check or hot-reload level descriptors
//	arcade serve                   - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default from config)
//	--seed <value>      - Set RNG seed for reproducible sessions
//	--db <path>         - Set database path (default: ~/.arcade/edu-arcade.db)
//	--user <name>       - Player name used for progress and scores
//	--config <path>     - Use a custom config YAML
//	--log-level <lvl>   - debug, info, warn or error
//	--offline           - Never contact the profile API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagUser       string
	flagDifficulty string
	flagConfig     string
	flagLogLevel   string
	flagLevelsDir  string
	flagOffline    bool
	flagMute       bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Edu Arcade - learn and play short levels in your terminal",
	Long: `Edu Arcade is a terminal arcade of short educational mini-games.
Levels unlock one after another on each difficulty track.

Available commands:
  list      - Show all levels
  play      - Play a specific level directly
  menu      - Interactive level picker
  sim       - Run a level headless
  scores    - View high scores
  progress  - Show or sync unlock progress
  levels    - Validate or watch level descriptors
  serve     - Start SSH server for remote play

Examples:
  arcade list
  arcade play fruit-catch
  arcade play 2 --difficulty hard
  arcade menu --user sam
  arcade serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "", "Path to progress and scores database (default from config)")
	pf.StringVar(&flagUser, "user", "", "Player name (default from config)")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty track: easy, medium, hard")
	pf.StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	pf.StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLevelsDir, "levels", "", "Directory with custom level descriptors")
	pf.BoolVar(&flagOffline, "offline", false, "Do not contact the profile API")
	pf.BoolVar(&flagMute, "mute", false, "Disable sound")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(serveCmd)
}
