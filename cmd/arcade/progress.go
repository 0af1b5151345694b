package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/profile"
	"github.com/vovakirdan/edu-arcade/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or sync unlock progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print unlocked levels per difficulty",
	RunE:  runProgressShow,
}

var progressSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile progress with the profile service",
	Long: `Fetch the remote profile, merge it with local progress, push any
difficulty where the local copy is ahead, then deliver queued reports.`,
	RunE: runProgressSync,
}

func init() {
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressSyncCmd)
}

func runProgressShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	total := a.levels.Len()
	snap := a.progress.Snapshot(ctx, a.user)

	fmt.Printf("Progress for %s\n\n", a.user)
	for _, d := range config.Difficulties {
		unlocked := min(snap[d], total)
		fmt.Printf("  %-7s %d/%d unlocked\n", d, unlocked, total)
	}

	if a.store == nil {
		return nil
	}
	items, err := a.store.Collectibles(ctx, a.user)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Collectibles: %d\n", len(items))
	for _, id := range items {
		fmt.Printf("  * %s\n", id)
	}

	pending, err := a.store.CountPending(ctx)
	if err != nil {
		return err
	}
	if pending > 0 {
		fmt.Printf("\n%d report(s) waiting to be delivered\n", pending)
	}
	return nil
}

func runProgressSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), appOptions{reporter: true, noResync: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, offline := a.api.(profile.Offline); offline {
		return errors.New("profile service is not configured (set profile.base_url or drop --offline)")
	}

	ctx, cancel := a.withTimeout(cmd.Context())
	defer cancel()

	merged, err := progress.NewReconciler(a.progress, a.api, a.logger.WithPrefix("sync")).Sync(ctx, a.user)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	for _, d := range config.Difficulties {
		fmt.Printf("  %-7s %d unlocked\n", d, merged[d])
	}

	res, err := a.reporter.Resync(ctx)
	if res.Sent+res.Failed+res.Dropped > 0 {
		fmt.Printf("\nReports: %d sent, %d failed, %d dropped\n", res.Sent, res.Failed, res.Dropped)
	}
	if err != nil {
		return fmt.Errorf("report delivery failed: %w", err)
	}
	return nil
}
