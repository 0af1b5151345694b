package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/edu-arcade/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServeWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server",
	Long: `Start an SSH server that allows users to connect and play levels.

Each SSH connection gets its own session with the level picker.
Progress and scores are kept per SSH user name in the server database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses server.host_key_path, or auto-generates ~/.arcade/host_key

Examples:
  arcade serve                           # Listen on the configured port (2222)
  arcade serve --ssh :23234              # Listen on port 23234
  arcade serve --host-key ./my_host_key  # Use specific host key
  arcade serve --watch                   # Pick up edited levels without restart

Users can connect with:
  ssh localhost -p 2222`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "Reload level descriptors when they change")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{reporter: true})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := tui.SSHConfigFrom(a.cfg.Server, a.diff)
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute

	server, err := tui.NewSSHServer(cfg, a.services(), a.logger.WithPrefix("ssh"))
	if err != nil {
		return err
	}
	if flagServeWatch {
		a.watchLevels(ctx)
	}

	fmt.Printf("Starting arcade SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(ctx)
}
