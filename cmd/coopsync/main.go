// Command coopsync runs the co-op relay and inspects wire traffic.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coopsync-dev/coopsync/internal/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		stop()
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "coopsync",
		Short: "Co-op multiplayer sync relay and protocol tools",
		Long: `coopsync relays the co-op wire protocol between a host and its clients.

The relay forwards every valid envelope to the other peers, measures
traffic and latency, and exports Prometheus metrics. The inspect and
catalog commands decode captured frames and list the message variants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to "+config.ConfigFileName)

	rootCmd.AddCommand(
		relayCmd(c),
		benchCmd(c),
		inspectCmd(c),
		catalogCmd(),
		configCmd(c),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and builds the process logger.
func (c *cli) load(logOut io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	slog.SetDefault(logger)
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
