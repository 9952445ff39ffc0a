// Package cli is the shared entry point of the modkit tools
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1siamBot/modkit/engine/config"
	"github.com/1siamBot/modkit/engine/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RunFunc is a tool body
type RunFunc func(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error

// NewToolCommand builds a command without flags or arguments. Configuration
// comes from modkit.toml and MODKIT_* variables.
func NewToolCommand(use, short, long string, run RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, log.WithField("tool", use))
		},
	}
}

// Execute runs cmd and exits non-zero if it fails
func Execute(cmd *cobra.Command) {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
