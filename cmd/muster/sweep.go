package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grimfell/muster/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the invalidation sweeper",
		Long:  "Drains queued reference-data changes, marking dependent caches dirty. Runs on a schedule unless --once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if once {
				n, err := sweep.RunOnce(gormDB)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Swept %d reference change(s)\n", n)
				return nil
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
				cancel()
			}()

			return sweep.Run(ctx, gormDB, cfg.Sweep.Schedule, out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().BoolVar(&once, "once", false, "drain the queue once and exit")
	return cmd
}
