package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/boot"
	"github.com/surfdeck/surfdeck/engine"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot a presentation WASM module",
		Long: `Run probes shared-memory support, loads the module, and invokes its
entry point. The threaded profile additionally provisions shared memory
and starts the worker pool before the entry point runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := profileFromName(cfg.Profile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := boot.Options{
				ModulePath: cfg.Module,
				Workers:    cfg.Workers,
				Logger:     logger,
			}
			if profile == boot.ProfileThreaded {
				opts.Memory = &engine.MemoryConfig{
					InitialPages: uint32(cfg.InitialPages),
					MaximumPages: uint32(cfg.MaximumPages),
					Shared:       true,
				}
			}

			loader := boot.New(profile, opts)
			defer loader.Close(ctx)

			res, err := loader.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("boot finished",
				zap.String("profile", profile.String()),
				zap.Bool("shared_memory", res.SharedMemory),
				zap.Bool("loaded", res.Loaded),
				zap.Bool("pool_started", res.PoolStarted),
				zap.Bool("entry_invoked", res.EntryInvoked))
			return nil
		},
	}

	cmd.Flags().String("module", boot.DefaultModulePath, "path to the presentation wasm module")
	cmd.Flags().String("profile", "simple", "bootstrap profile (simple|logged|threaded)")
	cmd.Flags().Int("workers", 0, "worker pool size, 0 for CPU count")
	cmd.Flags().Int("initial-pages", int(boot.DefaultInitialPages), "initial shared memory pages (64KB each)")
	cmd.Flags().Int("maximum-pages", int(boot.DefaultMaximumPages), "maximum shared memory pages")
	return cmd
}
