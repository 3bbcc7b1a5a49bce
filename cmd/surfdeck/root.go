package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/surfdeck/surfdeck/engine"
)

var version = "0.1.0"

var (
	cfgFile string
	cfg     *Config
	logger  *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "surfdeck",
		Short: "Host and tooling for terminal-presentation WASM modules",
		Long: `surfdeck runs presentation WASM modules on a wazero host, converts
plain-text slides into binary surfaces, presents surface decks in the
terminal, and serves browser bundles with cross-origin isolation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err = newLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			engine.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./surfdeck.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	root.AddCommand(
		newRunCmd(),
		newPresentCmd(),
		newConvertCmd(),
		newServeCmd(),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.DisableStacktrace = true
	return zc.Build()
}
