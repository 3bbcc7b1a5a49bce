package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/surfdeck/surfdeck/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a browser bundle with cross-origin isolation",
		Long: `Serve exposes the bundle directory over HTTP with the COOP/COEP headers
shared-memory WASM needs. With --watch, changed .slide files are
recompiled into the bundle's surfaces directory on the fly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:      cfg.Addr,
				Dir:       cfg.Dir,
				SlidesDir: cfg.Slides,
				Watch:     cfg.Watch,
				Logger:    logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", server.DefaultAddr, "listen address")
	cmd.Flags().String("dir", "www", "bundle directory to serve")
	cmd.Flags().Bool("watch", false, "recompile slides on change")
	cmd.Flags().String("slides", "slides", "slide source directory to watch")
	return cmd
}
