package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/surface"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert .slide text files into binary surfaces",
		Long: `Convert reads the .slide files from the slides directory and writes a
.srf surface per slide into the surfaces directory. Slides whose surface
already exists are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := os.MkdirAll(cfg.Surfaces, 0o755); err != nil {
				return errors.Wrap(errors.PhaseConvert, errors.KindIO, err, "create surfaces directory")
			}

			written, err := surface.ConvertDir(cfg.Slides, cfg.Surfaces, cfg.Width, cfg.Height, logger)
			if err != nil {
				return err
			}
			logger.Info("conversion finished",
				zap.Int("written", len(written)),
				zap.String("out", cfg.Surfaces))
			return nil
		},
	}

	cmd.Flags().String("slides", "slides", "slide source directory")
	cmd.Flags().String("surfaces", "surfaces", "surface output directory")
	cmd.Flags().Int("width", surface.DefaultWidth, "surface width in cells")
	cmd.Flags().Int("height", surface.DefaultHeight, "surface height in cells")
	return cmd
}
