package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/surfdeck/surfdeck/deck"
	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/viewer"
)

func newPresentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "present [dir]",
		Short: "Present a surface deck in the terminal",
		Long: `Present loads the .srf surfaces from a directory and shows them
full-screen, with arrow keys, page up/down and home/end for navigation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := cfg.Surfaces
			if len(args) == 1 {
				dir = args[0]
			}

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New(errors.PhaseConfig, errors.KindInvalidInput,
					"present needs an interactive terminal")
			}

			d, err := deck.Load(dir, logger)
			if err != nil {
				return err
			}
			return viewer.Run(d)
		},
	}

	cmd.Flags().String("surfaces", "surfaces", "surface deck directory")
	return cmd
}
