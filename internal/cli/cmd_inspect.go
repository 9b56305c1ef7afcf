package cli

import (
	"github.com/spf13/cobra"

	"github.com/dm/kbackup/internal/tui"
)

// newInspectCmd creates the inspect command
func newInspectCmd(a *app) *cobra.Command {
	var (
		plain bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Browse the saved objects of a backup directory",
		Long: `Open an interactive table of every object file in <dir> with its
title and references. With --plain the table is printed once instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				return tui.WritePlain(a.stdout, args[0], width)
			}
			return tui.Run(args[0])
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the table and exit")
	cmd.Flags().IntVar(&width, "width", 0, "table width for --plain (0 = natural)")
	return cmd
}
