package cli

import "github.com/spf13/cobra"

// Version is stamped at build time with -ldflags "-X".
var Version = "0.1.0-dev"

// newVersionCmd creates the version command
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show kbackup version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printf(a.stdout, "kbackup version %s\n", Version)
		},
	}
}
