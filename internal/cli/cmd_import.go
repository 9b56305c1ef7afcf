package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dm/kbackup/internal/client"
	"github.com/dm/kbackup/internal/engine"
	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/format"
)

// newImportCmd creates the import command
func newImportCmd(a *app) *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Push a directory tree of saved objects to the cluster",
		Long: `Push every <dir>/<type>/*.json file to the saved-object index,
searches first, then visualizations, then dashboards. Each object is
stored under the name found in its title field.

A file that cannot be read stops the import unless --keep-going is set,
in which case it is reported at the end. Objects the cluster rejects are
logged as warnings and do not stop the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger().With("cmd", "import")
			cfg, err := a.loadConfig(log)
			if err != nil {
				return err
			}
			c, err := client.NewDefaultClient(cfg.Cluster.Client())
			if err != nil {
				return err
			}

			im := engine.NewImporter(c, log)
			im.ContinueOnError = keepGoing || cfg.Import.KeepGoing
			res, err := im.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printf(a.stdout, "pushed %s from %s", format.FormatCount(res.Pushed, "object", "objects"), args[0])
			if n := len(res.Warnings); n > 0 {
				printf(a.stdout, ", %s", format.FormatCount(n, "rejection", "rejections"))
			}
			printf(a.stdout, "\n")
			for _, f := range res.Failures {
				printf(a.stdout, "  failed %s %s: %v\n", f.Type, f.Path, f.Err)
			}
			if n := len(res.Failures); n > 0 {
				first := res.Failures[0].Err
				return kerrors.New(kerrors.KindOf(first), "import",
					fmt.Errorf("%s could not be loaded: %w", format.FormatCount(n, "file", "files"), first))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "report unreadable files at the end instead of stopping")
	return cmd
}
