package cli

import (
	"github.com/spf13/cobra"

	"github.com/dm/kbackup/internal/client"
	"github.com/dm/kbackup/internal/engine"
	"github.com/dm/kbackup/internal/format"
	"github.com/dm/kbackup/internal/layout"
	"github.com/dm/kbackup/internal/model"
)

// newExportCmd creates the export command
func newExportCmd(a *app) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Fetch all saved objects into a directory tree",
		Long: `Fetch every dashboard, visualization and saved search from the
saved-object index and write each one to <dir>/<type>/<id>.json.
Existing files are overwritten; nothing is deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger().With("cmd", "export")
			cfg, err := a.loadConfig(log)
			if err != nil {
				return err
			}
			c, err := client.NewDefaultClient(cfg.Cluster.Client())
			if err != nil {
				return err
			}

			opts := layout.Options{Pretty: pretty || cfg.Export.Pretty}
			sum, err := engine.NewExporter(c, log, opts).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printf(a.stdout, "exported %s to %s (%s, %s, %s)\n",
				format.FormatCount(sum.Total(), "object", "objects"), args[0],
				format.FormatCount(sum[model.TypeDashboard], "dashboard", "dashboards"),
				format.FormatCount(sum[model.TypeVisualization], "visualization", "visualizations"),
				format.FormatCount(sum[model.TypeSearch], "search", "searches"),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent exported JSON")
	return cmd
}
