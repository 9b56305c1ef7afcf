package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dm/kbackup/internal/archive"
	"github.com/dm/kbackup/internal/archive/storage"
)

// newArchivePushCmd creates the archive-push command
func newArchivePushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive-push <dir>",
		Short: "Upload a backup directory as " + archive.ArchiveKey,
		Long: `Pack <dir> into <dir>/` + archive.ArchiveKey + ` and upload it to the
configured archive store under the key ` + archive.ArchiveKey + `.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger().With("cmd", "archive-push")
			tr, store, err := a.transport(log)
			if err != nil {
				return err
			}
			if err := tr.Push(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(a.stdout, "uploaded %s to %s\n", args[0], store.Location(archive.ArchiveKey))
			return nil
		},
	}
}

// newArchivePullCmd creates the archive-pull command
func newArchivePullCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive-pull <dir>",
		Short: "Download " + archive.ArchiveKey + " and unpack it into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger().With("cmd", "archive-pull")
			tr, store, err := a.transport(log)
			if err != nil {
				return err
			}
			if err := tr.Pull(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(a.stdout, "unpacked %s into %s\n", store.Location(archive.ArchiveKey), args[0])
			return nil
		},
	}
}

func (a *app) transport(log *slog.Logger) (*archive.Transport, storage.ObjectStore, error) {
	cfg, err := a.readConfig(log)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.New(cfg.Archive)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("archive store", "type", store.Type(), "location", store.Location(archive.ArchiveKey))
	return archive.NewTransport(store, log), store, nil
}
