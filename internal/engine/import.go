package engine

import (
	"context"
	"log/slog"

	"github.com/dm/kbackup/internal/client"
	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/layout"
	"github.com/dm/kbackup/internal/model"
)

// Importer pushes every object file of a backup directory to the cluster.
type Importer struct {
	client client.DashboardClient
	log    *slog.Logger

	// ContinueOnError records per-file failures and keeps going instead of
	// aborting the run on the first one. Transport failures always abort.
	ContinueOnError bool
}

// NewImporter returns an Importer that logs through log.
func NewImporter(c client.DashboardClient, log *slog.Logger) *Importer {
	return &Importer{client: c, log: log}
}

// PushWarning is a push the cluster answered with a non-2xx status.
type PushWarning struct {
	Type     model.ObjectType
	Name     string
	Path     string
	Response *client.PushResponse
}

// FileFailure is a file skipped because it could not be read or named.
type FileFailure struct {
	Type model.ObjectType
	Path string
	Err  error
}

// ImportResult summarises one import run.
type ImportResult struct {
	Pushed   int
	Warnings []PushWarning
	Failures []FileFailure
}

// Run scans root and pushes each file under the name found in its title
// field. A missing root fails before any request is made.
func (im *Importer) Run(ctx context.Context, root string) (*ImportResult, error) {
	files, err := layout.Scan(root)
	if err != nil {
		im.log.Error("scan failed", "dir", root, "err", err)
		return nil, err
	}
	im.log.Info("using folder", "dir", root, "files", len(files))

	res := &ImportResult{}
	var current model.ObjectType
	for _, f := range files {
		if f.Type != current {
			current = f.Type
			im.log.Info("pushing files for type", "type", f.Type)
		}

		body, name, err := im.load(f)
		if err != nil {
			im.log.Error("cannot load file", "type", f.Type, "path", f.Path, "err", err)
			if !im.ContinueOnError {
				return res, err
			}
			res.Failures = append(res.Failures, FileFailure{Type: f.Type, Path: f.Path, Err: err})
			continue
		}

		resp, err := im.client.Push(ctx, f.Type, name, body)
		if err != nil {
			im.log.Error("push failed", "type", f.Type, "name", name, "path", f.Path, "err", err)
			return res, err
		}
		res.Pushed++
		if !resp.OK() {
			im.log.Warn("push rejected", "type", f.Type, "name", name, "status", resp.StatusCode, "body", string(resp.Body))
			res.Warnings = append(res.Warnings, PushWarning{Type: f.Type, Name: name, Path: f.Path, Response: resp})
			continue
		}
		im.log.Info("pushed object", "type", f.Type, "name", name, "status", resp.StatusCode)
	}
	return res, nil
}

func (im *Importer) load(f layout.File) ([]byte, string, error) {
	body, err := layout.ReadFile(f)
	if err != nil {
		return nil, "", err
	}
	name, err := model.Title(body)
	if err != nil {
		return nil, "", annotatePath(err, f)
	}
	return body, name, nil
}

func annotatePath(err error, f layout.File) error {
	if ke, ok := err.(*kerrors.Error); ok {
		return ke.WithPath(f.Path).WithObject(string(f.Type), "")
	}
	return err
}
