package engine

import (
	"context"
	"log/slog"

	"github.com/dm/kbackup/internal/client"
	"github.com/dm/kbackup/internal/layout"
	"github.com/dm/kbackup/internal/model"
)

// Exporter fetches every saved-object type from the cluster and writes them
// into a backup directory.
type Exporter struct {
	client client.DashboardClient
	log    *slog.Logger
	opts   layout.Options
}

// NewExporter returns an Exporter that logs through log.
func NewExporter(c client.DashboardClient, log *slog.Logger, opts layout.Options) *Exporter {
	return &Exporter{client: c, log: log, opts: opts}
}

// FetchAll fetches dashboards, visualizations and searches in that order,
// one request each. The first failure aborts the fetch.
func (e *Exporter) FetchAll(ctx context.Context) (map[model.ObjectType][]model.Record, error) {
	all := make(map[model.ObjectType][]model.Record, len(model.AllTypes))
	for _, t := range model.AllTypes {
		e.log.Debug("fetching objects", "type", t, "cluster", e.client.BaseURL())
		recs, err := client.Fetch(ctx, e.client, t)
		if err != nil {
			e.log.Error("fetch failed", "type", t, "err", err)
			return nil, err
		}
		e.log.Info("fetched objects", "type", t, "count", len(recs))
		all[t] = recs
	}
	return all, nil
}

// Run fetches everything and writes it below root.
func (e *Exporter) Run(ctx context.Context, root string) (layout.Summary, error) {
	all, err := e.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return layout.Export(e.log, root, all, e.opts)
}
