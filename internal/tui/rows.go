package tui

import (
	"path/filepath"
	"strings"

	"github.com/dm/kbackup/internal/layout"
	"github.com/dm/kbackup/internal/model"
)

// Row is one object file of a backup directory as shown by the browser.
type Row struct {
	Type  model.ObjectType
	ID    string
	Title string
	// Refs holds the visualization ids of a dashboard or the saved search
	// of a visualization.
	Refs []string
	Path string
	// Err is set when the file could not be read or adapted.
	Err string
}

// LoadRows scans root and describes every object file. Per-file problems
// are reported on the row instead of failing the load.
func LoadRows(root string) ([]Row, error) {
	files, err := layout.Scan(root)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(files))
	for _, f := range files {
		id := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
		row := Row{Type: f.Type, ID: id, Path: f.Path}

		src, err := layout.ReadFile(f)
		if err != nil {
			row.Err = err.Error()
			rows = append(rows, row)
			continue
		}
		if title, err := model.Title(src); err == nil {
			row.Title = title
		}
		rec, err := model.FromHit(f.Type, id, src)
		if err != nil {
			row.Err = err.Error()
		}
		switch {
		case len(rec.VisualizationIDs) > 0:
			row.Refs = rec.VisualizationIDs
		case rec.SearchID != "":
			row.Refs = []string{rec.SearchID}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// filterRows keeps rows of type t (all types when t is empty) whose id or
// title contains search, case-insensitively.
func filterRows(rows []Row, search string, t model.ObjectType) []Row {
	lower := strings.ToLower(search)
	out := rows[:0:0]
	for _, r := range rows {
		if t != "" && r.Type != t {
			continue
		}
		if lower != "" &&
			!strings.Contains(strings.ToLower(r.ID), lower) &&
			!strings.Contains(strings.ToLower(r.Title), lower) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// nextType cycles all → dashboard → visualization → search → all.
func nextType(t model.ObjectType) model.ObjectType {
	if t == "" {
		return model.AllTypes[0]
	}
	for i, at := range model.AllTypes {
		if at == t {
			if i+1 < len(model.AllTypes) {
				return model.AllTypes[i+1]
			}
			return ""
		}
	}
	return ""
}

// countByType tallies rows per type.
func countByType(rows []Row) map[model.ObjectType]int {
	counts := make(map[model.ObjectType]int, len(model.AllTypes))
	for _, r := range rows {
		counts[r.Type]++
	}
	return counts
}
