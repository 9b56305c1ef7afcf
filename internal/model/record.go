package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	kerrors "github.com/dm/kbackup/internal/errors"
)

// ObjectType is the saved-object type tag used both as the remote mapping
// type and as the local subdirectory name.
type ObjectType string

const (
	TypeDashboard     ObjectType = "dashboard"
	TypeVisualization ObjectType = "visualization"
	TypeSearch        ObjectType = "search"
)

// AllTypes is the order in which types are fetched and exported.
var AllTypes = []ObjectType{TypeDashboard, TypeVisualization, TypeSearch}

// PushOrder is the order in which types are imported. Searches go first so
// that visualizations and dashboards referencing them land afterwards.
var PushOrder = []ObjectType{TypeSearch, TypeVisualization, TypeDashboard}

// ParseObjectType validates a type tag.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeDashboard, TypeVisualization, TypeSearch:
		return t, nil
	}
	return "", fmt.Errorf("unknown object type %q (want dashboard, visualization or search)", s)
}

// Record is one saved object plus the references derived from its source.
type Record struct {
	Type   ObjectType
	Name   string
	Source json.RawMessage

	// VisualizationIDs is set for dashboards, in panel order.
	VisualizationIDs []string
	// SearchID is set for visualizations.
	SearchID string
}

// FromHit adapts one search hit into a Record, deriving the per-type
// references. Dashboards must carry a parseable panelsJSON, visualizations a
// savedSearchId.
func FromHit(t ObjectType, id string, source json.RawMessage) (Record, error) {
	rec := Record{Type: t, Name: id, Source: source}
	if !gjson.ValidBytes(source) {
		return rec, kerrors.Newf(kerrors.KindMalformedResponse, "adapt", "_source is not valid JSON").
			WithObject(string(t), id)
	}

	switch t {
	case TypeDashboard:
		ids, err := ParseVisualizationIDs(source)
		if err != nil {
			return rec, annotate(err, t, id)
		}
		rec.VisualizationIDs = ids
	case TypeVisualization:
		res := gjson.GetBytes(source, "savedSearchId")
		if !res.Exists() {
			return rec, kerrors.Newf(kerrors.KindMissingField, "adapt", "savedSearchId is absent").
				WithObject(string(t), id)
		}
		rec.SearchID = res.String()
	case TypeSearch:
	default:
		return rec, kerrors.Newf(kerrors.KindMalformedResponse, "adapt", "unsupported type %q", t).
			WithObject(string(t), id)
	}
	return rec, nil
}

// ParseVisualizationIDs reads the JSON-encoded panelsJSON string of a
// dashboard source and returns each panel's id in array order.
func ParseVisualizationIDs(source json.RawMessage) ([]string, error) {
	raw := gjson.GetBytes(source, "panelsJSON")
	if !raw.Exists() {
		return nil, kerrors.Newf(kerrors.KindMissingField, "parse panels", "panelsJSON is absent")
	}

	panels := raw.String()
	if !gjson.Valid(panels) {
		return nil, kerrors.Newf(kerrors.KindMalformedResponse, "parse panels", "panelsJSON is not valid JSON")
	}
	parsed := gjson.Parse(panels)
	if !parsed.IsArray() {
		return nil, kerrors.Newf(kerrors.KindMalformedResponse, "parse panels", "panelsJSON is not an array")
	}

	ids := make([]string, 0)
	for i, panel := range parsed.Array() {
		pid := panel.Get("id")
		if !pid.Exists() {
			return nil, kerrors.Newf(kerrors.KindMissingField, "parse panels", "panel %d has no id", i)
		}
		ids = append(ids, pid.String())
	}
	return ids, nil
}

// Title returns the title field of a saved-object source, which is used as
// the object name when pushing files back to the cluster.
func Title(source json.RawMessage) (string, error) {
	res := gjson.GetBytes(source, "title")
	if !res.Exists() {
		return "", kerrors.Newf(kerrors.KindMissingField, "read title", "title is absent")
	}
	return res.String(), nil
}

func annotate(err error, t ObjectType, id string) error {
	if ke, ok := err.(*kerrors.Error); ok {
		return ke.WithObject(string(t), id)
	}
	return err
}
