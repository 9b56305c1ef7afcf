package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/dm/kbackup/internal/errors"
)

func TestFromHit_Dashboard(t *testing.T) {
	src := json.RawMessage(`{"title":"Ops","panelsJSON":"[{\"id\":\"v1\"},{\"id\":\"v2\"}]"}`)

	rec, err := FromHit(TypeDashboard, "d1", src)
	require.NoError(t, err)
	assert.Equal(t, TypeDashboard, rec.Type)
	assert.Equal(t, "d1", rec.Name)
	assert.Equal(t, []string{"v1", "v2"}, rec.VisualizationIDs)
	assert.JSONEq(t, string(src), string(rec.Source))
}

func TestFromHit_DashboardPanelOrderPreserved(t *testing.T) {
	src := json.RawMessage(`{"panelsJSON":"[{\"id\":\"z\"},{\"id\":\"a\"},{\"id\":\"m\"},{\"id\":\"a\"}]"}`)

	rec, err := FromHit(TypeDashboard, "d", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m", "a"}, rec.VisualizationIDs)
}

func TestFromHit_DashboardEmptyPanels(t *testing.T) {
	rec, err := FromHit(TypeDashboard, "d", json.RawMessage(`{"panelsJSON":"[]"}`))
	require.NoError(t, err)
	assert.Empty(t, rec.VisualizationIDs)
}

func TestFromHit_DashboardErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind kerrors.Kind
	}{
		{"missing panelsJSON", `{"title":"x"}`, kerrors.KindMissingField},
		{"panelsJSON not json", `{"panelsJSON":"[{oops"}`, kerrors.KindMalformedResponse},
		{"panelsJSON not array", `{"panelsJSON":"{\"id\":\"v1\"}"}`, kerrors.KindMalformedResponse},
		{"panel without id", `{"panelsJSON":"[{\"id\":\"v1\"},{\"col\":1}]"}`, kerrors.KindMissingField},
		{"source not json", `{not json`, kerrors.KindMalformedResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromHit(TypeDashboard, "d1", json.RawMessage(tc.src))
			require.Error(t, err)
			assert.Equal(t, tc.kind, kerrors.KindOf(err))
			assert.Contains(t, err.Error(), "name=d1")
		})
	}
}

func TestFromHit_Visualization(t *testing.T) {
	rec, err := FromHit(TypeVisualization, "v1", json.RawMessage(`{"title":"CPU","savedSearchId":"s1"}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.SearchID)
	assert.Nil(t, rec.VisualizationIDs)

	_, err = FromHit(TypeVisualization, "v2", json.RawMessage(`{"title":"CPU"}`))
	require.Error(t, err)
	assert.Equal(t, kerrors.KindMissingField, kerrors.KindOf(err))
}

func TestFromHit_Search(t *testing.T) {
	rec, err := FromHit(TypeSearch, "s1", json.RawMessage(`{"title":"errors"}`))
	require.NoError(t, err)
	assert.Empty(t, rec.SearchID)
	assert.Empty(t, rec.VisualizationIDs)
}

func TestTitle(t *testing.T) {
	title, err := Title(json.RawMessage(`{"title":"My dash"}`))
	require.NoError(t, err)
	assert.Equal(t, "My dash", title)

	_, err = Title(json.RawMessage(`{"description":"no title"}`))
	assert.True(t, kerrors.Is(err, kerrors.KindMissingField))
}

func TestParseObjectType(t *testing.T) {
	for _, s := range []string{"dashboard", "Visualization", " search "} {
		_, err := ParseObjectType(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseObjectType("index-pattern")
	assert.Error(t, err)
}
