package layout

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(t model.ObjectType, name, src string) model.Record {
	return model.Record{Type: t, Name: name, Source: json.RawMessage(src)}
}

func TestExport_WritesFilesPerType(t *testing.T) {
	root := filepath.Join(t.TempDir(), "backup")
	records := map[model.ObjectType][]model.Record{
		model.TypeDashboard: {rec(model.TypeDashboard, "d1", `{"panelsJSON":"[{\"id\":\"v1\"},{\"id\":\"v2\"}]"}`)},
		model.TypeSearch:    {rec(model.TypeSearch, "s1", `{"title": "errors"}`), rec(model.TypeSearch, "s2", `{"title":"warn"}`)},
	}

	sum, err := Export(discardLogger(), root, records, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum[model.TypeDashboard])
	assert.Equal(t, 2, sum[model.TypeSearch])
	assert.Equal(t, 3, sum.Total())

	data, err := os.ReadFile(filepath.Join(root, "dashboard", "d1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"panelsJSON":"[{\"id\":\"v1\"},{\"id\":\"v2\"}]"}`, string(data))

	data, err = os.ReadFile(filepath.Join(root, "search", "s1.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"title":"errors"}`, string(data), "compact output by default")
}

func TestExport_EmptyTypeCreatesNoDirectory(t *testing.T) {
	root := t.TempDir()
	records := map[model.ObjectType][]model.Record{
		model.TypeDashboard:     {rec(model.TypeDashboard, "d1", `{"panelsJSON":"[]"}`)},
		model.TypeVisualization: {},
	}

	_, err := Export(discardLogger(), root, records, Options{})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(root, "dashboard"))
	assert.NoDirExists(t, filepath.Join(root, "visualization"))
	assert.NoDirExists(t, filepath.Join(root, "search"))
}

func TestExport_SameNameOverwrites(t *testing.T) {
	root := t.TempDir()
	records := map[model.ObjectType][]model.Record{
		model.TypeSearch: {rec(model.TypeSearch, "s1", `{"v":1}`), rec(model.TypeSearch, "s1", `{"v":2}`)},
	}

	_, err := Export(discardLogger(), root, records, Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "search", "s1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestExport_RejectsUnsafeNames(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"parent traversal", "../../escaped"},
		{"nested path", "a/b"},
		{"backslash", `a\b`},
		{"dot", "."},
		{"dot dot", ".."},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base := t.TempDir()
			root := filepath.Join(base, "backup")
			records := map[model.ObjectType][]model.Record{
				model.TypeSearch: {rec(model.TypeSearch, tc.id, `{"title":"x"}`)},
			}

			_, err := Export(discardLogger(), root, records, Options{})
			require.Error(t, err)
			assert.Equal(t, kerrors.KindMalformedResponse, kerrors.KindOf(err))
			var ke *kerrors.Error
			require.ErrorAs(t, err, &ke)
			assert.Equal(t, "search", ke.Type)
			assert.Equal(t, tc.id, ke.Name)

			assert.NoFileExists(t, filepath.Join(base, "escaped.json"))
			entries, err := os.ReadDir(filepath.Join(root, "search"))
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestExport_Pretty(t *testing.T) {
	root := t.TempDir()
	records := map[model.ObjectType][]model.Record{
		model.TypeSearch: {rec(model.TypeSearch, "s1", `{"title":"x"}`)},
	}

	_, err := Export(discardLogger(), root, records, Options{Pretty: true})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "search", "s1.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"x\"\n}\n", string(data))
}

func TestExport_RootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

	_, err := Export(discardLogger(), root, map[model.ObjectType][]model.Record{}, Options{})
	require.Error(t, err)
	assert.Equal(t, kerrors.KindLocalIO, kerrors.KindOf(err))
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, kerrors.KindDirectoryNotFound, kerrors.KindOf(err))
}

func TestScan_PushOrderAndNonRecursive(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{
		"dashboard/b.json",
		"dashboard/a.json",
		"search/s.json",
		"search/nested/deep.json",
		"visualization/v.json",
	} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(`{}`), 0o644))
	}

	files, err := Scan(root)
	require.NoError(t, err)

	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got = append(got, string(f.Type)+":"+rel)
	}
	assert.Equal(t, []string{
		"search:" + filepath.Join("search", "s.json"),
		"visualization:" + filepath.Join("visualization", "v.json"),
		"dashboard:" + filepath.Join("dashboard", "a.json"),
		"dashboard:" + filepath.Join("dashboard", "b.json"),
	}, got)
}

func TestScan_FollowsSymlinkedFiles(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "s.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"title":"linked"}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "search"), 0o755))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "search", "linked.json")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "search", "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "gone.json"), filepath.Join(root, "search", "dangling.json")))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "search", "linked.json"), files[0].Path)

	src, err := ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, `{"title":"linked"}`, string(src))
}

func TestScan_NoTypeDirs(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte("{\"title\":\"x\"}\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"title":`), 0o644))

	src, err := ReadFile(File{Type: model.TypeSearch, Path: good})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, string(src))

	_, err = ReadFile(File{Type: model.TypeSearch, Path: bad})
	assert.Equal(t, kerrors.KindMalformedResponse, kerrors.KindOf(err))

	_, err = ReadFile(File{Type: model.TypeSearch, Path: filepath.Join(dir, "missing.json")})
	assert.Equal(t, kerrors.KindLocalIO, kerrors.KindOf(err))
}
