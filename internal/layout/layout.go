// Package layout maps saved objects to and from the on-disk backup tree:
// <root>/<type>/<name>.json, one file per object holding its raw source.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/pretty"

	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/model"
)

// Options controls how files are written.
type Options struct {
	// Pretty indents each file keeping key order; otherwise the source is
	// written compacted.
	Pretty bool
}

// Summary counts the files written per type.
type Summary map[model.ObjectType]int

// Total returns the number of files written.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// Export writes records into root. A type directory is created only when at
// least one record of that type is present; a record whose name matches an
// existing file overwrites it.
func Export(log *slog.Logger, root string, records map[model.ObjectType][]model.Record, opts Options) (Summary, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, kerrors.New(kerrors.KindLocalIO, "create root", err).WithPath(root)
	}
	log.Info("saving dashboard content", "dir", root)

	summary := Summary{}
	for _, t := range model.AllTypes {
		recs := records[t]
		if len(recs) == 0 {
			continue
		}

		dir := filepath.Join(root, string(t))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return summary, kerrors.New(kerrors.KindLocalIO, "create type dir", err).WithPath(dir)
		}

		log.Info("saving files for type", "type", t, "count", len(recs))
		for _, rec := range recs {
			if err := checkName(rec.Name); err != nil {
				log.Error("unsafe object id", "type", t, "name", rec.Name)
				return summary, kerrors.New(kerrors.KindMalformedResponse, "export", err).
					WithObject(string(t), rec.Name)
			}
			path := filepath.Join(dir, rec.Name+".json")
			data, err := encode(rec.Source, opts)
			if err != nil {
				return summary, kerrors.New(kerrors.KindMalformedResponse, "encode", err).
					WithObject(string(t), rec.Name)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				ke := kerrors.New(kerrors.KindLocalIO, "write", err).WithObject(string(t), rec.Name).WithPath(path)
				log.Error("write failed", "type", t, "name", rec.Name, "path", path, "err", err)
				return summary, ke
			}
			summary[t]++
			log.Info("saved object", "type", t, "name", rec.Name)
		}
	}
	return summary, nil
}

// checkName rejects ids that cannot be a single file name inside a type
// directory.
func checkName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return fmt.Errorf("object id %q is not a usable file name", name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("object id %q contains a path separator", name)
	}
	return nil
}

func encode(src json.RawMessage, opts Options) ([]byte, error) {
	if !opts.Pretty {
		var buf bytes.Buffer
		if err := json.Compact(&buf, src); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if !json.Valid(src) {
		return nil, errors.New("source is not valid JSON")
	}
	return pretty.Pretty(src), nil
}

// File is one object file found by Scan.
type File struct {
	Type model.ObjectType
	Path string
}

// Scan lists the regular files (symlinks followed) directly inside each type directory of root,
// in push order and sorted by name within a type. Missing type directories
// are skipped; a missing root is DirectoryNotFound.
func Scan(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kerrors.Newf(kerrors.KindDirectoryNotFound, "scan", "folder does not exist").WithPath(root)
		}
		return nil, kerrors.New(kerrors.KindLocalIO, "scan", err).WithPath(root)
	}
	if !info.IsDir() {
		return nil, kerrors.Newf(kerrors.KindDirectoryNotFound, "scan", "not a directory").WithPath(root)
	}

	var files []File
	for _, t := range model.PushOrder {
		dir := filepath.Join(root, string(t))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, kerrors.New(kerrors.KindLocalIO, "list type dir", err).WithPath(dir)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if isRegular(dir, e) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			files = append(files, File{Type: t, Path: filepath.Join(dir, n)})
		}
	}
	return files, nil
}

// isRegular reports whether e is a regular file, following symlinks.
func isRegular(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// ReadFile loads and validates one object file.
func ReadFile(f File) (json.RawMessage, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, kerrors.New(kerrors.KindLocalIO, "read", err).WithPath(f.Path)
	}
	if !json.Valid(data) {
		return nil, kerrors.Newf(kerrors.KindMalformedResponse, "read", "file is not valid JSON").WithPath(f.Path)
	}
	return json.RawMessage(bytes.TrimSpace(data)), nil
}
