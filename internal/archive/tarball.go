// Package archive packs a backup directory into a gzip tarball, moves it to
// and from object storage, and unpacks it again.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/dm/kbackup/internal/errors"
)

// ArchiveKey is the fixed object key and local file name of the archive.
const ArchiveKey = "dashboard.tar.gz"

// Pack writes a gzip tarball of the tree rooted at dir to dest. Entry names
// are relative to dir. dest itself is never added, even when it lives inside
// dir.
func Pack(dir, dest string) (err error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return kerrors.New(kerrors.KindLocalIO, "pack", err).WithPath(dest)
	}

	file, err := os.Create(dest)
	if err != nil {
		return kerrors.New(kerrors.KindLocalIO, "create archive", err).WithPath(dest)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = kerrors.New(kerrors.KindLocalIO, "close archive", cerr).WithPath(dest)
		}
	}()

	gzipWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzipWriter)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if abs, aerr := filepath.Abs(path); aerr == nil && abs == absDest {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return addEntry(tarWriter, path, filepath.ToSlash(rel), info)
	})
	if walkErr != nil {
		return kerrors.New(kerrors.KindLocalIO, "pack", walkErr).WithPath(dir)
	}

	if err := tarWriter.Close(); err != nil {
		return kerrors.New(kerrors.KindLocalIO, "close tar", err).WithPath(dest)
	}
	if err := gzipWriter.Close(); err != nil {
		return kerrors.New(kerrors.KindLocalIO, "close gzip", err).WithPath(dest)
	}
	return nil
}

func addEntry(tw *tar.Writer, path, name string, info fs.FileInfo) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}

// maxEntrySize bounds a single extracted file.
const maxEntrySize = 1 << 30

// Unpack extracts a gzip tarball read from r into dir, creating dir if
// needed. Entries that would land outside dir are rejected.
func Unpack(r io.Reader, dir string) error {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return kerrors.New(kerrors.KindMalformedResponse, "open archive", err)
	}
	defer gzipReader.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return kerrors.New(kerrors.KindLocalIO, "create output dir", err).WithPath(dir)
	}

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return kerrors.New(kerrors.KindMalformedResponse, "read tar", err)
		}

		target, err := entryPath(dir, header.Name)
		if err != nil {
			return kerrors.New(kerrors.KindMalformedResponse, "read tar", err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return kerrors.New(kerrors.KindLocalIO, "create dir", err).WithPath(target)
			}
		case tar.TypeReg:
			if err := writeEntry(tarReader, target, header); err != nil {
				return kerrors.New(kerrors.KindLocalIO, "extract file", err).WithPath(target)
			}
		}
	}
}

func entryPath(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes the output directory", name)
	}
	return filepath.Join(dir, clean), nil
}

func writeEntry(r io.Reader, target string, header *tar.Header) error {
	if header.Size > maxEntrySize {
		return fmt.Errorf("entry %q is larger than %d bytes", header.Name, int64(maxEntrySize))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	mode := os.FileMode(header.Mode).Perm()
	if mode == 0 {
		mode = 0o644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, io.LimitReader(r, header.Size)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
