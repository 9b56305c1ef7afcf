package archive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dm/kbackup/internal/archive/storage"
	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/format"
)

// ChunkSize is the buffer size used when streaming a download to disk.
const ChunkSize = 32 * 1024

// Transport moves a backup directory to and from an object store.
type Transport struct {
	store storage.ObjectStore
	log   *slog.Logger
}

// NewTransport returns a Transport over store.
func NewTransport(store storage.ObjectStore, log *slog.Logger) *Transport {
	return &Transport{store: store, log: log}
}

// Push packs dir into dir/dashboard.tar.gz and uploads it under ArchiveKey,
// replacing the previous archive. A leftover archive from an earlier run is
// removed before packing so it is not nested in the new one.
func (t *Transport) Push(ctx context.Context, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return kerrors.Newf(kerrors.KindDirectoryNotFound, "archive push", "folder does not exist").WithPath(dir)
	}

	dest := filepath.Join(dir, ArchiveKey)
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return kerrors.New(kerrors.KindLocalIO, "remove stale archive", err).WithPath(dest)
	}
	if err := Pack(dir, dest); err != nil {
		t.log.Error("pack failed", "dir", dir, "err", err)
		return err
	}

	f, err := os.Open(dest)
	if err != nil {
		return kerrors.New(kerrors.KindLocalIO, "open archive", err).WithPath(dest)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return kerrors.New(kerrors.KindLocalIO, "stat archive", err).WithPath(dest)
	}
	t.log.Info("made gzipped tarball", "path", dest, "size", format.FormatBytes(info.Size()))

	loc := t.store.Location(ArchiveKey)
	t.log.Info("pushing to object storage", "backend", t.store.Type(), "location", loc)
	if err := t.store.PutObject(ctx, ArchiveKey, f, info.Size()); err != nil {
		t.log.Error("upload failed", "location", loc, "err", err)
		return err
	}
	t.log.Info("archive uploaded", "location", loc)
	return nil
}

// Pull downloads the archive into a temporary file, extracts it into dir and
// removes the temporary file whatever the outcome.
func (t *Transport) Pull(ctx context.Context, dir string) error {
	loc := t.store.Location(ArchiveKey)
	t.log.Info("pulling archive from object storage", "backend", t.store.Type(), "location", loc)

	body, err := t.store.GetObject(ctx, ArchiveKey)
	if err != nil {
		t.log.Error("download failed", "location", loc, "err", err)
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "kbackup-*.tar.gz")
	if err != nil {
		return kerrors.New(kerrors.KindLocalIO, "create temp file", err)
	}
	defer func() {
		tmp.Close()
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			t.log.Warn("cannot remove temp archive", "path", tmp.Name(), "err", rerr)
		}
	}()

	n, err := t.download(body, tmp)
	if err != nil {
		return err
	}
	t.log.Info("archive downloaded", "size", format.FormatBytes(n), "tmp", tmp.Name())

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return kerrors.New(kerrors.KindLocalIO, "rewind temp file", err).WithPath(tmp.Name())
	}
	t.log.Info("opening tar file", "dir", dir)
	if err := Unpack(tmp, dir); err != nil {
		t.log.Error("extract failed", "dir", dir, "err", err)
		return err
	}
	return nil
}

// download copies src to dst in ChunkSize pieces.
func (t *Transport) download(src io.Reader, dst io.Writer) (int64, error) {
	buf := make([]byte, ChunkSize)
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return total, kerrors.New(kerrors.KindLocalIO, "write chunk", err)
			}
			total += int64(n)
			t.log.Debug("wrote chunk", "bytes", n, "total", total)
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, kerrors.New(kerrors.KindRemoteUnavailable, "read chunk", rerr)
		}
	}
}
