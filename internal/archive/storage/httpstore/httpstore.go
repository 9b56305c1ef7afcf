// Package httpstore talks to a bucket through plain HTTP PUT and GET on
// {scheme}://{bucket}.{host}/{key}, for buckets that accept unsigned writes.
package httpstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	kerrors "github.com/dm/kbackup/internal/errors"
)

// Config is the bucket descriptor.
type Config struct {
	Scheme  string
	Bucket  string
	Host    string
	Timeout time.Duration
}

// Validate checks the descriptor invariants.
func (c Config) Validate() error {
	switch {
	case c.Scheme != "http" && c.Scheme != "https":
		return kerrors.Newf(kerrors.KindInvalidConfig, "archive config", "unsupported scheme %q (must be http or https)", c.Scheme)
	case strings.TrimSpace(c.Bucket) == "":
		return kerrors.Newf(kerrors.KindInvalidConfig, "archive config", "bucket is required")
	case strings.TrimSpace(c.Host) == "":
		return kerrors.Newf(kerrors.KindInvalidConfig, "archive config", "host is required")
	}
	return nil
}

// Store implements storage.ObjectStore over net/http.
type Store struct {
	http *http.Client
	cfg  Config
}

// New validates cfg and returns a Store.
func New(cfg Config) (*Store, error) {
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{http: &http.Client{Timeout: cfg.Timeout}, cfg: cfg}, nil
}

// URL returns the object URL for key.
func (s *Store) URL(key string) string {
	return s.cfg.Scheme + "://" + s.cfg.Bucket + "." + s.cfg.Host + "/" + url.PathEscape(key)
}

// PutObject uploads the object body.
func (s *Store) PutObject(ctx context.Context, key string, data io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.URL(key), data)
	if err != nil {
		return kerrors.New(kerrors.KindRemoteUnavailable, "create request", err)
	}
	if size > 0 {
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", "application/gzip")

	resp, err := s.http.Do(req)
	if err != nil {
		return kerrors.New(kerrors.KindRemoteUnavailable, "put object", err).WithPath(key)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return kerrors.Newf(kerrors.KindRemoteUnavailable, "put object", "unexpected status %d: %s", resp.StatusCode, body).WithPath(key)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// GetObject streams the object body. Anything but 200 is an error; the
// body of a failed answer is never handed to the caller.
func (s *Store) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(key), nil)
	if err != nil {
		return nil, kerrors.New(kerrors.KindRemoteUnavailable, "create request", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, kerrors.New(kerrors.KindRemoteUnavailable, "get object", err).WithPath(key)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, kerrors.New(kerrors.KindRemoteUnavailable, "get object",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)).WithPath(key)
	}
	return resp.Body, nil
}

// Location returns the object URL.
func (s *Store) Location(key string) string {
	return s.URL(key)
}

// Type returns "http".
func (s *Store) Type() string {
	return "http"
}
