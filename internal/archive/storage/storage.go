// Package storage defines the object-storage abstraction the archive
// transport uploads to and downloads from. Two backends exist: a plain HTTP
// bucket endpoint ("http") and the S3 API through the AWS SDK ("s3").
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dm/kbackup/internal/archive/storage/httpstore"
	"github.com/dm/kbackup/internal/archive/storage/s3store"
	kerrors "github.com/dm/kbackup/internal/errors"
)

// ObjectStore stores and retrieves whole objects by key.
type ObjectStore interface {
	// PutObject uploads size bytes read from data under key, replacing any
	// existing object.
	PutObject(ctx context.Context, key string, data io.Reader, size int64) error

	// GetObject streams the object stored under key. The caller closes it.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// Location describes where key lives, for log output.
	Location(key string) string

	// Type returns the backend identifier ("http" or "s3").
	Type() string
}

// Config selects and configures a backend.
type Config struct {
	Type    string        `yaml:"type"`
	Scheme  string        `yaml:"scheme"`
	Bucket  string        `yaml:"bucket"`
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`

	// S3 API settings, used when Type is "s3".
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// New creates a store for cfg.
func New(cfg Config) (ObjectStore, error) {
	switch cfg.Type {
	case "", "http":
		store, err := httpstore.New(httpstore.Config{
			Scheme:  cfg.Scheme,
			Bucket:  cfg.Bucket,
			Host:    cfg.Host,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := s3store.New(s3store.Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, kerrors.New(kerrors.KindInvalidConfig, "storage config", fmt.Errorf("unsupported storage type: %s", cfg.Type))
	}
}
