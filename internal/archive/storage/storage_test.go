package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/dm/kbackup/internal/errors"
)

func TestNew(t *testing.T) {
	s, err := New(Config{Scheme: "https", Bucket: "backups", Host: "s3.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "http", s.Type())
	assert.Equal(t, "https://backups.s3.example.com/dashboard.tar.gz", s.Location("dashboard.tar.gz"))

	s, err = New(Config{Type: "s3", Bucket: "backups", Region: "eu-west-1", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "s3", s.Type())

	_, err = New(Config{Type: "ftp"})
	assert.Equal(t, kerrors.KindInvalidConfig, kerrors.KindOf(err))
}

func TestNewReturnsNilStoreOnError(t *testing.T) {
	s, err := New(Config{Type: "s3"})
	require.Error(t, err)
	assert.True(t, s == nil, "failed backend must not leak a typed nil store")

	s, err = New(Config{Type: "http", Scheme: "https"})
	require.Error(t, err)
	assert.True(t, s == nil)
}
