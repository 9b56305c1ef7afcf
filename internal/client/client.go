package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/format"
	"github.com/dm/kbackup/internal/model"
)

// DashboardClient defines the interface for reading and writing saved
// objects in the dashboard index of an Elasticsearch cluster.
type DashboardClient interface {
	Search(ctx context.Context, t model.ObjectType) ([]Hit, error)
	Push(ctx context.Context, t model.ObjectType, name string, body []byte) (*PushResponse, error)
	BaseURL() string
}

// ClusterConfig identifies one cluster endpoint and the index holding the
// saved objects. It is read-only once passed to NewDefaultClient.
type ClusterConfig struct {
	Scheme             string
	Address            string
	Port               int
	Index              string
	Username           string
	Password           string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

// Validate checks the descriptor invariants.
func (c ClusterConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Address) == "":
		return kerrors.Newf(kerrors.KindInvalidConfig, "cluster config", "address is required")
	case c.Port < 1 || c.Port > 65535:
		return kerrors.Newf(kerrors.KindInvalidConfig, "cluster config", "port %d out of range 1-65535", c.Port)
	case strings.TrimSpace(c.Index) == "":
		return kerrors.Newf(kerrors.KindInvalidConfig, "cluster config", "index is required")
	case c.Scheme != "" && c.Scheme != "http" && c.Scheme != "https":
		return kerrors.Newf(kerrors.KindInvalidConfig, "cluster config", "unsupported scheme %q (must be http or https)", c.Scheme)
	}
	return nil
}

// BaseURL returns scheme://address:port, bracketing IPv6 literals. The
// scheme defaults to http.
func (c ClusterConfig) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// DefaultClient implements DashboardClient using the standard net/http package.
type DefaultClient struct {
	http   *http.Client
	config ClusterConfig
}

// NewDefaultClient validates cfg and constructs a DefaultClient. A zero
// RequestTimeout means no client-side timeout; callers bound requests with
// their context.
func NewDefaultClient(cfg ClusterConfig) (*DefaultClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
	}, nil
}

// BaseURL returns the configured base URL of the cluster.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL()
}

// Index returns the saved-object index name.
func (c *DefaultClient) Index() string {
	return c.config.Index
}

const maxResponseBytes = 64 * 1024 * 1024

// do sends one request to path (relative to BaseURL) and returns the status
// and body. Transport failures are RemoteUnavailable; the status is not
// interpreted here.
func (c *DefaultClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	url := c.config.BaseURL() + path

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return 0, nil, kerrors.New(kerrors.KindRemoteUnavailable, "create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Username != "" || c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, kerrors.New(kerrors.KindRemoteUnavailable, method+" "+path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return resp.StatusCode, nil, kerrors.New(kerrors.KindRemoteUnavailable, "read body", err)
	}
	if len(respBody) > maxResponseBytes {
		return resp.StatusCode, nil, kerrors.Newf(kerrors.KindMalformedResponse, method+" "+path,
			"response body exceeds %d MB limit", maxResponseBytes/(1024*1024))
	}
	return resp.StatusCode, respBody, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func truncate(b []byte, n int) string {
	return format.Truncate(string(b), n)
}

// statusError reports a non-2xx answer together with a prefix of its body.
func statusError(op string, status int, body []byte) error {
	return kerrors.Newf(kerrors.KindRemoteUnavailable, op, "unexpected status %d: %s", status, truncate(body, 200))
}

// String implements fmt.Stringer for log output.
func (r *PushResponse) String() string {
	return fmt.Sprintf("%d %s", r.StatusCode, truncate(r.Body, 200))
}
