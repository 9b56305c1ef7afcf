package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	kerrors "github.com/dm/kbackup/internal/errors"
	"github.com/dm/kbackup/internal/model"
)

func searchPath(index string, t model.ObjectType) string {
	return "/" + url.PathEscape(index) + "/" + url.PathEscape(string(t)) + "/_search"
}

func objectPath(index string, t model.ObjectType, name string) string {
	return "/" + url.PathEscape(index) + "/" + url.PathEscape(string(t)) + "/" + url.PathEscape(name)
}

// Search runs one unbounded _search for type t and returns the hits found at
// hits.hits. A response without that path yields no hits.
func (c *DefaultClient) Search(ctx context.Context, t model.ObjectType) ([]Hit, error) {
	op := "search " + string(t)
	status, body, err := c.do(ctx, http.MethodGet, searchPath(c.config.Index, t), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, statusError(op, status, body)
	}
	if !gjson.ValidBytes(body) {
		return nil, kerrors.Newf(kerrors.KindMalformedResponse, op, "response is not valid JSON: %s", truncate(body, 80))
	}

	hits := make([]Hit, 0)
	raw := gjson.GetBytes(body, "hits.hits")
	if !raw.Exists() || !raw.IsArray() {
		return hits, nil
	}
	for i, h := range raw.Array() {
		id := h.Get("_id")
		if !id.Exists() {
			return nil, kerrors.Newf(kerrors.KindMissingField, op, "hit %d has no _id", i)
		}
		src := h.Get("_source")
		if !src.Exists() {
			return nil, kerrors.Newf(kerrors.KindMissingField, op, "hit %d has no _source", i).
				WithObject(string(t), id.String())
		}
		hits = append(hits, Hit{ID: id.String(), Source: json.RawMessage(src.Raw)})
	}
	return hits, nil
}

// Push upserts one object by POSTing body to /{index}/{type}/{name}. The
// response is returned whatever its status; callers decide how to report a
// non-2xx answer.
func (c *DefaultClient) Push(ctx context.Context, t model.ObjectType, name string, body []byte) (*PushResponse, error) {
	status, respBody, err := c.do(ctx, http.MethodPost, objectPath(c.config.Index, t, name), body)
	if err != nil {
		if ke, ok := err.(*kerrors.Error); ok {
			return nil, ke.WithObject(string(t), name)
		}
		return nil, err
	}
	return &PushResponse{StatusCode: status, Body: respBody}, nil
}

// Fetch searches type t and adapts every hit into a model.Record, failing
// on the first hit that cannot be adapted.
func Fetch(ctx context.Context, c DashboardClient, t model.ObjectType) ([]model.Record, error) {
	hits, err := c.Search(ctx, t)
	if err != nil {
		return nil, err
	}
	records := make([]model.Record, 0, len(hits))
	for _, h := range hits {
		rec, err := model.FromHit(t, h.ID, h.Source)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
