package client

import "encoding/json"

// Hit is one entry of a _search response: the document id and its raw source.
type Hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// PushResponse is the raw answer to an upsert.
type PushResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the push was acknowledged with a 2xx status.
func (r *PushResponse) OK() bool {
	return isSuccess(r.StatusCode)
}
