package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dm/kbackup/internal/client"
	"github.com/dm/kbackup/internal/model"
)

// pushCall records one Push invocation.
type pushCall struct {
	Type model.ObjectType
	Name string
	Body string
}

// MockClient implements client.DashboardClient for testing.
type MockClient struct {
	SearchFn func(ctx context.Context, t model.ObjectType) ([]client.Hit, error)
	PushFn   func(ctx context.Context, t model.ObjectType, name string, body []byte) (*client.PushResponse, error)

	Searches []model.ObjectType
	Pushes   []pushCall
}

func (m *MockClient) Search(ctx context.Context, t model.ObjectType) ([]client.Hit, error) {
	m.Searches = append(m.Searches, t)
	if m.SearchFn != nil {
		return m.SearchFn(ctx, t)
	}
	return nil, nil
}

func (m *MockClient) Push(ctx context.Context, t model.ObjectType, name string, body []byte) (*client.PushResponse, error) {
	m.Pushes = append(m.Pushes, pushCall{Type: t, Name: name, Body: string(body)})
	if m.PushFn != nil {
		return m.PushFn(ctx, t, name, body)
	}
	return &client.PushResponse{StatusCode: 201, Body: []byte(`{"result":"created"}`)}, nil
}

func (m *MockClient) BaseURL() string {
	return "http://mock:9200"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errMockFailure = errors.New("mock failure")
