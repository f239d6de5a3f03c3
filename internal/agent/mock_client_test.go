package agent

import (
	"context"
	"io"

	"github.com/chris/snug/internal/llm"
)

// mockClient is a mock implementation of llm.Client that records requests.
type mockClient struct {
	GenerateFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)
	StreamFunc   func(ctx context.Context, req llm.Request, w io.Writer) (*llm.Response, error)
	PingFunc     func(ctx context.Context) error

	requests []llm.Request
}

func (m *mockClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &llm.Response{Content: "ok"}, nil
}

func (m *mockClient) Stream(ctx context.Context, req llm.Request, w io.Writer) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req, w)
	}
	io.WriteString(w, "ok")
	return &llm.Response{Content: "ok"}, nil
}

func (m *mockClient) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
