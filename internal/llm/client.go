package llm

import (
	"context"
	"io"
)

// Turn is one completed user/assistant exchange.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Request is a single generation call. Prompt is the fully assembled text,
// history included.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

type Response struct {
	Content      string
	InputTokens  int64
	OutputTokens int64
}

type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// Stream writes content to w as it arrives and returns the full response.
	Stream(ctx context.Context, req Request, w io.Writer) (*Response, error)
	// Ping reports whether the backend is reachable and accepting requests.
	Ping(ctx context.Context) error
}
