package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicClient struct {
	client anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, model, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(2),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), model: model}
}

func (c *AnthropicClient) params(req Request) anthropic.MessageNewParams {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultResponseHeadroom
	}
	p := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		p.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return p
}

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (*Response, error) {
	msg, err := c.client.Messages.New(ctx, c.params(req))
	if err != nil {
		return nil, classifyError("anthropic", err)
	}

	result := &Response{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			result.Content += block.Text
		}
	}
	return result, nil
}

func (c *AnthropicClient) Stream(ctx context.Context, req Request, w io.Writer) (*Response, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	result := &Response{}
	for stream.Next() {
		event := stream.Current()
		switch variant := event.AsAny().(type) {
		case anthropic.MessageStartEvent:
			result.InputTokens = variant.Message.Usage.InputTokens
		case anthropic.ContentBlockDeltaEvent:
			if variant.Delta.Type != "text_delta" {
				continue
			}
			text := variant.Delta.AsTextDelta().Text
			if _, err := io.WriteString(w, text); err != nil {
				return nil, fmt.Errorf("writing stream: %w", err)
			}
			result.Content += text
		case anthropic.MessageDeltaEvent:
			result.OutputTokens = variant.Usage.OutputTokens
		}
	}
	if err := stream.Err(); err != nil {
		return nil, classifyError("anthropic", err)
	}
	return result, nil
}

func (c *AnthropicClient) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("%w: anthropic: %v", ErrUnavailable, err)
	}
	return nil
}
