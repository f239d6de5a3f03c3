package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAIClient struct {
	client   openai.Client
	model    string
	provider string
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return &OpenAIClient{client: client, model: model, provider: "openai"}
}

func (c *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	p := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		// max_tokens rather than max_completion_tokens: OpenAI-compatible
		// local servers only understand the former.
		p.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	return p
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return nil, classifyError(c.provider, err)
	}

	result := &Response{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
	}
	return result, nil
}

func (c *OpenAIClient) Stream(ctx context.Context, req Request, w io.Writer) (*Response, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	result := &Response{}
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Usage.PromptTokens > 0 {
			result.InputTokens = chunk.Usage.PromptTokens
			result.OutputTokens = chunk.Usage.CompletionTokens
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if _, err := io.WriteString(w, delta); err != nil {
			return nil, fmt.Errorf("writing stream: %w", err)
		}
		result.Content += delta
	}
	if err := stream.Err(); err != nil {
		return nil, classifyError(c.provider, err)
	}
	return result, nil
}

func (c *OpenAIClient) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, c.provider, err)
	}
	return nil
}
