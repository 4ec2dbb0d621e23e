// Package kimidialect lowers the neutral dialect IR for Moonshot Kimi, which
// speaks an OpenAI-compatible Chat Completions wire format. Per the
// specification Kimi support is identical to OpenAI's, so this package is a
// thin rename over dialect/openaidialect rather than a parallel
// implementation.
package kimidialect

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentbackplane/abp/dialect"
	"github.com/agentbackplane/abp/dialect/openaidialect"
)

// defaultBaseURL is Moonshot's OpenAI-compatible API endpoint.
const defaultBaseURL = "https://api.moonshot.ai/v1"

// Options configures the adapter.
type Options struct {
	APIKey       string
	BaseURL      string
	Client       openaidialect.ChatClient
	DefaultModel string
}

// Dialect implements IR<->wire lowering for Kimi by delegating to
// openaidialect's wire translation.
type Dialect struct {
	inner *openaidialect.Dialect
}

// New builds a Dialect pointed at Moonshot's OpenAI-compatible endpoint.
func New(opts Options) (*Dialect, error) {
	client := opts.Client
	if client == nil {
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		sdk := openai.NewClient(option.WithAPIKey(opts.APIKey), option.WithBaseURL(baseURL))
		client = sdkChatClient{client: sdk}
	}
	inner, err := openaidialect.New(openaidialect.Options{
		Client:       client,
		DefaultModel: opts.DefaultModel,
	})
	if err != nil {
		return nil, err
	}
	return &Dialect{inner: inner}, nil
}

// Name returns the dialect's identifier.
func (d *Dialect) Name() string { return "kimi" }

// Complete delegates to the underlying OpenAI-compatible adapter.
func (d *Dialect) Complete(ctx context.Context, conv dialect.IrConversation) (dialect.IrMessage, error) {
	return d.inner.Complete(ctx, conv)
}

type sdkChatClient struct {
	client openai.Client
}

func (c sdkChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
