// Package openaidialect lowers the neutral dialect IR to and from the
// OpenAI Chat Completions wire shape, adapted from the teacher's
// features/model/openai adapter: a narrow client interface the real SDK
// satisfies, an Options/New constructor, and pure IR<->wire translation
// functions kept separate from the network call itself.
package openaidialect

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentbackplane/abp/dialect"
)

// ChatClient captures the subset of the OpenAI SDK this adapter depends on,
// mirroring the teacher's ChatClient seam so tests can substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type sdkChatClient struct {
	client openai.Client
}

func (c sdkChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// Options configures the adapter.
type Options struct {
	APIKey       string
	Client       ChatClient
	DefaultModel string
}

// Dialect implements IR<->wire lowering for OpenAI Chat Completions.
type Dialect struct {
	chat  ChatClient
	model string
}

// New builds a Dialect. When opts.Client is nil, a real SDK client is
// constructed from opts.APIKey.
func New(opts Options) (*Dialect, error) {
	if strings.TrimSpace(opts.DefaultModel) == "" {
		return nil, errors.New("openaidialect: default model is required")
	}
	client := opts.Client
	if client == nil {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, errors.New("openaidialect: api key or client is required")
		}
		client = sdkChatClient{client: openai.NewClient(option.WithAPIKey(opts.APIKey))}
	}
	return &Dialect{chat: client, model: opts.DefaultModel}, nil
}

// Name returns the dialect's identifier.
func (d *Dialect) Name() string { return "openai" }

// ToWire lowers an IR conversation into OpenAI chat messages.
func ToWire(conv dialect.IrConversation) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv))
	for _, msg := range conv {
		text := flattenText(msg.Content)
		switch msg.Role {
		case dialect.RoleSystem:
			out = append(out, openai.SystemMessage(text))
		case dialect.RoleUser:
			out = append(out, openai.UserMessage(text))
		case dialect.RoleAssistant:
			out = append(out, openai.AssistantMessage(text))
		case dialect.RoleTool:
			out = append(out, toolResultMessage(msg.Content))
		}
	}
	return out
}

// FromWire lifts one assistant chat completion choice back into an IR
// message, preserving any tool calls as ToolUseBlocks.
func FromWire(choice openai.ChatCompletionChoice) dialect.IrMessage {
	var content []dialect.IrContentBlock
	if text := choice.Message.Content; text != "" {
		content = append(content, dialect.TextBlock{Text: text})
	}
	for _, call := range choice.Message.ToolCalls {
		content = append(content, dialect.ToolUseBlock{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: parseArguments(call.Function.Arguments),
		})
	}
	return dialect.IrMessage{Role: dialect.RoleAssistant, Content: content}
}

// Complete sends conv to the configured model and lowers the first choice
// back into an IR message.
func (d *Dialect) Complete(ctx context.Context, conv dialect.IrConversation) (dialect.IrMessage, error) {
	resp, err := d.chat.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    d.model,
		Messages: ToWire(conv),
	})
	if err != nil {
		return dialect.IrMessage{}, err
	}
	if len(resp.Choices) == 0 {
		return dialect.IrMessage{}, errors.New("openaidialect: no choices returned")
	}
	return FromWire(resp.Choices[0]), nil
}

func flattenText(blocks []dialect.IrContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if t, ok := b.(dialect.TextBlock); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

func toolResultMessage(blocks []dialect.IrContentBlock) openai.ChatCompletionMessageParamUnion {
	var toolUseID, text string
	for _, b := range blocks {
		switch v := b.(type) {
		case dialect.ToolResultBlock:
			toolUseID = v.ToolUseID
			text = flattenText(v.Content)
		}
	}
	return openai.ToolMessage(text, toolUseID)
}

func parseArguments(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return raw
	}
	return payload
}
