// Package claudedialect lowers the neutral dialect IR to and from the
// Anthropic Messages wire shape, adapted from the teacher's
// features/model/anthropic adapter: a narrow MessagesClient seam the real SDK
// satisfies, an Options/New constructor, pure IR<->wire translation
// functions, and a streaming adapter that reassembles content-block deltas
// (text, tool-call JSON fragments, thinking) keyed by block index, finalizing
// each buffer on its content-block-stop event.
package claudedialect

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/agentbackplane/abp/dialect"
)

// MessagesClient captures the subset of the Anthropic SDK this adapter
// depends on, mirroring the teacher's MessagesClient seam so tests can
// substitute a fake. *sdk.MessageService satisfies it directly.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
	NewStreaming(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion]
}

// Options configures the adapter.
type Options struct {
	APIKey       string
	Client       MessagesClient
	DefaultModel string
	MaxTokens    int64
}

const defaultMaxTokens = 4096

// Dialect implements IR<->wire lowering for Anthropic Messages.
type Dialect struct {
	msgs      MessagesClient
	model     string
	maxTokens int64
}

// New builds a Dialect. When opts.Client is nil, a real SDK client is
// constructed from opts.APIKey.
func New(opts Options) (*Dialect, error) {
	if strings.TrimSpace(opts.DefaultModel) == "" {
		return nil, errors.New("claudedialect: default model is required")
	}
	client := opts.Client
	if client == nil {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, errors.New("claudedialect: api key or client is required")
		}
		ac := sdk.NewClient(option.WithAPIKey(opts.APIKey))
		client = ac.Messages
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Dialect{msgs: client, model: opts.DefaultModel, maxTokens: maxTokens}, nil
}

// Name returns the dialect's identifier.
func (d *Dialect) Name() string { return "claude" }

// ToWire lowers an IR conversation into Anthropic message params, splitting
// out any system-role messages into the separate system prompt slot Messages
// requires.
func ToWire(conv dialect.IrConversation) ([]sdk.MessageParam, []sdk.TextBlockParam) {
	var system []sdk.TextBlockParam
	messages := make([]sdk.MessageParam, 0, len(conv))
	for _, msg := range conv {
		if msg.Role == dialect.RoleSystem {
			system = append(system, sdk.TextBlockParam{Text: flattenText(msg.Content)})
			continue
		}
		blocks := blocksToWire(msg.Content)
		if len(blocks) == 0 {
			continue
		}
		switch msg.Role {
		case dialect.RoleUser, dialect.RoleTool:
			messages = append(messages, sdk.NewUserMessage(blocks...))
		case dialect.RoleAssistant:
			messages = append(messages, sdk.NewAssistantMessage(blocks...))
		}
	}
	return messages, system
}

func blocksToWire(blocks []dialect.IrContentBlock) []sdk.ContentBlockParamUnion {
	out := make([]sdk.ContentBlockParamUnion, 0, len(blocks))
	for _, b := range blocks {
		switch v := b.(type) {
		case dialect.TextBlock:
			if v.Text != "" {
				out = append(out, sdk.NewTextBlock(v.Text))
			}
		case dialect.ToolUseBlock:
			out = append(out, sdk.NewToolUseBlock(v.ID, v.Input, v.Name))
		case dialect.ToolResultBlock:
			out = append(out, sdk.NewToolResultBlock(v.ToolUseID, flattenText(v.Content), v.IsError))
		}
	}
	return out
}

// FromWire lifts a completed Anthropic message back into an IR message,
// preserving text, thinking, and tool-use blocks.
func FromWire(msg *sdk.Message) dialect.IrMessage {
	var content []dialect.IrContentBlock
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdk.TextBlock:
			content = append(content, dialect.TextBlock{Text: v.Text})
		case sdk.ThinkingBlock:
			content = append(content, dialect.ThinkingBlock{Text: v.Thinking})
		case sdk.ToolUseBlock:
			content = append(content, dialect.ToolUseBlock{ID: v.ID, Name: v.Name, Input: v.Input})
		}
	}
	return dialect.IrMessage{Role: dialect.RoleAssistant, Content: content}
}

// Complete issues a non-streaming Messages.New request and lowers the
// response back into an IR message.
func (d *Dialect) Complete(ctx context.Context, conv dialect.IrConversation) (dialect.IrMessage, error) {
	messages, system := ToWire(conv)
	resp, err := d.msgs.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(d.model),
		MaxTokens: d.maxTokens,
		Messages:  messages,
		System:    system,
	})
	if err != nil {
		return dialect.IrMessage{}, err
	}
	return FromWire(resp), nil
}

// StreamChunk is one incremental unit of a Claude streaming response, mapped
// onto contract.AgentEvent by the caller.
type StreamChunk struct {
	Text       string
	Thinking   string
	ToolCall   *dialect.ToolUseBlock
	Done       bool
	StopReason string
}

// Stream issues a streaming Messages.NewStreaming request and returns a
// channel of StreamChunk, reassembling content-block deltas keyed by index
// the way the teacher's anthropicChunkProcessor does, finalizing each tool
// call and thinking block on its content-block-stop event.
func (d *Dialect) Stream(ctx context.Context, conv dialect.IrConversation) (<-chan StreamChunk, error) {
	messages, system := ToWire(conv)
	stream := d.msgs.NewStreaming(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(d.model),
		MaxTokens: d.maxTokens,
		Messages:  messages,
		System:    system,
	})

	out := make(chan StreamChunk, 32)
	go func() {
		defer close(out)
		defer func() { _ = stream.Close() }()

		proc := newChunkProcessor(out)
		for stream.Next() {
			proc.handle(stream.Current())
		}
	}()
	return out, nil
}

type chunkProcessor struct {
	out            chan<- StreamChunk
	toolBlocks     map[int64]*toolBuffer
	thinkingBlocks map[int64]*strings.Builder
	stopReason     string
}

func newChunkProcessor(out chan<- StreamChunk) *chunkProcessor {
	return &chunkProcessor{
		out:            out,
		toolBlocks:     make(map[int64]*toolBuffer),
		thinkingBlocks: make(map[int64]*strings.Builder),
	}
}

type toolBuffer struct {
	id        string
	name      string
	fragments strings.Builder
}

func (p *chunkProcessor) handle(event sdk.MessageStreamEventUnion) {
	switch ev := event.AsAny().(type) {
	case sdk.MessageStartEvent:
		p.toolBlocks = make(map[int64]*toolBuffer)
		p.thinkingBlocks = make(map[int64]*strings.Builder)
	case sdk.ContentBlockStartEvent:
		idx := ev.Index
		if toolUse, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
			p.toolBlocks[idx] = &toolBuffer{id: toolUse.ID, name: toolUse.Name}
		}
	case sdk.ContentBlockDeltaEvent:
		idx := ev.Index
		switch delta := ev.Delta.AsAny().(type) {
		case sdk.TextDelta:
			if delta.Text != "" {
				p.out <- StreamChunk{Text: delta.Text}
			}
		case sdk.InputJSONDelta:
			if tb := p.toolBlocks[idx]; tb != nil && delta.PartialJSON != "" {
				tb.fragments.WriteString(delta.PartialJSON)
			}
		case sdk.ThinkingDelta:
			if delta.Thinking == "" {
				break
			}
			tb := p.thinkingBlocks[idx]
			if tb == nil {
				tb = &strings.Builder{}
				p.thinkingBlocks[idx] = tb
			}
			tb.WriteString(delta.Thinking)
			p.out <- StreamChunk{Thinking: delta.Thinking}
		}
	case sdk.ContentBlockStopEvent:
		idx := ev.Index
		if tb := p.toolBlocks[idx]; tb != nil {
			delete(p.toolBlocks, idx)
			input := parseToolInput(tb.fragments.String())
			block := dialect.ToolUseBlock{ID: tb.id, Name: tb.name, Input: input}
			p.out <- StreamChunk{ToolCall: &block}
		}
		delete(p.thinkingBlocks, idx)
	case sdk.MessageDeltaEvent:
		p.stopReason = string(ev.Delta.StopReason)
	case sdk.MessageStopEvent:
		p.out <- StreamChunk{Done: true, StopReason: p.stopReason}
	}
}

func parseToolInput(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}
	}
	var input any
	if json.Valid([]byte(trimmed)) {
		_ = json.Unmarshal([]byte(trimmed), &input)
		return input
	}
	return trimmed
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
