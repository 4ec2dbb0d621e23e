// Package geminidialect lowers the neutral dialect IR to and from the Google
// Gemini content format. Gemini has no per-call tool identifiers, so this
// package synthesizes one from the function name (the "gemini_<name>"
// convention), and serializes non-string function responses to JSON text
// before lifting them into an IR tool-result block. The adapter follows the
// same narrow-client-interface shape as the sibling dialect packages, built
// fresh for genai.Content/genai.Part since no adapter in the retrieved corpus
// targets this SDK.
package geminidialect

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/agentbackplane/abp/dialect"
)

// ContentClient captures the subset of the genai SDK this adapter depends
// on, mirroring the sibling dialects' client seams so tests can substitute a
// fake.
type ContentClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkContentClient struct {
	client *genai.Client
}

func (c sdkContentClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// Options configures the adapter.
type Options struct {
	APIKey       string
	Client       ContentClient
	DefaultModel string
}

// Dialect implements IR<->wire lowering for Google Gemini.
type Dialect struct {
	client ContentClient
	model  string
}

// New builds a Dialect. When opts.Client is nil, a real SDK client is
// constructed from opts.APIKey.
func New(ctx context.Context, opts Options) (*Dialect, error) {
	if strings.TrimSpace(opts.DefaultModel) == "" {
		return nil, errors.New("geminidialect: default model is required")
	}
	client := opts.Client
	if client == nil {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, errors.New("geminidialect: api key or client is required")
		}
		sdk, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
		if err != nil {
			return nil, err
		}
		client = sdkContentClient{client: sdk}
	}
	return &Dialect{client: client, model: opts.DefaultModel}, nil
}

// Name returns the dialect's identifier.
func (d *Dialect) Name() string { return "gemini" }

// ToWire lowers an IR conversation into Gemini contents plus a separate
// system instruction, since Gemini carries the system prompt as a
// request-level field rather than as a content entry.
func ToWire(conv dialect.IrConversation) (contents []*genai.Content, systemInstruction *genai.Content) {
	for _, msg := range conv {
		if msg.Role == dialect.RoleSystem {
			text := flattenText(msg.Content)
			if text == "" {
				continue
			}
			systemInstruction = &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: text}},
			}
			continue
		}
		contents = append(contents, contentFromIr(msg))
	}
	return contents, systemInstruction
}

func roleFromIr(role dialect.Role) string {
	if role == dialect.RoleAssistant {
		return "model"
	}
	return "user"
}

func contentFromIr(msg dialect.IrMessage) *genai.Content {
	parts := make([]*genai.Part, 0, len(msg.Content))
	for _, block := range msg.Content {
		parts = append(parts, partFromIr(block))
	}
	return &genai.Content{Role: roleFromIr(msg.Role), Parts: parts}
}

func partFromIr(block dialect.IrContentBlock) *genai.Part {
	switch v := block.(type) {
	case dialect.TextBlock:
		return &genai.Part{Text: v.Text}
	case dialect.ThinkingBlock:
		return &genai.Part{Text: v.Text}
	case dialect.ImageBlock:
		return &genai.Part{InlineData: &genai.Blob{MIMEType: v.MediaType, Data: v.Data}}
	case dialect.ToolUseBlock:
		args, _ := v.Input.(map[string]any)
		return &genai.Part{FunctionCall: &genai.FunctionCall{Name: v.Name, Args: args}}
	case dialect.ToolResultBlock:
		name := strings.TrimPrefix(v.ToolUseID, "gemini_")
		return &genai.Part{FunctionResponse: &genai.FunctionResponse{Name: name, Response: toolResultResponse(v)}}
	}
	return &genai.Part{}
}

func toolResultResponse(v dialect.ToolResultBlock) map[string]any {
	text := flattenText(v.Content)
	return map[string]any{"result": text}
}

// FromWire lifts Gemini contents back into a single IR message, mapping
// function calls into ToolUseBlocks with a synthesized "gemini_<name>" id
// and function responses into ToolResultBlocks keyed by that same id.
func FromWire(contents []*genai.Content) dialect.IrMessage {
	role := dialect.RoleAssistant
	var blocks []dialect.IrContentBlock
	for _, content := range contents {
		if content.Role == "model" {
			role = dialect.RoleAssistant
		}
		for _, part := range content.Parts {
			blocks = append(blocks, partToIr(part)...)
		}
	}
	return dialect.IrMessage{Role: role, Content: blocks}
}

func partToIr(part *genai.Part) []dialect.IrContentBlock {
	switch {
	case part.Text != "":
		return []dialect.IrContentBlock{dialect.TextBlock{Text: part.Text}}
	case part.InlineData != nil:
		return []dialect.IrContentBlock{dialect.ImageBlock{MediaType: part.InlineData.MIMEType, Data: part.InlineData.Data}}
	case part.FunctionCall != nil:
		return []dialect.IrContentBlock{dialect.ToolUseBlock{
			ID:    "gemini_" + part.FunctionCall.Name,
			Name:  part.FunctionCall.Name,
			Input: part.FunctionCall.Args,
		}}
	case part.FunctionResponse != nil:
		return []dialect.IrContentBlock{dialect.ToolResultBlock{
			ToolUseID: "gemini_" + part.FunctionResponse.Name,
			Content:   []dialect.IrContentBlock{dialect.TextBlock{Text: responseText(part.FunctionResponse.Response)}},
		}}
	}
	return nil
}

func responseText(response map[string]any) string {
	if s, ok := response["result"].(string); ok {
		return s
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Complete sends conv to the configured model and lowers the response back
// into an IR message.
func (d *Dialect) Complete(ctx context.Context, conv dialect.IrConversation) (dialect.IrMessage, error) {
	contents, systemInstruction := ToWire(conv)
	var config *genai.GenerateContentConfig
	if systemInstruction != nil {
		config = &genai.GenerateContentConfig{SystemInstruction: systemInstruction}
	}
	resp, err := d.client.GenerateContent(ctx, d.model, contents, config)
	if err != nil {
		return dialect.IrMessage{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return dialect.IrMessage{}, errors.New("geminidialect: no candidates returned")
	}
	return FromWire([]*genai.Content{resp.Candidates[0].Content}), nil
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
