// Package copilotdialect lowers the neutral dialect IR for GitHub Copilot,
// which speaks an OpenAI-compatible Chat Completions wire format extended
// with a "copilot_references" extension field GitHub's endpoint attaches to
// responses. This package wraps dialect/openaidialect for the shared wire
// translation and adds that one passthrough extension.
package copilotdialect

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentbackplane/abp/dialect"
	"github.com/agentbackplane/abp/dialect/openaidialect"
)

// Reference is one GitHub Copilot context reference (a file, symbol, or
// snippet the model cited), carried in the ext.copilot_references passthrough.
type Reference struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Options configures the adapter.
type Options struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// Dialect implements IR<->wire lowering for GitHub Copilot.
type Dialect struct {
	sdk   openai.Client
	model string
}

// New builds a Dialect pointed at the given Copilot-compatible endpoint.
func New(opts Options) (*Dialect, error) {
	if strings.TrimSpace(opts.DefaultModel) == "" {
		return nil, errors.New("copilotdialect: default model is required")
	}
	sdk := openai.NewClient(option.WithAPIKey(opts.APIKey), option.WithBaseURL(opts.BaseURL))
	return &Dialect{sdk: sdk, model: opts.DefaultModel}, nil
}

// Name returns the dialect's identifier.
func (d *Dialect) Name() string { return "copilot" }

// Complete sends conv and returns the lowered IR message plus any
// copilot_references extension data found on the raw response, surfaced so
// callers can attach it to contract.AgentEvent.Ext under "copilot_references".
func (d *Dialect) Complete(ctx context.Context, conv dialect.IrConversation) (dialect.IrMessage, []Reference, error) {
	resp, err := d.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    d.model,
		Messages: openaidialect.ToWire(conv),
	})
	if err != nil {
		return dialect.IrMessage{}, nil, err
	}

	var refs []Reference
	var extra struct {
		CopilotReferences []Reference `json:"copilot_references"`
	}
	if err := json.Unmarshal([]byte(resp.RawJSON()), &extra); err == nil {
		refs = extra.CopilotReferences
	}

	if len(resp.Choices) == 0 {
		return dialect.IrMessage{}, refs, nil
	}
	return openaidialect.FromWire(resp.Choices[0]), refs, nil
}
