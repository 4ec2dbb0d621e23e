// Package codexdialect lowers the neutral dialect IR into OpenAI Responses
// API item framing ("function_call" / "function_call_output"), the shape
// OpenAI Codex CLI subprocesses emit and consume. It defines its own
// ResponseItem wire type, independent of dialect/openaidialect: text turns
// become "message" items and tool traffic uses the function-call item
// framing.
package codexdialect

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/agentbackplane/abp/dialect"
)

// Options configures the adapter.
type Options struct {
	DefaultModel string
}

// Dialect implements IR<->wire lowering for Codex's Responses-API item
// framing.
type Dialect struct {
	model string
}

// New builds a Dialect.
func New(opts Options) (*Dialect, error) {
	if strings.TrimSpace(opts.DefaultModel) == "" {
		return nil, errors.New("codexdialect: default model is required")
	}
	return &Dialect{model: opts.DefaultModel}, nil
}

// Name returns the dialect's identifier.
func (d *Dialect) Name() string { return "codex" }

// ResponseItem is one Responses-API item in Codex's function_call /
// function_call_output framing.
type ResponseItem struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	CallID string          `json:"call_id,omitempty"`
	Name   string          `json:"name,omitempty"`
	Output string          `json:"output,omitempty"`
	Args   json.RawMessage `json:"arguments,omitempty"`
	Role   string          `json:"role,omitempty"`
	Text   string          `json:"text,omitempty"`
}

// ToItems lowers an IR conversation into Responses-API items: plain text
// turns become "message" items, ToolUseBlocks become "function_call"
// items, and ToolResultBlocks become "function_call_output" items.
func ToItems(conv dialect.IrConversation) []ResponseItem {
	var items []ResponseItem
	for _, msg := range conv {
		for _, block := range msg.Content {
			switch v := block.(type) {
			case dialect.TextBlock:
				items = append(items, ResponseItem{Type: "message", Role: string(msg.Role), Text: v.Text})
			case dialect.ToolUseBlock:
				args, _ := json.Marshal(v.Input)
				items = append(items, ResponseItem{Type: "function_call", CallID: v.ID, Name: v.Name, Args: args})
			case dialect.ToolResultBlock:
				items = append(items, ResponseItem{Type: "function_call_output", CallID: v.ToolUseID, Output: flattenText(v.Content)})
			}
		}
	}
	return items
}

// FromItems lifts Responses-API items back into a single IR message,
// preserving message text and any function_call items as ToolUseBlocks.
func FromItems(items []ResponseItem) dialect.IrMessage {
	var content []dialect.IrContentBlock
	for _, item := range items {
		switch item.Type {
		case "message":
			content = append(content, dialect.TextBlock{Text: item.Text})
		case "function_call":
			var input any
			if len(item.Args) > 0 {
				_ = json.Unmarshal(item.Args, &input)
			}
			content = append(content, dialect.ToolUseBlock{ID: item.CallID, Name: item.Name, Input: input})
		}
	}
	return dialect.IrMessage{Role: dialect.RoleAssistant, Content: content}
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
