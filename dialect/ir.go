// Package dialect defines the provider-agnostic intermediate representation
// (IR) conversation that every backend dialect lowers to and from, plus the
// ToolCallAccumulator used to reassemble streamed tool-call fragments.
package dialect

import "encoding/json"

// Role identifies the speaker of an IrMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type (
	// IrContentBlock is a marker interface implemented by every IR block
	// variant. Concrete types capture text, images, provider reasoning, and
	// tool use/result content in strongly typed form.
	IrContentBlock interface {
		isIrContentBlock()
	}

	// TextBlock is a plain text content block.
	TextBlock struct {
		Text string `json:"text"`
	}

	// ImageBlock carries inline image bytes.
	ImageBlock struct {
		MediaType string `json:"media_type"`
		Data      []byte `json:"data"`
	}

	// ThinkingBlock carries provider-issued reasoning content, treated as
	// opaque by everything except the originating dialect.
	ThinkingBlock struct {
		Text string `json:"text"`
	}

	// ToolUseBlock declares a tool invocation requested by the assistant.
	// Input is preserved as-is even when it fails to parse as JSON, matching
	// the deterministic edge case that malformed tool arguments must survive
	// the round trip verbatim.
	ToolUseBlock struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Input any    `json:"input"`
	}

	// ToolResultBlock carries the result of a prior ToolUseBlock invocation.
	ToolResultBlock struct {
		ToolUseID string           `json:"tool_use_id"`
		Content   []IrContentBlock `json:"content"`
		IsError   bool             `json:"is_error"`
	}
)

func (TextBlock) isIrContentBlock()       {}
func (ImageBlock) isIrContentBlock()      {}
func (ThinkingBlock) isIrContentBlock()   {}
func (ToolUseBlock) isIrContentBlock()    {}
func (ToolResultBlock) isIrContentBlock() {}

// IrMessage is one message in an IR conversation.
type IrMessage struct {
	Role    Role             `json:"role"`
	Content []IrContentBlock `json:"content"`
}

// IrConversation is an ordered sequence of IrMessage.
type IrConversation []IrMessage

// PrependSystem inserts text as a new leading system message.
func (c IrConversation) PrependSystem(text string) IrConversation {
	sysMsg := IrMessage{Role: RoleSystem, Content: []IrContentBlock{TextBlock{Text: text}}}
	return append(IrConversation{sysMsg}, c...)
}

// AppendToSystem appends text to the first existing system message found,
// or prepends a new system message if none exists. This implements the
// system-prompt-injection emulation strategy's conversation mutation.
func (c IrConversation) AppendToSystem(text string) IrConversation {
	for i, msg := range c {
		if msg.Role != RoleSystem {
			continue
		}
		out := make(IrConversation, len(c))
		copy(out, c)
		out[i].Content = append(append([]IrContentBlock{}, msg.Content...), TextBlock{Text: "\n" + text})
		return out
	}
	return c.PrependSystem(text)
}

// ToolCallFragment is one incremental fragment of a streamed tool call,
// keyed by the call's position in the stream.
type ToolCallFragment struct {
	Index        int
	ID           string
	Name         string
	ArgumentPart string
}

// ToolCallAccumulator gathers streamed tool-call fragments (id, name,
// arguments) keyed by index and finalizes them into ToolUseBlock values in
// registration order once the stream signals completion.
type ToolCallAccumulator struct {
	order []int
	byIdx map[int]*accumulated
}

type accumulated struct {
	id   string
	name string
	args string
}

// NewToolCallAccumulator returns an empty accumulator.
func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{byIdx: make(map[int]*accumulated)}
}

// Add folds one streamed fragment into the accumulator.
func (a *ToolCallAccumulator) Add(f ToolCallFragment) {
	entry, ok := a.byIdx[f.Index]
	if !ok {
		entry = &accumulated{}
		a.byIdx[f.Index] = entry
		a.order = append(a.order, f.Index)
	}
	if f.ID != "" {
		entry.id = f.ID
	}
	if f.Name != "" {
		entry.name = f.Name
	}
	entry.args += f.ArgumentPart
}

// Finalize emits one ToolUseBlock per accumulated index, in registration
// order. Each block's final arguments are parsed into JSON when
// syntactically valid, else kept as the raw string so no data is dropped.
func (a *ToolCallAccumulator) Finalize() []ToolUseBlock {
	out := make([]ToolUseBlock, 0, len(a.order))
	for _, idx := range a.order {
		entry := a.byIdx[idx]
		var input any
		if entry.args != "" && json.Valid([]byte(entry.args)) {
			_ = json.Unmarshal([]byte(entry.args), &input)
		} else {
			input = entry.args
		}
		out = append(out, ToolUseBlock{ID: entry.id, Name: entry.name, Input: input})
	}
	return out
}
