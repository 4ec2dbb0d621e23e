package codexdialect

import (
	"encoding/json"
	"testing"

	"github.com/agentbackplane/abp/dialect"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresDefaultModel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{})
	require.Error(t, err)
}

func TestToItems_LowersTextToolUseAndToolResult(t *testing.T) {
	t.Parallel()

	conv := dialect.IrConversation{
		{Role: dialect.RoleUser, Content: []dialect.IrContentBlock{dialect.TextBlock{Text: "list files"}}},
		{Role: dialect.RoleAssistant, Content: []dialect.IrContentBlock{
			dialect.ToolUseBlock{ID: "call_1", Name: "list_dir", Input: map[string]any{"path": "."}},
		}},
		{Role: dialect.RoleTool, Content: []dialect.IrContentBlock{
			dialect.ToolResultBlock{ToolUseID: "call_1", Content: []dialect.IrContentBlock{dialect.TextBlock{Text: "a.go\nb.go"}}},
		}},
	}

	items := ToItems(conv)
	require.Len(t, items, 3)
	require.Equal(t, "message", items[0].Type)
	require.Equal(t, "function_call", items[1].Type)
	require.Equal(t, "call_1", items[1].CallID)
	require.Equal(t, "function_call_output", items[2].Type)
	require.Equal(t, "a.go\nb.go", items[2].Output)
}

func TestFromItems_LiftsMessageAndFunctionCall(t *testing.T) {
	t.Parallel()

	args, err := json.Marshal(map[string]any{"path": "."})
	require.NoError(t, err)

	items := []ResponseItem{
		{Type: "message", Role: "assistant", Text: "done"},
		{Type: "function_call", CallID: "call_2", Name: "list_dir", Args: args},
	}

	msg := FromItems(items)
	require.Equal(t, dialect.RoleAssistant, msg.Role)
	require.Len(t, msg.Content, 2)

	text, ok := msg.Content[0].(dialect.TextBlock)
	require.True(t, ok)
	require.Equal(t, "done", text.Text)

	call, ok := msg.Content[1].(dialect.ToolUseBlock)
	require.True(t, ok)
	require.Equal(t, "call_2", call.ID)
	require.Equal(t, "list_dir", call.Name)
}

func TestFromItems_IgnoresUnknownItemTypes(t *testing.T) {
	t.Parallel()

	msg := FromItems([]ResponseItem{{Type: "reasoning", Text: "thinking..."}})
	require.Empty(t, msg.Content)
}
