package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToolCallAccumulator_FinalizesInRegistrationOrder(t *testing.T) {
	t.Parallel()

	acc := NewToolCallAccumulator()
	acc.Add(ToolCallFragment{Index: 1, ID: "call_1", Name: "read_file"})
	acc.Add(ToolCallFragment{Index: 0, ID: "call_0", Name: "write_file"})
	acc.Add(ToolCallFragment{Index: 1, ArgumentPart: `{"path":`})
	acc.Add(ToolCallFragment{Index: 1, ArgumentPart: `"a.go"}`})
	acc.Add(ToolCallFragment{Index: 0, ArgumentPart: `{"path":"b.go","content":"x"}`})

	calls := acc.Finalize()
	require.Len(t, calls, 2)
	require.Equal(t, "call_1", calls[0].ID, "registration order follows first-seen index, not numeric index")
	require.Equal(t, "read_file", calls[0].Name)
	require.Equal(t, map[string]any{"path": "a.go"}, calls[0].Input)

	require.Equal(t, "call_0", calls[1].ID)
	require.Equal(t, map[string]any{"path": "b.go", "content": "x"}, calls[1].Input)
}

func TestToolCallAccumulator_PreservesMalformedArgumentsAsString(t *testing.T) {
	t.Parallel()

	acc := NewToolCallAccumulator()
	acc.Add(ToolCallFragment{Index: 0, ID: "call_0", Name: "bash", ArgumentPart: `{"cmd": not valid json`})

	calls := acc.Finalize()
	require.Len(t, calls, 1)
	require.Equal(t, `{"cmd": not valid json`, calls[0].Input)
}

func TestToolCallAccumulator_EmptyArgumentsStayEmptyString(t *testing.T) {
	t.Parallel()

	acc := NewToolCallAccumulator()
	acc.Add(ToolCallFragment{Index: 0, ID: "call_0", Name: "noop"})

	calls := acc.Finalize()
	require.Equal(t, "", calls[0].Input)
}

func TestIrConversation_AppendToSystemAppendsToExisting(t *testing.T) {
	t.Parallel()

	conv := IrConversation{
		{Role: RoleSystem, Content: []IrContentBlock{TextBlock{Text: "be concise"}}},
		{Role: RoleUser, Content: []IrContentBlock{TextBlock{Text: "hi"}}},
	}

	mutated := conv.AppendToSystem("always cite sources")
	require.Len(t, mutated, 2)
	require.Equal(t, RoleSystem, mutated[0].Role)
	require.Len(t, mutated[0].Content, 2)
}

func TestIrConversation_AppendToSystemPrependsWhenAbsent(t *testing.T) {
	t.Parallel()

	conv := IrConversation{
		{Role: RoleUser, Content: []IrContentBlock{TextBlock{Text: "hi"}}},
	}

	mutated := conv.AppendToSystem("be helpful")
	require.Len(t, mutated, 2)
	require.Equal(t, RoleSystem, mutated[0].Role)
	require.Equal(t, RoleUser, mutated[1].Role)
}
