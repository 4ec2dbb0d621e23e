package kimidialect

import (
	"context"
	"testing"

	"github.com/openai/openai-go"

	"github.com/agentbackplane/abp/dialect"
	"github.com/stretchr/testify/require"
)

type fakeChatClient struct{}

func (fakeChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "moshi moshi"}},
		},
	}, nil
}

func TestNew_RequiresDefaultModel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Client: fakeChatClient{}})
	require.Error(t, err)
}

func TestNew_DelegatesToOpenAIDialect(t *testing.T) {
	t.Parallel()

	d, err := New(Options{DefaultModel: "kimi-k2", Client: fakeChatClient{}})
	require.NoError(t, err)
	require.Equal(t, "kimi", d.Name())
}

func TestComplete_DelegatesToInnerDialect(t *testing.T) {
	t.Parallel()

	d, err := New(Options{DefaultModel: "kimi-k2", Client: fakeChatClient{}})
	require.NoError(t, err)

	msg, err := d.Complete(context.Background(), dialect.IrConversation{
		{Role: dialect.RoleUser, Content: []dialect.IrContentBlock{dialect.TextBlock{Text: "hi"}}},
	})
	require.NoError(t, err)
	require.Equal(t, dialect.TextBlock{Text: "moshi moshi"}, msg.Content[0])
}

func TestNew_DoesNotRequireBaseURLWhenClientProvided(t *testing.T) {
	t.Parallel()

	// A supplied Client bypasses base URL resolution entirely; this just
	// confirms New doesn't require BaseURL when Client is set.
	_, err := New(Options{DefaultModel: "kimi-k2", Client: fakeChatClient{}, BaseURL: ""})
	require.NoError(t, err)
}
