package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
)

type echoModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (m *echoModel) Generate(_ context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.received = messages
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *echoModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestGenerateAssemblesPrompt(t *testing.T) {
	stub := &echoModel{reply: "the answer"}
	svc, err := NewService(context.Background(), stub, "test-model")
	require.NoError(t, err)

	history := []*schema.Message{
		schema.UserMessage("earlier question"),
		schema.AssistantMessage("earlier answer", nil),
	}

	text, err := svc.Generate(context.Background(), "be helpful", history, "current question")
	require.NoError(t, err)
	assert.Equal(t, "the answer", text)
	assert.Equal(t, "test-model", svc.ModelName())

	// system, two history turns, query.
	require.Len(t, stub.received, 4)
	assert.Equal(t, schema.System, stub.received[0].Role)
	assert.Equal(t, "be helpful", stub.received[0].Content)
	assert.Equal(t, "earlier question", stub.received[1].Content)
	assert.Equal(t, "current question", stub.received[3].Content)
}

func TestGenerateWithoutHistory(t *testing.T) {
	stub := &echoModel{reply: "ok"}
	svc, err := NewService(context.Background(), stub, "test-model")
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "system", nil, "query")
	require.NoError(t, err)
	require.Len(t, stub.received, 2)
}

func TestGenerateEmptyResponseIsError(t *testing.T) {
	stub := &echoModel{reply: ""}
	svc, err := NewService(context.Background(), stub, "test-model")
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "system", nil, "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestGenerateModelError(t *testing.T) {
	stub := &echoModel{err: errors.New("upstream down")}
	svc, err := NewService(context.Background(), stub, "test-model")
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "system", nil, "query")
	assert.Error(t, err)
}

func TestHistoryMessages(t *testing.T) {
	turns := []chat.Turn{
		{Role: chat.RoleUser, Text: "hi"},
		{Role: chat.RoleModel, Text: "hello"},
		{Role: "unknown", Text: "dropped"},
	}

	messages := HistoryMessages(turns)
	require.Len(t, messages, 2)
	assert.Equal(t, schema.User, messages[0].Role)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, schema.Assistant, messages[1].Role)
}
