package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
)

// Service wraps the composition model behind a prompt-template chain. Every
// answer path (chat, tool-grounded, report) goes through the same chain with
// a different system instruction.
type Service struct {
	modelName string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the generation chain around an existing chat model.
func NewService(ctx context.Context, chatModel model.BaseChatModel, modelName string) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{modelName: modelName, chain: runnable}, nil
}

// ModelName returns the configured model identifier.
func (s *Service) ModelName() string {
	return s.modelName
}

// Generate runs one completion. History may be nil for single-shot prompts.
func (s *Service) Generate(ctx context.Context, system string, history []*schema.Message, query string) (string, error) {
	input := map[string]any{
		"system":  system,
		"history": history,
		"query":   query,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}
	if response == nil || response.Content == "" {
		return "", fmt.Errorf("model returned empty response")
	}

	log.Printf("[ai] generated response, length=%d", len(response.Content))
	return response.Content, nil
}

// HistoryMessages converts conversation turns into schema messages for the
// chain placeholder.
func HistoryMessages(turns []chat.Turn) []*schema.Message {
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleModel:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return history
}
