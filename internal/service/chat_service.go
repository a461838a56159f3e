package service

import (
	"context"
	"fmt"

	"clara-backend/internal/apperror"
	"clara-backend/internal/dto"
	"clara-backend/pkg/llm"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

// chatService is a direct passthrough to the configured LLM provider; the
// completion comes back verbatim.
type chatService struct {
	provider llm.LLMProvider
}

func NewChatService(provider llm.LLMProvider) IChatService {
	return &chatService{provider: provider}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	response, err := s.provider.Generate(ctx, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrUpstream, err)
	}
	return &dto.ChatResponse{Response: response}, nil
}
