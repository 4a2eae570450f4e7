package api

import (
	"context"
	"net/http"
)

// AIService fronts the natural-language assistant.
type AIService struct {
	c *Client
}

// ParseTransaction asks the assistant to read a transaction out of text.
// A result with Success=false is returned without error.
func (s *AIService) ParseTransaction(ctx context.Context, text string) (ParseResult, error) {
	var out ParseResult
	err := s.c.send(ctx, http.MethodPost, "/ai/parse-transaction", map[string]string{"text": text}, &out)
	return out, err
}

func (s *AIService) Chat(ctx context.Context, message string) (ChatReply, error) {
	var out ChatReply
	err := s.c.send(ctx, http.MethodPost, "/ai/chat", map[string]string{"message": message}, &out)
	return out, err
}

func (s *AIService) History(ctx context.Context) ([]ChatMessage, error) {
	var out []ChatMessage
	if err := s.c.get(ctx, "/ai/chat/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveMessage appends one line to the stored conversation.
func (s *AIService) SaveMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error) {
	var out ChatMessage
	err := s.c.send(ctx, http.MethodPost, "/ai/chat/history", msg, &out)
	return out, err
}

func (s *AIService) ClearHistory(ctx context.Context) error {
	return s.c.send(ctx, http.MethodDelete, "/ai/chat/history", nil, nil)
}
