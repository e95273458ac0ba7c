package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/gemini"
	"github.com/shenikar/city_alert/internal/metrics"
	"github.com/shenikar/city_alert/internal/service/prompts"
)

// Параметры генерации чата
var chatGenerationConfig = gemini.GenerationConfig{
	Temperature:     0.7,
	TopP:            0.95,
	TopK:            40,
	MaxOutputTokens: 800,
}

type chatService struct {
	client GenerativeClient
	prompt string
	logger *logrus.Logger
}

func NewChatService(client GenerativeClient, logger *logrus.Logger) ChatService {
	return &chatService{
		client: client,
		prompt: prompts.IncidentAssistant(),
		logger: logger,
	}
}

// Chat добавляет системную инструкцию к диалогу и возвращает текст первого ответа модели.
// Все ошибки возвращаются как *ChatError.
func (s *chatService) Chat(ctx context.Context, history []gemini.Content) (string, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":        "chat",
		"method":         "Chat",
		"turns":          len(history),
		"prompt_version": prompts.Version,
	})

	request := gemini.GenerateRequest{
		Contents:         s.buildContents(history),
		GenerationConfig: chatGenerationConfig,
	}

	resp, err := s.client.GenerateContent(ctx, request)
	if err != nil {
		chatErr := toChatError(err)
		log.WithError(err).Error(chatErr.Message)
		metrics.ChatRequests.WithLabelValues("upstream_error").Inc()
		return "", chatErr
	}

	text, err := resp.FirstText()
	if err != nil {
		chatErr := toChatError(err)
		log.WithError(err).Error(chatErr.Message)
		metrics.ChatRequests.WithLabelValues("bad_response").Inc()
		return "", chatErr
	}

	metrics.ChatRequests.WithLabelValues("ok").Inc()
	return text, nil
}

// buildContents ставит перед диалогом инструкцию и подтверждение модели.
// Из частей сообщений остаются только text и inlineData, каждая отдельной частью.
func (s *chatService) buildContents(history []gemini.Content) []gemini.Content {
	prompt := s.prompt
	ack := prompts.Acknowledgement
	contents := make([]gemini.Content, 0, len(history)+2)
	contents = append(contents,
		gemini.Content{Role: "user", Parts: []gemini.Part{{Text: &prompt}}},
		gemini.Content{Role: "model", Parts: []gemini.Part{{Text: &ack}}},
	)

	for _, turn := range history {
		parts := make([]gemini.Part, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			if part.Text != nil {
				text := *part.Text
				parts = append(parts, gemini.Part{Text: &text})
			}
			if part.InlineData != nil {
				parts = append(parts, gemini.Part{InlineData: &gemini.InlineData{
					MimeType: part.InlineData.MimeType,
					Data:     part.InlineData.Data,
				}})
			}
		}
		contents = append(contents, gemini.Content{Role: turn.Role, Parts: parts})
	}
	return contents
}

func toChatError(err error) *ChatError {
	var statusErr *gemini.StatusError
	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		return &ChatError{Message: "Gemini API key is not configured", Err: err}
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusForbidden:
		return &ChatError{
			Message: "Gemini API permission denied (403): check that the API key is valid and the Generative Language API is enabled",
			Err:     err,
		}
	case errors.As(err, &statusErr):
		return &ChatError{Message: fmt.Sprintf("Gemini API returned status %d", statusErr.StatusCode), Err: err}
	case errors.Is(err, gemini.ErrTransport):
		cause := strings.TrimPrefix(err.Error(), gemini.ErrTransport.Error()+": ")
		return &ChatError{Message: "Failed to connect to Gemini API: " + cause, Err: err}
	case errors.Is(err, gemini.ErrInvalidJSON):
		return &ChatError{Message: "Invalid JSON response from Gemini API", Err: err}
	case errors.Is(err, gemini.ErrNoCandidates):
		return &ChatError{Message: "No candidates found in Gemini response", Err: err}
	case errors.Is(err, gemini.ErrMissingContent):
		return &ChatError{Message: "Gemini response content or parts missing", Err: err}
	case errors.Is(err, gemini.ErrMissingPartText):
		return &ChatError{Message: "Gemini response part missing 'text' key", Err: err}
	default:
		return &ChatError{Message: err.Error(), Err: err}
	}
}
