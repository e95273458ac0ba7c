package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/city_alert/internal/gemini"
	"github.com/shenikar/city_alert/internal/service/mocks"
	"github.com/shenikar/city_alert/internal/service/prompts"
)

func newTestChatService(t *testing.T) (ChatService, *mocks.MockGenerativeClient) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockGenerativeClient(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewChatService(client, logger), client
}

func decodeResponse(t *testing.T, raw string) *gemini.GenerateResponse {
	t.Helper()
	var resp gemini.GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestChat_PrependsInstructionAndRebuildsParts(t *testing.T) {
	service, client := newTestChatService(t)
	hello := "There is a fire on Elm St"
	history := []gemini.Content{
		{Role: "user", Parts: []gemini.Part{
			{Text: &hello, InlineData: &gemini.InlineData{MimeType: "image/png", Data: "aGVsbG8="}},
			{},
		}},
	}

	client.EXPECT().
		GenerateContent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
			require.Len(t, req.Contents, 3)

			assert.Equal(t, "user", req.Contents[0].Role)
			require.NotNil(t, req.Contents[0].Parts[0].Text)
			assert.Equal(t, prompts.IncidentAssistant(), *req.Contents[0].Parts[0].Text)

			assert.Equal(t, "model", req.Contents[1].Role)
			assert.Equal(t, prompts.Acknowledgement, *req.Contents[1].Parts[0].Text)

			// текст и изображение разнесены по отдельным частям, пустая часть отброшена
			userTurn := req.Contents[2]
			require.Len(t, userTurn.Parts, 2)
			assert.Equal(t, hello, *userTurn.Parts[0].Text)
			assert.Nil(t, userTurn.Parts[0].InlineData)
			assert.Nil(t, userTurn.Parts[1].Text)
			assert.Equal(t, "image/png", userTurn.Parts[1].InlineData.MimeType)

			assert.InDelta(t, 0.7, req.GenerationConfig.Temperature, 1e-9)
			assert.Equal(t, 800, req.GenerationConfig.MaxOutputTokens)

			return decodeResponse(t, `{"candidates":[{"content":{"parts":[{"text":"Okay, so I have that there is a fire"}]}}]}`), nil
		})

	text, err := service.Chat(context.Background(), history)

	require.NoError(t, err)
	assert.Equal(t, "Okay, so I have that there is a fire", text)
}

func TestChat_ErrorMessages(t *testing.T) {
	cases := []struct {
		name    string
		resp    string
		err     error
		message string
	}{
		{"missing key", "", gemini.ErrMissingAPIKey, "Gemini API key is not configured"},
		{"permission denied", "", &gemini.StatusError{StatusCode: http.StatusForbidden, Body: "denied"}, "permission denied"},
		{"upstream status", "", &gemini.StatusError{StatusCode: http.StatusServiceUnavailable}, "status 503"},
		{"transport", "", fmt.Errorf("%w: %v", gemini.ErrTransport, "connection refused"), "Failed to connect to Gemini API: connection refused"},
		{"invalid json", "", gemini.ErrInvalidJSON, "Invalid JSON response from Gemini API"},
		{"no candidates", `{"candidates":[]}`, nil, "No candidates found in Gemini response"},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, nil, "Gemini response content or parts missing"},
		{"no text", `{"candidates":[{"content":{"parts":[{}]}}]}`, nil, "Gemini response part missing 'text' key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, client := newTestChatService(t)
			if tc.err != nil {
				client.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			} else {
				client.EXPECT().GenerateContent(gomock.Any(), gomock.Any()).Return(decodeResponse(t, tc.resp), nil)
			}

			text, err := service.Chat(context.Background(), nil)

			assert.Empty(t, text)
			var chatErr *ChatError
			require.ErrorAs(t, err, &chatErr)
			assert.Contains(t, chatErr.Message, tc.message)
		})
	}
}

func TestChat_UnreachableUpstreamDoesNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	client := gemini.NewClient(endpoint, "SUPER-SECRET-KEY", time.Second, logger)
	service := NewChatService(client, logger)

	text := "hello"
	_, err := service.Chat(context.Background(), []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: &text}}}})

	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Contains(t, chatErr.Message, "Failed to connect to Gemini API")
	assert.NotContains(t, chatErr.Message, "SUPER-SECRET-KEY")
	assert.NotContains(t, chatErr.Message, endpoint)
}
