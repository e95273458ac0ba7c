package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAPIKey   = errors.New("gemini api key is not configured")
	ErrTransport       = errors.New("failed to connect to gemini api")
	ErrInvalidJSON     = errors.New("invalid json response from gemini api")
	ErrNoCandidates    = errors.New("no candidates found in gemini response")
	ErrMissingContent  = errors.New("gemini response content or parts missing")
	ErrMissingPartText = errors.New("gemini response part missing 'text' key")
)

const (
	maxErrorBodySnippet = 512
	apiKeyHeader        = "x-goog-api-key"
)

// StatusError - ответ Gemini с кодом вне диапазона 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini api returned status %d: %s", e.StatusCode, e.Body)
}

// InlineData - бинарные данные (изображение) внутри части сообщения
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part - часть реплики: текст и/или встроенные данные
type Part struct {
	Text       *string     `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// Content - одна реплика диалога
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// GenerationConfig - параметры сэмплирования
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GenerateRequest - тело запроса generateContent
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// GenerateResponse - интересующая нас часть ответа generateContent
type GenerateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// FirstText извлекает текст первой части первого кандидата
func (r *GenerateResponse) FirstText() (string, error) {
	if r == nil || len(r.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", ErrMissingContent
	}
	if content.Parts[0].Text == nil {
		return "", ErrMissingPartText
	}
	return *content.Parts[0].Text, nil
}

// Client - HTTP-клиент Gemini generateContent
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(endpoint, apiKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Configured сообщает, задан ли API-ключ
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GenerateContent отправляет диалог в Gemini и разбирает ответ
func (c *Client) GenerateContent(ctx context.Context, request GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	if _, err := url.Parse(c.endpoint); err != nil {
		return nil, fmt.Errorf("invalid gemini url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	c.logger.WithFields(logrus.Fields{
		"component":   "gemini",
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
		"turns":       len(request.Contents),
	}).Debug("Gemini call completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBodySnippet {
			snippet = snippet[:maxErrorBodySnippet]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var decoded GenerateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return &decoded, nil
}

// transportError отбрасывает из *url.Error метод и адрес запроса, оставляя только причину
func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
