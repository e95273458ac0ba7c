package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func textPart(s string) Part {
	return Part{Text: &s}
}

func TestGenerateContent_Success(t *testing.T) {
	var received GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello there"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second, newTestLogger())
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		Contents:         []Content{{Role: "user", Parts: []Part{textPart("hi")}}},
		GenerationConfig: GenerationConfig{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 800},
	})
	require.NoError(t, err)

	text, err := resp.FirstText()
	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
	require.Len(t, received.Contents, 1)
	assert.Equal(t, 800, received.GenerationConfig.MaxOutputTokens)
}

func TestGenerateContent_MissingKey(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", time.Second, newTestLogger())
	_, err := client.GenerateContent(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, client.Configured())
}

func TestGenerateContent_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second, newTestLogger())
	_, err := client.GenerateContent(context.Background(), GenerateRequest{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "PERMISSION_DENIED")
}

func TestGenerateContent_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second, newTestLogger())
	_, err := client.GenerateContent(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestGenerateContent_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewClient(endpoint, "secret", time.Second, newTestLogger())
	_, err := client.GenerateContent(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFirstText_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"no candidates", `{"candidates":[]}`, ErrNoCandidates},
		{"no content", `{"candidates":[{}]}`, ErrMissingContent},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, ErrMissingContent},
		{"no text", `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`, ErrMissingPartText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp GenerateResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &resp))
			_, err := resp.FirstText()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGenerateContent_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL + "/v1beta/models/gemini:generateContent"
	srv.Close()
	client := NewClient(endpoint, "SUPER-SECRET-KEY", time.Second, newTestLogger())

	_, err := client.GenerateContent(context.Background(), GenerateRequest{})

	require.ErrorIs(t, err, ErrTransport)
	assert.NotContains(t, err.Error(), "SUPER-SECRET-KEY")
	assert.NotContains(t, err.Error(), endpoint)
}
