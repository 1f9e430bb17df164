package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/config"
)

func TestOpenAICompleteSendsSystemAndUser(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "sk-test", "")
	out, err := c.Complete(context.Background(), "sys", "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "hello"}, got.Messages[1])
}

func TestOpenAICompleteErrorStatusIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "k", "m").Complete(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "k", "m").Complete(context.Background(), "", "hi")
	assert.Error(t, err)
}

func TestNewFallsBackToDisabled(t *testing.T) {
	log := zap.NewNop()
	for _, cfg := range []config.LLMConfig{
		{Provider: ""},
		{Provider: "none"},
		{Provider: "gemini"},
		{Provider: "openai"},
		{Provider: "mystery"},
	} {
		c, err := New(context.Background(), cfg, log)
		require.NoError(t, err)
		assert.IsType(t, Disabled{}, c, cfg.Provider)
	}

	c, err := New(context.Background(), config.LLMConfig{Provider: "OpenAI", OpenAIAPIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)
}

func TestDisabledAlwaysFails(t *testing.T) {
	_, err := Disabled{}.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, Disabled{}.Close())
}
