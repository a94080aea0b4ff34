package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterGenerateJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "RecruitAI", r.Header.Get("X-Title"))

		var req chatCompletionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":"{\"overall_match\":{}}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient("sk-test", server.URL, "test-model", "RecruitAI", "")
	body, err := client.GenerateJSON(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, `{"overall_match":{}}`, body)
}

func TestOpenRouterClassifiesFailures(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusServiceUnavailable, KindUnavailable},
		{http.StatusBadGateway, KindUnavailable},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))

		client := NewOpenRouterClient("sk-test", server.URL, "m", "", "")
		_, err := client.GenerateJSON(context.Background(), "s", "u")
		server.Close()

		require.Error(t, err)
		assert.Equal(t, tc.kind, KindOf(err), "status %d", tc.status)
	}
}

func TestOpenRouterEmptyChoicesIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenRouterClient("sk-test", server.URL, "m", "", "").GenerateJSON(context.Background(), "s", "u")

	assert.Equal(t, KindMalformedResponse, KindOf(err))
}

func TestOpenRouterMissingKey(t *testing.T) {
	_, err := NewOpenRouterClient("", "http://unused", "m", "", "").GenerateJSON(context.Background(), "s", "u")

	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestOpenRouterTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewOpenRouterClient("sk-test", url, "m", "", "").GenerateJSON(context.Background(), "s", "u")

	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, ScoringRetryable(err))
}

func TestOpenRouterChatForwardsConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chat-model", req.Model)
		assert.Nil(t, req.ResponseFormat)
		assert.Equal(t, []chatMessage{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "who fits?"},
		}, req.Messages)

		_, _ = w.Write([]byte(`{"id":"2","choices":[{"message":{"role":"assistant","content":"Jane fits."}}]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient("sk-test", server.URL, "chat-model", "", "")
	reply, err := client.Chat(context.Background(), "be helpful", []ChatTurn{
		{Role: ChatRoleUser, Content: "hi"},
		{Role: ChatRoleAssistant, Content: "hello"},
		{Role: ChatRoleUser, Content: "who fits?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane fits.", reply)
}
