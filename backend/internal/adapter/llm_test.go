package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lore-keeper/backend/pkg/errors"
)

// fakeLLM serves /v1/chat/completions with a fixed reply and counts requests
func fakeLLM(t *testing.T, status int, content string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLLMAdapter_Complete(t *testing.T) {
	srv, calls := fakeLLM(t, http.StatusOK, "Hello there.")
	a := NewLLMAdapter(srv.URL, "", "test-model", 256)

	out, err := a.Complete(context.Background(), "You are terse.", "Say hello.")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", out)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestLLMAdapter_CompleteDoesNotRetry(t *testing.T) {
	srv, calls := fakeLLM(t, http.StatusServiceUnavailable, "")
	a := NewLLMAdapter(srv.URL, "key", "test-model", 256)

	_, err := a.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))

	var te *apperrors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestLLMAdapter_CompleteJSON(t *testing.T) {
	srv, _ := fakeLLM(t, http.StatusOK, "Here you go:\n```json\n{\"suggestions\": [\"a\"]}\n```")
	a := NewLLMAdapter(srv.URL, "", "test-model", 256)

	raw, err := a.CompleteJSON(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"suggestions": ["a"]}`, string(raw))

	srv, _ = fakeLLM(t, http.StatusOK, "I cannot help with that.")
	a = NewLLMAdapter(srv.URL, "", "test-model", 256)
	_, err = a.CompleteJSON(context.Background(), "sys", "user")
	assert.True(t, apperrors.IsMalformedResponse(err))
}

func TestLLMAdapter_SetModel(t *testing.T) {
	a := NewLLMAdapter("http://localhost:4000", "", "first", 0)
	a.SetModel("")
	assert.Equal(t, "first", a.GetModel())
	a.SetModel("second")
	assert.Equal(t, "second", a.GetModel())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"is_consistent": true, "warnings": []}`, `{"is_consistent": true, "warnings": []}`, false},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"fenced no tag", "```\n[1, 2]\n```", `[1, 2]`, false},
		{"prose around", `Sure! {"a": {"b": 2}} Hope that helps.`, `{"a": {"b": 2}}`, false},
		{"array", `["x", "y"]`, `["x", "y"]`, false},
		{"no json", `nothing here`, "", true},
		{"broken", `{"a": `, "", true},
		{"empty", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.wantErr {
				assert.True(t, apperrors.IsMalformedResponse(err))
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
