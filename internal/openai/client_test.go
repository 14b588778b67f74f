package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteSendsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("model = %v", req["model"])
		}
		if rf, ok := req["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
			t.Errorf("response_format = %v", req["response_format"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  {\"score\": 7}  "}},
			},
		})
	}))
	t.Cleanup(server.Close)

	c := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})
	out, err := c.Complete(context.Background(), Params{
		Messages: []Message{
			{Role: "system", Content: "You grade essays."},
			{Role: "user", Content: "grade this"},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"score": 7}` {
		t.Errorf("content = %q, want trimmed JSON", out)
	}
}

func TestCompleteUnconfigured(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.Complete(context.Background(), Params{}); err == nil {
		t.Error("expected error without api key")
	}
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Rate limit reached"},
		})
	}))
	t.Cleanup(server.Close)

	c := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})
	_, err := c.Complete(context.Background(), Params{})
	if err == nil || err.Error() != "completion failed: Rate limit reached" {
		t.Errorf("err = %v", err)
	}
}
