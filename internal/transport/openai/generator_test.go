package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// openaiChatResponse mirrors the OpenAI-compatible API chat completion response.
type openaiChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func chatResponse(content string) openaiChatResponse {
	resp := openaiChatResponse{ID: "chatcmpl-1", Object: "chat.completion", Model: "test-model"}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}{Index: 0, FinishReason: "stop"})
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = content
	return resp
}

func TestGenerator_Generate(t *testing.T) {
	var gotReq struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("The transformer uses attention."))
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	text, err := gen.Generate(context.Background(), "What is a transformer?", domain.GenerateOptions{
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if text != "The transformer uses attention." {
		t.Errorf("unexpected completion text: %q", text)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q, expected test-model", gotReq.Model)
	}
	if gotReq.MaxTokens != 1024 {
		t.Errorf("request max_tokens = %d, expected 1024", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", gotReq.Messages)
	}
	if gotReq.Messages[0].Content != "What is a transformer?" {
		t.Errorf("unexpected prompt: %q", gotReq.Messages[0].Content)
	}
}

func TestGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openaiChatResponse{ID: "chatcmpl-1", Object: "chat.completion"})
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := gen.Generate(context.Background(), "hello", domain.GenerateOptions{MaxTokens: 64})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "model overloaded",
				"type":    "server_error",
			},
		})
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := gen.Generate(context.Background(), "hello", domain.GenerateOptions{MaxTokens: 64})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerator_Model(t *testing.T) {
	gen := NewGenerator(&GeneratorConfig{
		APIKey: "test-key",
		Model:  "gpt-4o-mini",
		Logger: zap.NewNop(),
	})

	if gen.Model() != "gpt-4o-mini" {
		t.Errorf("Model() = %q, expected gpt-4o-mini", gen.Model())
	}
}
