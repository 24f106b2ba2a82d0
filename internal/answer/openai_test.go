package answer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inkwell-labs/corpora/internal/models"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "Document 1 of 1: Policy") {
			t.Errorf("prompt missing document context: %s", req.Messages[1].Content)
		}
		if !strings.Contains(req.Messages[1].Content, "User Question: what is the policy?") {
			t.Errorf("prompt missing question: %s", req.Messages[1].Content)
		}
		if req.MaxTokens != 500 {
			t.Errorf("max_tokens: got %d", req.MaxTokens)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "The policy is X."}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Generate(context.Background(), "what is the policy?", "Document 1 of 1: Policy (5 bytes)\nstuff\n\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "The policy is X." {
		t.Errorf("answer: got %q", got)
	}
}

func TestClient_GenerateProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Generate(context.Background(), "q", "ctx")
	if !errors.Is(err, models.ErrProviderFailure) {
		t.Errorf("got %v, want ErrProviderFailure", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("missing API key should be rejected")
	}
	c, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ModelName() != "gpt-3.5-turbo" {
		t.Errorf("default model: got %s", c.ModelName())
	}
	if c.temperature != DefaultTemperature {
		t.Errorf("default temperature: got %v", c.temperature)
	}
}

func TestClient_ExplicitZeroTemperatureIsSent(t *testing.T) {
	var gotTemperature float64 = -1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatal(err)
		}
		field, ok := raw["temperature"]
		if !ok {
			t.Error("temperature missing from request payload")
		} else if err := json.Unmarshal(field, &gotTemperature); err != nil {
			t.Fatal(err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	zero := 0.0
	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Temperature: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Generate(context.Background(), "q", "ctx"); err != nil {
		t.Fatal(err)
	}
	if gotTemperature != 0 {
		t.Errorf("temperature: got %v, want explicit 0", gotTemperature)
	}
}
