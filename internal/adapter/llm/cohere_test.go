package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ragchat/internal/adapter/httpx"
	"ragchat/internal/domain"
)

func newTestChat(t *testing.T, url string) *CohereChat {
	t.Helper()
	t.Setenv("TEST_CHAT_KEY", "secret")

	c, err := NewCohereChat(Config{
		APIKeyEnv:   "TEST_CHAT_KEY",
		Model:       "command-r",
		BaseURL:     url,
		Temperature: 0.1,
		Timeout:     5 * time.Second,
		Retry:       httpx.DefaultPolicy(1, time.Millisecond),
	})
	if err != nil {
		t.Fatalf("failed to create chat model: %v", err)
	}
	return c
}

func TestGenerateGroundedRequestShape(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Text: "Returns are accepted for 30 days.",
			Citations: []chatCitation{
				{Start: 0, End: 7, Text: "Returns", DocumentIDs: []string{"return_policy"}},
			},
		})
	}))
	defer srv.Close()

	c := newTestChat(t, srv.URL)

	docs := []domain.Document{
		{ID: "return_policy", Title: "Return Policy", Text: "30 day returns."},
		{ID: "shipping", Title: "Shipping", Text: "2 day shipping."},
	}
	answer, err := c.GenerateGrounded(context.Background(), "what is the return window", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Message != "what is the return window" {
		t.Errorf("expected prompt as message, got %q", got.Message)
	}
	if got.Preamble == "" {
		t.Error("expected a system preamble")
	}
	if got.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %v", got.Temperature)
	}
	if len(got.Documents) != 2 || got.Documents[0].ID != "return_policy" || got.Documents[0].Snippet != "30 day returns." {
		t.Errorf("unexpected grounding documents: %+v", got.Documents)
	}

	if answer.Text != "Returns are accepted for 30 days." {
		t.Errorf("unexpected text: %q", answer.Text)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].SourceIDs[0] != "return_policy" {
		t.Errorf("unexpected citations: %+v", answer.Citations)
	}
}

func TestGenerateGroundedNormalizesMissingCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Provider reply with no citations field at all.
		w.Write([]byte(`{"text":"I do not know."}`))
	}))
	defer srv.Close()

	c := newTestChat(t, srv.URL)

	answer, err := c.GenerateGrounded(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Citations == nil {
		t.Fatal("expected citations normalized to empty slice, got nil")
	}
	if len(answer.Citations) != 0 {
		t.Errorf("expected 0 citations, got %d", len(answer.Citations))
	}
}

func TestGenerateGroundedNormalizesNilSourceIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"hm","citations":[{"start":0,"end":2,"text":"hm"}]}`))
	}))
	defer srv.Close()

	c := newTestChat(t, srv.URL)

	answer, err := c.GenerateGrounded(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].SourceIDs == nil {
		t.Errorf("expected non-nil SourceIDs, got %+v", answer.Citations)
	}
}

func TestGenerateUngrounded(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(chatResponse{Text: "Visit the Faroe Islands."})
	}))
	defer srv.Close()

	c := newTestChat(t, srv.URL)

	text, err := c.Generate(context.Background(), "suggest a holiday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Visit the Faroe Islands." {
		t.Errorf("unexpected text: %q", text)
	}
	if len(got.Documents) != 0 {
		t.Errorf("expected no grounding documents, got %d", len(got.Documents))
	}
}

func TestGenerateGroundedProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"model overloaded"}`))
	}))
	defer srv.Close()

	c := newTestChat(t, srv.URL)

	if _, err := c.GenerateGrounded(context.Background(), "prompt", nil); err == nil {
		t.Fatal("expected error on provider failure")
	}
}
