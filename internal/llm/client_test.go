package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnswer(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  the patient has diabetes \n"}}]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-model")
	answer, err := client.Answer(context.Background(), "what condition?", "patient report text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "the patient has diabetes" {
		t.Errorf("answer = %q, want trimmed content", answer)
	}

	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", gotBody["model"])
	}
	messages := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	user := messages[1].(map[string]any)
	content, _ := user["content"].(string)
	if !strings.Contains(content, "patient report text") {
		t.Errorf("user message missing document text: %q", content)
	}
	if !strings.Contains(content, "what condition?") {
		t.Errorf("user message missing question: %q", content)
	}
}

func TestAnswerServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-model")
	if _, err := client.Answer(context.Background(), "q", "doc"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestAnswerNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-model")
	if _, err := client.Answer(context.Background(), "q", "doc"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestIsRunning(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			w.WriteHeader(404)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-model")
	if !client.IsRunning(context.Background()) {
		t.Error("IsRunning = false, want true")
	}

	ts.Close()
	if client.IsRunning(context.Background()) {
		t.Error("IsRunning = true after server close, want false")
	}
}
