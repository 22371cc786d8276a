package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubPrompts map[Role]string

func (p stubPrompts) System(role Role) (string, bool) {
	s, ok := p[role]
	return s, ok
}

func TestOllamaCallSendsSystemAndUserMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"content": "  Proposed Answer: 42  "},
		})
	}))
	defer srv.Close()

	client, err := NewOllama(srv.URL, "phi3", stubPrompts{RoleBoss: "you are the boss"})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	out, err := client.Call(context.Background(), RoleBoss, "Problem: 6*7")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out != "Proposed Answer: 42" {
		t.Fatalf("out = %q", out)
	}
	if got.Model != "phi3" || got.Stream {
		t.Fatalf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "you are the boss" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "Problem: 6*7" {
		t.Fatalf("user message = %+v", got.Messages[1])
	}
}

func TestOllamaCallErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()
		client, err := NewOllama(srv.URL, "phi3", stubPrompts{RoleQA: "judge"})
		if err != nil {
			t.Fatalf("NewOllama: %v", err)
		}
		if _, err := client.Call(context.Background(), RoleQA, "x"); err == nil {
			t.Fatal("expected error on http 404")
		}
	})
	t.Run("missing role prompt", func(t *testing.T) {
		client, err := NewOllama("http://localhost:11434", "phi3", stubPrompts{})
		if err != nil {
			t.Fatalf("NewOllama: %v", err)
		}
		if _, err := client.Call(context.Background(), RoleSkeptic, "x"); err == nil {
			t.Fatal("expected error for unknown role")
		}
	})
	t.Run("empty content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]any{"content": "   "}})
		}))
		defer srv.Close()
		client, err := NewOllama(srv.URL, "phi3", stubPrompts{RoleBoss: "boss"})
		if err != nil {
			t.Fatalf("NewOllama: %v", err)
		}
		if _, err := client.Call(context.Background(), RoleBoss, "x"); err == nil {
			t.Fatal("expected error for empty content")
		}
	})
	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()
		client, err := NewOllama(srv.URL, "phi3", stubPrompts{RoleBoss: "boss"}, WithTimeout(20*time.Millisecond))
		if err != nil {
			t.Fatalf("NewOllama: %v", err)
		}
		if _, err := client.Call(context.Background(), RoleBoss, "x"); err == nil {
			t.Fatal("expected timeout error")
		}
	})
}
