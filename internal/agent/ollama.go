package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultCallTimeout = 2 * time.Minute

// Ollama calls a local Ollama server's chat endpoint. One client serves
// every role; the role's system instruction is sent as the system message.
type Ollama struct {
	baseURL string
	model   string
	prompts SystemPrompts
	timeout time.Duration
	httpc   *http.Client
}

// OllamaOption customizes the client.
type OllamaOption func(*Ollama)

// WithHTTPClient overrides the internal HTTP client (tests, custom tracing).
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) {
		if c != nil {
			o.httpc = c
		}
	}
}

// WithTimeout sets the per-call deadline. Zero or negative keeps the default.
func WithTimeout(d time.Duration) OllamaOption {
	return func(o *Ollama) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewOllama builds a chat client for the given server and model.
func NewOllama(baseURL, model string, prompts SystemPrompts, opts ...OllamaOption) (*Ollama, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("agent: ollama base url is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("agent: model is required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("agent: system prompts are required")
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	client := &Ollama{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:   strings.TrimSpace(model),
		prompts: prompts,
		timeout: defaultCallTimeout,
		// The per-call context carries the deadline; Timeout stays zero so
		// slow body reads are not cut off separately.
		httpc: &http.Client{Timeout: 0, Transport: transport},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Messages []chatMessage  `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Call implements Caller.
func (o *Ollama) Call(ctx context.Context, role Role, input string) (string, error) {
	system, ok := o.prompts.System(role)
	if !ok {
		return "", fmt.Errorf("agent: no system prompt for role %s", role)
	}
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	payload, err := json.Marshal(chatRequest{
		Model:  o.model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: input},
		},
		Options: map[string]any{"temperature": 0.2},
	})
	if err != nil {
		return "", fmt.Errorf("agent: encode %s request: %w", role, err)
	}
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("agent: build %s request: %w", role, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("agent: %s call failed: %w", role, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("agent: read %s response: %w", role, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("agent: %s call returned http %d: %s", role, resp.StatusCode, truncate(string(body), 240))
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("agent: %s returned non-json payload", role)
	}
	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", errors.New("agent: empty response content")
	}
	return content, nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
