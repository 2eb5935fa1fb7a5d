// Package scriptgen exposes script generation over HTTP: an inbound handler
// for /api/ai/generate-script and the outbound chat-completion client it
// proxies to.
package scriptgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ipstudio/pkg/domain"
)

// Request is the structured prompt forwarded to the chat-completion API.
type Request struct {
	Title        string            `json:"title"`
	Platform     domain.Platform   `json:"platform"`
	TopicCluster string            `json:"topicCluster,omitempty"`
	Format       string            `json:"format,omitempty"`
	Style        string            `json:"style,omitempty"`
	Evidences    []EvidenceSummary `json:"evidences,omitempty"`
	PersonaName  string            `json:"personaName,omitempty"`
	PersonaBio   string            `json:"personaBio,omitempty"`
}

// EvidenceSummary is the evidence subset shared with the upstream model.
type EvidenceSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpstreamError carries a non-2xx upstream status so the handler can proxy it.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// ErrEmptyReply indicates the upstream returned a well-formed response with no
// generated text.
var ErrEmptyReply = errors.New("scriptgen: empty ai reply")

// ErrParse indicates the upstream reply was not valid script JSON.
var ErrParse = errors.New("scriptgen: parse failed")

// ClientConfig configures the outbound chat-completion client.
type ClientConfig struct {
	Endpoint   string // chat-completion URL
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Client performs a single chat-completion call per request. No retry,
// no streaming, no caching.
type Client struct {
	cfg ClientConfig
}

// NewClient constructs a chat-completion client with defaults applied.
func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Client{cfg: cfg}
}

const systemPrompt = "You are a short-video script writer. Reply with a single JSON object " +
	`containing the keys "hook" (string), "outline" (string array), "fullScript" (string), ` +
	`and "shootingNotes" (string array). Reply with JSON only.`

func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s script titled %q.\n", req.Platform, req.Title)
	if req.TopicCluster != "" {
		fmt.Fprintf(&b, "Topic cluster: %s.\n", req.TopicCluster)
	}
	if req.Format != "" {
		fmt.Fprintf(&b, "Format: %s.\n", req.Format)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Style: %s.\n", req.Style)
	}
	if req.PersonaName != "" {
		fmt.Fprintf(&b, "The author persona is %s. %s\n", req.PersonaName, req.PersonaBio)
	}
	if len(req.Evidences) > 0 {
		b.WriteString("Weave in these evidence points:\n")
		for _, ev := range req.Evidences {
			fmt.Fprintf(&b, "- %s: %s\n", ev.Title, ev.Description)
		}
	}
	return b.String()
}

type chatPayload struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateScript performs one chat-completion call and returns the parsed
// script. The upstream reply must be a JSON object matching the fixed schema.
func (c *Client) GenerateScript(ctx context.Context, req Request) (domain.Script, error) {
	payload := chatPayload{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Script{}, fmt.Errorf("marshal chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Script{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Credential material is sent only as an Authorization header and is
	// never echoed in errors or response payloads.
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return domain.Script{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			return domain.Script{}, fmt.Errorf("read chat error body: %w", readErr)
		}
		return domain.Script{}, &UpstreamError{Status: res.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}

	var reply chatReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return domain.Script{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(reply.Choices) == 0 || strings.TrimSpace(reply.Choices[0].Message.Content) == "" {
		return domain.Script{}, ErrEmptyReply
	}

	var script struct {
		Hook          string   `json:"hook"`
		Outline       []string `json:"outline"`
		FullScript    string   `json:"fullScript"`
		ShootingNotes []string `json:"shootingNotes"`
	}
	if err := json.Unmarshal([]byte(reply.Choices[0].Message.Content), &script); err != nil {
		return domain.Script{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return domain.Script{
		Hook:          script.Hook,
		Outline:       script.Outline,
		FullScript:    script.FullScript,
		ShootingNotes: script.ShootingNotes,
	}, nil
}
