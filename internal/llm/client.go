// Package llm wraps the optional text-generation backend: scan summaries
// and remediation code suggestions. The scanner works without it.
//
// The LLM must never:
//   - Execute shell commands
//   - Control program flow
//   - Make AWS SDK calls
//
// It only summarises findings and drafts fixes for a human to review.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = "gpt-4o-mini"

	defaultMaxTokens = 2048

	// maxSummaryItems caps each list of a scan summary.
	maxSummaryItems = 5
)

// ErrLLMUnavailable is returned when no text-generation backend is
// configured.
var ErrLLMUnavailable = errors.New("text generation is not configured")

// chatClient is the subset of the OpenAI client the package uses.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config selects the backend. An empty APIKey disables it.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client talks to an OpenAI-compatible chat completion API.
// A nil *Client is valid and reports itself unavailable.
type Client struct {
	chat      chatClient
	model     string
	maxTokens int
}

// New returns a client for cfg, or nil when cfg has no API key.
func New(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newWithChat(openai.NewClientWithConfig(oc), cfg.Model)
}

func newWithChat(chat chatClient, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{chat: chat, model: model, maxTokens: defaultMaxTokens}
}

// Available reports whether a backend is configured.
func (c *Client) Available() bool {
	return c != nil && c.chat != nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// scanSummary is the JSON object the summary prompt asks for.
type scanSummary struct {
	TopIssues        []string `json:"topIssues"`
	RemediationSteps []string `json:"remediationSteps"`
}

// Summarize sends every check message of a scan and returns the recurring
// issues and the remediation steps the model proposes. A response that is
// not the expected JSON is an error; callers degrade it to empty lists.
func (c *Client) Summarize(ctx context.Context, messages []string) (analysis, steps []string, err error) {
	if !c.Available() {
		return nil, nil, ErrLLMUnavailable
	}

	text, err := c.complete(ctx, summarySystemPrompt, summaryUserPrompt(messages), true)
	if err != nil {
		return nil, nil, err
	}

	var out scanSummary
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
		return nil, nil, fmt.Errorf("decode summary: %w", err)
	}
	return truncate(out.TopIssues, maxSummaryItems), truncate(out.RemediationSteps, maxSummaryItems), nil
}

// GenerateFixCode returns the model's raw answer to a remediation prompt.
func (c *Client) GenerateFixCode(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", ErrLLMUnavailable
	}
	return c.complete(ctx, fixCodeSystemPrompt, prompt, false)
}

func (c *Client) complete(ctx context.Context, system, user string, jsonOut bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if jsonOut {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// Reasoning models take MaxCompletionTokens instead of MaxTokens.
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.chat.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("create chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// extractJSON returns the outermost {...} span of s, which drops Markdown
// fences and any prose around the object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func truncate(items []string, n int) []string {
	out := make([]string, 0, min(len(items), n))
	for _, it := range items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, it)
	}
	return out
}
