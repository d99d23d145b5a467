package llm

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// ── test double ───────────────────────────────────────────────────────────────

type fakeChat struct {
	reply string
	err   error
	empty bool

	requests []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if f.empty {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
	}}, nil
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestNew_DisabledWithoutKey(t *testing.T) {
	c := New(Config{Model: "gpt-4o"})
	if c.Available() {
		t.Fatal("client without an API key must be unavailable")
	}
	if _, _, err := c.Summarize(context.Background(), []string{"x"}); !errors.Is(err, ErrLLMUnavailable) {
		t.Errorf("Summarize err = %v, want ErrLLMUnavailable", err)
	}
	if _, err := c.GenerateFixCode(context.Background(), "x"); !errors.Is(err, ErrLLMUnavailable) {
		t.Errorf("GenerateFixCode err = %v, want ErrLLMUnavailable", err)
	}
}

func TestNew_DefaultModel(t *testing.T) {
	if got := New(Config{APIKey: "sk-test"}).Model(); got != DefaultModel {
		t.Errorf("Model = %q, want %q", got, DefaultModel)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		wantAnalysis []string
		wantSteps    []string
		wantErr      bool
	}{
		{
			name:         "plain json",
			reply:        `{"topIssues":["Public S3 buckets"],"remediationSteps":["Enable Block Public Access"]}`,
			wantAnalysis: []string{"Public S3 buckets"},
			wantSteps:    []string{"Enable Block Public Access"},
		},
		{
			name:         "fenced json with prose",
			reply:        "Here you go:\n```json\n{\"topIssues\":[\"No MFA\"],\"remediationSteps\":[\"Enforce MFA\"]}\n```",
			wantAnalysis: []string{"No MFA"},
			wantSteps:    []string{"Enforce MFA"},
		},
		{
			name:         "blank items dropped and lists capped",
			reply:        `{"topIssues":["a"," ","b","c","d","e","f"],"remediationSteps":[]}`,
			wantAnalysis: []string{"a", "b", "c", "d", "e"},
			wantSteps:    []string{},
		},
		{
			name:    "not json",
			reply:   "I cannot help with that.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWithChat(&fakeChat{reply: tt.reply}, "gpt-4o-mini")
			analysis, steps, err := c.Summarize(context.Background(), []string{"m1", "m2"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Summarize: %v", err)
			}
			if !reflect.DeepEqual(analysis, tt.wantAnalysis) {
				t.Errorf("analysis = %#v, want %#v", analysis, tt.wantAnalysis)
			}
			if !reflect.DeepEqual(steps, tt.wantSteps) {
				t.Errorf("steps = %#v, want %#v", steps, tt.wantSteps)
			}
		})
	}
}

func TestSummarize_Request(t *testing.T) {
	chat := &fakeChat{reply: `{"topIssues":[],"remediationSteps":[]}`}
	c := newWithChat(chat, "gpt-4o-mini")
	if _, _, err := c.Summarize(context.Background(), []string{"EC2 check failed", "S3 check passed"}); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	req := chat.requests[0]
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("summary request must ask for a JSON object")
	}
	if req.MaxTokens != defaultMaxTokens || req.MaxCompletionTokens != 0 {
		t.Errorf("token limits = %d/%d", req.MaxTokens, req.MaxCompletionTokens)
	}
	user := req.Messages[1].Content
	if !strings.Contains(user, "- EC2 check failed\n") || !strings.Contains(user, "- S3 check passed\n") {
		t.Errorf("user prompt does not list every message:\n%s", user)
	}
}

func TestGenerateFixCode(t *testing.T) {
	chat := &fakeChat{reply: "aws s3api put-public-access-block ..."}
	c := newWithChat(chat, "o3-mini")

	got, err := c.GenerateFixCode(context.Background(), "block public access on bucket logs")
	if err != nil {
		t.Fatalf("GenerateFixCode: %v", err)
	}
	if got != chat.reply {
		t.Errorf("code = %q, want the raw reply", got)
	}
	req := chat.requests[0]
	if req.ResponseFormat != nil {
		t.Error("fix code request must not force JSON output")
	}
	if req.MaxCompletionTokens != defaultMaxTokens || req.MaxTokens != 0 {
		t.Errorf("reasoning model token limits = %d/%d", req.MaxTokens, req.MaxCompletionTokens)
	}
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChat
	}{
		{"backend error", &fakeChat{err: errors.New("429 too many requests")}},
		{"no choices", &fakeChat{empty: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWithChat(tt.chat, "")
			if _, err := c.GenerateFixCode(context.Background(), "x"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
