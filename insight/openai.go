package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 20 * time.Second
)

const systemPrompt = `You are an SEO consultant. Given a web page's URL, title, meta description and a sample of its visible text, reply with a single JSON object containing:
"summary": a two or three sentence assessment of the page,
"strengths": an array of short strings,
"weaknesses": an array of short strings,
"suggestedKeywords": an array of keyword phrases the page should target.`

// OpenAIOptions configures an OpenAIProvider.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIProvider asks an OpenAI compatible chat completion endpoint for insights.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

var errNoChoices = errors.New("completion returned no choices")

// NewOpenAIProvider returns nil when no API key is configured, which disables
// the insight step.
func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(cfg),
		model:   opts.Model,
		timeout: opts.Timeout,
	}
}

// AnalyzeSEO implements Provider.
func (p *OpenAIProvider) AnalyzeSEO(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errNoChoices
	}

	return Result{Success: true, Data: decodeReply(resp.Choices[0].Message.Content)}, nil
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", req.URL)
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	fmt.Fprintf(&b, "Meta description: %s\n", req.MetaDescription)
	fmt.Fprintf(&b, "Visible text sample:\n%s\n", req.BodySample)
	return b.String()
}

// decodeReply keeps a JSON object reply as is and wraps anything else as a summary.
func decodeReply(content string) map[string]any {
	content = strings.TrimSpace(content)

	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err == nil && data != nil {
		return data
	}
	return map[string]any{"summary": content}
}
