package explain

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"finbot/internal/core"
	applog "finbot/internal/log"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

const maxTokens = 512

// ErrEmptyAnswer is returned when the model produced no text.
var ErrEmptyAnswer = errors.New("empty explanation")

// messagesAPI is the part of the Anthropic client the provider uses.
type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Anthropic narrates results with the Messages API.
type Anthropic struct {
	messages messagesAPI
	model    string
}

// NewAnthropic creates a provider authenticated with apiKey.
func NewAnthropic(apiKey, model string) *Anthropic {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newAnthropic(&client.Messages, model)
}

func newAnthropic(messages messagesAPI, model string) *Anthropic {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Anthropic{messages: messages, model: model}
}

// Model returns the configured model name.
func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Explain(ctx context.Context, summary core.RecommendationSummary, goal *core.GoalPlan) (string, error) {
	msg, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(summary, goal))),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyAnswer
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentExplain).DebugContext(ctx, "Explanation generated",
		applog.FieldProvider, "anthropic",
		applog.FieldModel, a.model,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens)
	return text, nil
}
