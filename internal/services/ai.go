package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var ErrAIServiceNotConfigured = errors.New("AI service is not configured")

// AIService writes prose recaps of summaries using OpenAI GPT
type AIService struct {
	client *openai.Client
	model  string
}

// NewAIService returns a service backed by the OpenAI API. An empty key
// yields a service whose calls fail with ErrAIServiceNotConfigured.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig allows pointing the client at another endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Enabled reports whether an API client is configured.
func (s *AIService) Enabled() bool {
	return s != nil && s.client != nil
}

// NarrateSummary asks the model for a short status-report paragraph
// describing the summary.
func (s *AIService) NarrateSummary(ctx context.Context, summary *Summary) (string, error) {
	if !s.Enabled() {
		return "", ErrAIServiceNotConfigured
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You write concise weekly status reports from timesheet data. Answer with plain prose, no lists, at most five sentences.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: narrativePrompt(summary),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func narrativePrompt(summary *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period: %s to %s\n", summary.StartDate, summary.EndDate)
	fmt.Fprintf(&b, "Total hours: %.2f\n\nHours per ticket:\n", summary.TotalHours)
	for _, t := range summary.Tickets {
		fmt.Fprintf(&b, "- %s: %.2f\n", t.TicketName, t.Hours)
	}

	b.WriteString("\nMemos:\n")
	for _, day := range summary.Daily {
		for _, e := range day.Entries {
			if e.Memo == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s %s: %s\n", day.Date, e.TicketName, e.Memo)
		}
	}
	return b.String()
}
