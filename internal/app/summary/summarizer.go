package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Summarizer produces an AI-generated summary for a transcript. Invoked only
// when the user has opted in; failures are logged by callers and never affect
// job or recording status.
type Summarizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAISummarizer implements Summarizer with the OpenAI chat completion API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer creates a summarizer using the given API key and model.
func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (s *OpenAISummarizer) Generate(ctx context.Context, prompt string) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt assembles the summarization prompt for a transcript.
func BuildPrompt(title, fullText string) string {
	var b strings.Builder
	b.WriteString("Summarize the following audio transcription in a few short paragraphs. ")
	b.WriteString("Answer in the language of the transcript.\n\n")
	if title != "" {
		b.WriteString("Title: " + title + "\n\n")
	}
	b.WriteString(fullText)
	return b.String()
}
