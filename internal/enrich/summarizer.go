package enrich

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dalebar/viaductecho-backend/internal/logger"
)

const summarySystemPrompt = "You summarise the user-provided text. Output the summary only, " +
	"no preamble or follow-up questions. ≤200 words, shorter if clear. Informal, friendly, " +
	"polite. Subtle Manchester UK vibe in phrasing. Professional, unbiased, UK spelling."

// chatClient is the slice of the OpenAI client the summarizer uses.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer produces short reader-facing summaries of article content.
type Summarizer struct {
	client chatClient
	model  string
	log    logger.Logger
}

func NewSummarizer(apiKey string, log logger.Logger) *Summarizer {
	return &Summarizer{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
		log:    log,
	}
}

// Summarize asks the model for a summary. On any API failure it falls
// back to a truncated excerpt so the pipeline keeps moving.
func (s *Summarizer) Summarize(ctx context.Context, content string) string {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: 250,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		s.log.Error("ai summarization failed, using excerpt", logger.Error(err))
		return excerpt(content)
	}

	s.log.Info("ai summary generated")
	return resp.Choices[0].Message.Content
}

func excerpt(content string) string {
	if len(content) > 200 {
		return content[:200] + "..."
	}
	return content
}
