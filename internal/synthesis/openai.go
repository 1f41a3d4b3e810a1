// internal/synthesis/openai.go

package synthesis

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "livestock-advisor/internal/common/errors"
)

const systemPrompt = `Tu es un conseiller technique en élevage avicole. ` +
	`Réponds en français, de façon concise et pratique, en t'appuyant ` +
	`uniquement sur les références fournies. Ne jamais inventer de chiffres.`

// OpenAISynthesizer writes answers through a chat-completion endpoint.
type OpenAISynthesizer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAISynthesizer(apiKey, baseURL, model string, maxTokens int, temperature float32) *OpenAISynthesizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISynthesizer{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (s *OpenAISynthesizer) Name() string { return "openai" }

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, req Request) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return "", apperrors.NewCompletionFailedError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperrors.NewCompletionFailedError(fmt.Errorf("empty completion"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt lays out the question, the known context and the numbered
// evidence passages.
func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question : %s\n", req.Question)

	if len(req.Entities) > 0 {
		b.WriteString("Contexte connu :\n")
		for _, key := range []string{"breed", "age_days", "sex", "weight_grams", "symptoms"} {
			if v, ok := req.Entities[key]; ok && v != nil {
				fmt.Fprintf(&b, "- %s : %v\n", key, v)
			}
		}
	}

	if len(req.Evidence) > 0 {
		b.WriteString("Références :\n")
		for i, hit := range req.Evidence {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, hit.Content)
		}
	} else {
		b.WriteString("Aucune référence disponible : donne un conseil général prudent.\n")
	}

	if req.Hedged {
		b.WriteString("Le contexte est incomplet : précise les hypothèses faites et les informations qui affineraient la réponse.\n")
	}
	return b.String()
}
