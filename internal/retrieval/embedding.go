// internal/retrieval/embedding.go
package retrieval

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedding returns an embedding function backed by the OpenAI
// embeddings API, for use with vector sources. An empty baseURL keeps the
// default endpoint; an empty model selects text-embedding-3-small.
func OpenAIEmbedding(apiKey, baseURL, model string) chromem.EmbeddingFunc {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	client := openai.NewClientWithConfig(cfg)

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("embedding response was empty")
		}
		return resp.Data[0].Embedding, nil
	}
}
