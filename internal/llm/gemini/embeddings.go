package gemini

import (
	"context"
	"fmt"
	"strings"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = "embedding-001"

type embedContentRequest struct {
	Model   string        `json:"model,omitempty"`
	Content geminiContent `json:"content"`
}

type embedContentResponse struct {
	Embedding contentEmbedding `json:"embedding"`
}

type contentEmbedding struct {
	Values []float64 `json:"values"`
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []contentEmbedding `json:"embeddings"`
}

// EmbedContent converts one text into its embedding vector.
func (c *Client) EmbedContent(ctx context.Context, model, text string) ([]float64, error) {
	if c == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}

	model = normalizeEmbeddingModel(model)
	payload := &embedContentRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	var parsed embedContentResponse
	endpoint := fmt.Sprintf("/v1beta/models/%s:embedContent", model)
	if err := c.post(ctx, endpoint, payload, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return parsed.Embedding.Values, nil
}

// BatchEmbedContents converts several texts in one call.
func (c *Client) BatchEmbedContents(ctx context.Context, model string, texts []string) ([][]float64, error) {
	if c == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	model = normalizeEmbeddingModel(model)
	requests := make([]embedContentRequest, 0, len(texts))
	for _, text := range texts {
		requests = append(requests, embedContentRequest{
			Model:   "models/" + model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		})
	}

	var parsed batchEmbedResponse
	endpoint := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", model)
	if err := c.post(ctx, endpoint, &batchEmbedRequest{Requests: requests}, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Embeddings))
	}

	vectors := make([][]float64, 0, len(parsed.Embeddings))
	for _, embedding := range parsed.Embeddings {
		vectors = append(vectors, embedding.Values)
	}
	return vectors, nil
}

func normalizeEmbeddingModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return DefaultEmbeddingModel
	}
	return strings.TrimPrefix(model, "models/")
}
