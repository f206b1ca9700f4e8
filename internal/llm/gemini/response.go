package gemini

import (
	"fmt"
	"strings"

	"github.com/newsloom/newsloom/internal/llm"
)

type generateContentResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

type candidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func toDriverResponse(resp *generateContentResponse) (*llm.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response candidates")
	}

	first := resp.Candidates[0]
	texts := make([]string, 0, len(first.Content.Parts))
	for _, part := range first.Content.Parts {
		texts = append(texts, part.Text)
	}

	response := &llm.Response{
		Text:         strings.Join(texts, ""),
		FinishReason: first.FinishReason,
	}

	if resp.UsageMetadata != nil {
		response.Usage = &llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return response, nil
}
