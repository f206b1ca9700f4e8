package gemini

import (
	"fmt"
	"strings"

	"github.com/newsloom/newsloom/internal/llm"
)

type generateContentRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

func buildGenerateRequest(req *llm.Request) (*generateContentRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	contents := make([]geminiContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role, err := convertRole(msg.Role)
		if err != nil {
			return nil, err
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Text}},
		})
	}

	payload := &generateContentRequest{Contents: contents}

	if system := strings.TrimSpace(req.System); system != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		payload.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	return payload, nil
}

func convertRole(role string) (string, error) {
	switch role {
	case llm.RoleUser, "":
		return "user", nil
	case llm.RoleModel, "assistant":
		return "model", nil
	default:
		return "", fmt.Errorf("unsupported message role: %s", role)
	}
}
