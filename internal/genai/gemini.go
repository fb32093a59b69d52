package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/config"
)

// GeminiClient implements Generator against the Google Generative Language
// REST API.
type GeminiClient struct {
	http         *resty.Client
	apiKey       string
	defaultModel string
	logger       *zap.Logger
}

var _ Generator = (*GeminiClient)(nil)

func NewGeminiClient(cfg config.GenAIConfig, logger *zap.Logger) *GeminiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.APIKey == "" {
		logger.Warn("generative model client not configured: missing API key",
			zap.Strings("tried_env_vars", []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "GOOGLE_GENAI_API_KEY"}))
	}

	return &GeminiClient{
		http:         client,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		logger:       logger,
	}
}

func (c *GeminiClient) DefaultModel() string {
	return c.defaultModel
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt to the model and returns the concatenated text of
// the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if model == "" {
		model = c.defaultModel
	}

	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
	if err != nil {
		return "", fmt.Errorf("call generative model: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("generative model returned %s: %s", resp.Status(), out.Error.Message)
		}
		return "", fmt.Errorf("generative model returned %s", resp.Status())
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	answer := sb.String()
	if strings.TrimSpace(answer) == "" {
		c.logger.Warn("generative model returned an empty answer", zap.String("model", model))
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
