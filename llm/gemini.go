package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const geminiTimeout = 60 * time.Second

var geminiModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// GeminiProvider wraps the genai client. Sampling defaults to temperature
// 0.9, top_p 0.95 and top_k 40 unless the request overrides them.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	visionModel  string
	timeout      time.Duration
	logger       *zap.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, defaultModel, visionModel string, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:       client,
		defaultModel: pickModel(defaultModel, geminiModels, nil, geminiModels[0]),
		visionModel:  pickModel(visionModel, geminiModels, nil, geminiModels[0]),
		timeout:      geminiTimeout,
		logger:       logger,
	}, nil
}

func (g *GeminiProvider) Kind() ProviderKind {
	return KindGemini
}

func (g *GeminiProvider) DefaultModel() string {
	return g.defaultModel
}

func (g *GeminiProvider) Models() []string {
	return geminiModels
}

func (g *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	fallback := g.defaultModel
	if req.Image != nil {
		fallback = g.visionModel
	}
	modelName := pickModel(req.Options.Model, geminiModels, nil, fallback)

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Image != nil {
		data, mimeType, err := readImage(req.Image)
		if err != nil {
			return "", invocationError(KindGemini, modelName, err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}})
	}

	config := &genai.GenerateContentConfig{
		Temperature: float32Ptr(0.9),
		TopP:        float32Ptr(0.95),
		TopK:        float32Ptr(40),
	}
	if req.Options.Temperature != nil {
		config.Temperature = req.Options.Temperature
	}
	if req.Options.TopP != nil {
		config.TopP = req.Options.TopP
	}
	if req.Options.TopK != nil {
		config.TopK = req.Options.TopK
	}
	if req.Options.JSON {
		config.ResponseMIMEType = "application/json"
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.Bool("image", req.Image != nil),
		zap.Bool("json_mode", req.Options.JSON),
	)
	resp, err := g.client.Models.GenerateContent(ctx, modelName, []*genai.Content{
		{Role: "user", Parts: parts},
	}, config)
	if err != nil {
		return "", invocationError(KindGemini, modelName, err)
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		if reason := blockReason(resp); reason != "" {
			return "", invocationError(KindGemini, modelName, fmt.Errorf("response blocked: %s", reason))
		}
		return "", invocationError(KindGemini, modelName, ErrEmptyResponse)
	}

	if resp.UsageMetadata != nil {
		g.logger.Debug("Gemini response received",
			zap.Int("length", len(text)),
			zap.Int32("input_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("output_tokens", resp.UsageMetadata.CandidatesTokenCount),
		)
	}
	return text, nil
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || resp.PromptFeedback == nil {
		return ""
	}
	return string(resp.PromptFeedback.BlockReason)
}
