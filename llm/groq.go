package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const groqTimeout = 30 * time.Second

var groqModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"meta-llama/llama-4-scout-17b-16e-instruct",
}

// short names the web client sends
var groqAliases = map[string]string{
	"llama-3.3-70b": "llama-3.3-70b-versatile",
	"llama-3.1-8b":  "llama-3.1-8b-instant",
}

// GroqProvider uses the OpenAI chat completions API exposed by Groq.
type GroqProvider struct {
	client       *openai.Client
	defaultModel string
	visionModel  string
	timeout      time.Duration
	logger       *zap.Logger
}

func NewGroqProvider(apiKey, baseURL, defaultModel, visionModel string, logger *zap.Logger) *GroqProvider {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &GroqProvider{
		client:       &client,
		defaultModel: pickModel(defaultModel, groqModels, groqAliases, groqModels[0]),
		visionModel:  pickModel(visionModel, groqModels, groqAliases, groqModels[2]),
		timeout:      groqTimeout,
		logger:       logger,
	}
}

func (g *GroqProvider) Kind() ProviderKind {
	return KindGroq
}

func (g *GroqProvider) DefaultModel() string {
	return g.defaultModel
}

func (g *GroqProvider) Models() []string {
	return groqModels
}

func (g *GroqProvider) Generate(ctx context.Context, req Request) (string, error) {
	fallback := g.defaultModel
	if req.Image != nil {
		fallback = g.visionModel
	}
	modelName := pickModel(req.Options.Model, groqModels, groqAliases, fallback)

	var message openai.ChatCompletionMessageParamUnion
	if req.Image != nil {
		data, mimeType, err := readImage(req.Image)
		if err != nil {
			return "", invocationError(KindGroq, modelName, err)
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
		message = openai.ChatCompletionMessageParamUnion{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						{OfText: &openai.ChatCompletionContentPartTextParam{
							Text: req.Prompt,
						}},
						{OfImageURL: &openai.ChatCompletionContentPartImageParam{
							ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
								URL: dataURL,
							},
						}},
					},
				},
			},
		}
	} else {
		message = openai.UserMessage(req.Prompt)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{message},
	}
	if req.Options.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Options.Temperature))
	}
	if req.Options.TopP != nil {
		params.TopP = openai.Float(float64(*req.Options.TopP))
	}
	// Groq rejects json_object mode together with image input.
	if req.Options.JSON && req.Image == nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("Generating with Groq", zap.String("model", modelName), zap.Bool("image", req.Image != nil))
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", invocationError(KindGroq, modelName, err)
	}
	if len(resp.Choices) == 0 {
		return "", invocationError(KindGroq, modelName, fmt.Errorf("no choices in response"))
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", invocationError(KindGroq, modelName, ErrEmptyResponse)
	}

	g.logger.Debug("Groq response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}
