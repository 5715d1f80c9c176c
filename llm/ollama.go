package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const ollamaTimeout = 90 * time.Second

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Images  []string       `json:"images,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

// OllamaProvider talks to a local Ollama server through its /api/generate
// endpoint.
type OllamaProvider struct {
	url         string
	model       string
	visionModel string
	httpClient  *http.Client
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOllamaProvider(url, model, visionModel string, logger *zap.Logger) *OllamaProvider {
	return &OllamaProvider{
		url:         url,
		model:       model,
		visionModel: visionModel,
		httpClient:  &http.Client{},
		timeout:     ollamaTimeout,
		logger:      logger,
	}
}

func (p *OllamaProvider) Kind() ProviderKind {
	return KindOllama
}

func (p *OllamaProvider) DefaultModel() string {
	return p.model
}

func (p *OllamaProvider) Models() []string {
	if p.visionModel == "" || p.visionModel == p.model {
		return []string{p.model}
	}
	return []string{p.model, p.visionModel}
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Options.Model
	if model == "" {
		model = p.model
		if req.Image != nil && p.visionModel != "" {
			model = p.visionModel
		}
	}

	body := ollamaRequest{
		Model:  model,
		Prompt: req.Prompt,
		Stream: false,
	}
	if req.Options.JSON {
		body.Format = "json"
	}
	if req.Image != nil {
		data, _, err := readImage(req.Image)
		if err != nil {
			return "", invocationError(KindOllama, model, err)
		}
		body.Images = []string{base64.StdEncoding.EncodeToString(data)}
	}
	options := map[string]any{}
	if req.Options.Temperature != nil {
		options["temperature"] = *req.Options.Temperature
	}
	if req.Options.TopP != nil {
		options["top_p"] = *req.Options.TopP
	}
	if req.Options.TopK != nil {
		options["top_k"] = *req.Options.TopK
	}
	if len(options) > 0 {
		body.Options = options
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", invocationError(KindOllama, model, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", invocationError(KindOllama, model, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug("Generating with Ollama", zap.String("model", model), zap.Bool("image", req.Image != nil))
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", invocationError(KindOllama, model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", invocationError(KindOllama, model, fmt.Errorf("failed to read response body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", invocationError(KindOllama, model, fmt.Errorf("status code %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var decoded ollamaResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", invocationError(KindOllama, model, fmt.Errorf("invalid response envelope: %w", err))
	}
	if decoded.Error != "" {
		return "", invocationError(KindOllama, model, fmt.Errorf("%s", decoded.Error))
	}
	if decoded.Response == nil {
		return "", invocationError(KindOllama, model, fmt.Errorf("response field missing"))
	}
	if *decoded.Response == "" {
		return "", invocationError(KindOllama, model, ErrEmptyResponse)
	}

	p.logger.Debug("Ollama response received", zap.Int("length", len(*decoded.Response)))
	return *decoded.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
