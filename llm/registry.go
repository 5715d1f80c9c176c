package llm

import (
	"context"

	"dripmateapi/config"

	"go.uber.org/zap"
)

type ProviderStatus struct {
	Name         ProviderKind `json:"name"`
	Available    bool         `json:"available"`
	DefaultModel string       `json:"default_model"`
	Models       []string     `json:"models"`
	Reason       string       `json:"reason,omitempty"`
}

// Registry holds the providers configured at startup. It is read-only after
// construction and safe to share between requests.
type Registry struct {
	providers   map[ProviderKind]Provider
	reasons     map[ProviderKind]string
	defaultKind ProviderKind
}

func NewRegistry(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) *Registry {
	r := &Registry{
		providers: map[ProviderKind]Provider{},
		reasons:   map[ProviderKind]string{},
	}

	r.providers[KindOllama] = NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaVisionModel, logger)

	if cfg.GeminiAPIKey == "" {
		r.reasons[KindGemini] = "Gemini not configured. Set GEMINI_API_KEY."
		logger.Warn("GEMINI_API_KEY not set, Gemini provider disabled")
	} else {
		gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiVisionModel, logger)
		if err != nil {
			r.reasons[KindGemini] = err.Error()
			logger.Error("Gemini provider disabled", zap.Error(err))
		} else {
			r.providers[KindGemini] = gemini
		}
	}

	if cfg.GroqAPIKey == "" {
		r.reasons[KindGroq] = "Groq not configured. Set GROQ_API_KEY."
		logger.Warn("GROQ_API_KEY not set, Groq provider disabled")
	} else {
		r.providers[KindGroq] = NewGroqProvider(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.GroqVisionModel, logger)
	}

	r.defaultKind = KindOllama
	if kind, err := ParseProviderKind(cfg.DefaultProvider); err == nil {
		r.defaultKind = kind
	}
	return r
}

// NewStaticRegistry builds a registry from already constructed providers.
func NewStaticRegistry(defaultKind ProviderKind, providers ...Provider) *Registry {
	r := &Registry{
		providers:   map[ProviderKind]Provider{},
		reasons:     map[ProviderKind]string{},
		defaultKind: defaultKind,
	}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

func (r *Registry) Default() ProviderKind {
	return r.defaultKind
}

// Resolve returns the provider for kind, or the default provider when kind
// is empty. Unavailable providers yield an *InvocationError wrapping
// ErrProviderUnavailable.
func (r *Registry) Resolve(kind ProviderKind) (Provider, error) {
	if kind == "" {
		kind = r.defaultKind
	}
	p, ok := r.providers[kind]
	if !ok {
		if reason, found := r.reasons[kind]; found {
			return nil, invocationError(kind, "", &unavailableError{reason: reason})
		}
		return nil, invocationError(kind, "", ErrProviderUnavailable)
	}
	return p, nil
}

func (r *Registry) Describe() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(AllKinds))
	for _, kind := range AllKinds {
		status := ProviderStatus{Name: kind, Models: []string{}}
		p, ok := r.providers[kind]
		if ok {
			status.Available = true
			if catalog, isCatalog := p.(ModelCatalog); isCatalog {
				status.DefaultModel = catalog.DefaultModel()
				status.Models = catalog.Models()
			}
		} else {
			status.Reason = r.reasons[kind]
			switch kind {
			case KindGemini:
				status.Models = geminiModels
				status.DefaultModel = geminiModels[0]
			case KindGroq:
				status.Models = groqModels
				status.DefaultModel = groqModels[0]
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

type unavailableError struct {
	reason string
}

func (e *unavailableError) Error() string {
	return e.reason
}

func (e *unavailableError) Unwrap() error {
	return ErrProviderUnavailable
}
