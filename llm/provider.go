package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

type ProviderKind string

const (
	KindOllama ProviderKind = "ollama"
	KindGemini ProviderKind = "gemini"
	KindGroq   ProviderKind = "groq"
)

var AllKinds = []ProviderKind{KindGroq, KindGemini, KindOllama}

func (k ProviderKind) String() string {
	return string(k)
}

func ParseProviderKind(value string) (ProviderKind, error) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindOllama:
		return KindOllama, nil
	case KindGemini:
		return KindGemini, nil
	case KindGroq:
		return KindGroq, nil
	}
	return "", fmt.Errorf("unknown provider %q", value)
}

var (
	ErrProviderUnavailable = errors.New("provider is not configured")
	ErrEmptyResponse       = errors.New("provider returned no text")
)

// Image points at a file on local disk. Providers read it themselves so the
// caller keeps ownership of the file lifecycle.
type Image struct {
	Path     string
	MIMEType string
}

type Options struct {
	Model       string
	Temperature *float32
	TopP        *float32
	TopK        *float32
	JSON        bool
}

type Request struct {
	Prompt  string
	Image   *Image
	Options Options
}

// Provider is implemented by the Ollama, Gemini and Groq clients in this
// package. Any failure is returned as *InvocationError and never as a partial
// text.
type Provider interface {
	Kind() ProviderKind
	Generate(ctx context.Context, req Request) (string, error)
}

// ModelCatalog is implemented by providers that expose a fixed model list.
type ModelCatalog interface {
	DefaultModel() string
	Models() []string
}

type InvocationError struct {
	Provider ProviderKind
	Model    string
	Cause    error
}

func (e *InvocationError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s (%s) error: %v", e.Provider, e.Model, e.Cause)
	}
	return fmt.Sprintf("%s error: %v", e.Provider, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

func invocationError(kind ProviderKind, model string, err error) *InvocationError {
	return &InvocationError{Provider: kind, Model: model, Cause: err}
}

func readImage(img *Image) ([]byte, string, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// pickModel returns requested when it is one of allowed, otherwise fallback.
func pickModel(requested string, allowed []string, aliases map[string]string, fallback string) string {
	if requested == "" {
		return fallback
	}
	if alias, ok := aliases[requested]; ok {
		requested = alias
	}
	for _, m := range allowed {
		if m == requested {
			return m
		}
	}
	return fallback
}

func float32Ptr(v float32) *float32 {
	return &v
}
