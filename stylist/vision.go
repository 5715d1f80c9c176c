package stylist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dripmateapi/llm"

	"go.uber.org/zap"
)

type ImageRequest struct {
	Image    llm.Image
	Prompt   string
	Wardrobe []WardrobeDescriptor
	Model    string
}

// VisionAnalyzer describes a clothing photo and builds outfits around it.
type VisionAnalyzer struct {
	provider llm.Provider
	logger   *zap.Logger
}

func NewVisionAnalyzer(provider llm.Provider, logger *zap.Logger) *VisionAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisionAnalyzer{provider: provider, logger: logger}
}

// Analyze never fails. When the model cannot be reached or its answer does
// not parse, every field is nil and Description explains why.
func (v *VisionAnalyzer) Analyze(ctx context.Context, img llm.Image, model string) DetectedItem {
	item, err := v.analyze(ctx, img, model)
	if err != nil {
		v.logger.Warn("image analysis failed", zap.String("image", img.Path), zap.Error(err))
		return DetectedItem{Description: fmt.Sprintf("Analysis failed: %v", err)}
	}
	return item
}

func (v *VisionAnalyzer) analyze(ctx context.Context, img llm.Image, model string) (DetectedItem, error) {
	text, err := v.provider.Generate(ctx, llm.Request{
		Prompt:  BuildAnalysisPrompt(),
		Image:   &img,
		Options: llm.Options{Model: model, JSON: true},
	})
	if err != nil {
		return DetectedItem{}, err
	}

	value, err := decodeStrict(StripFences(text))
	if err != nil {
		return DetectedItem{}, &RecoveryError{Raw: text, Cause: err}
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return DetectedItem{}, &RecoveryError{Raw: text, Cause: fmt.Errorf("expected an object, got %T", value)}
	}

	return DetectedItem{
		Category:    optionalString(obj["category"]),
		Name:        optionalString(obj["name"]),
		Color:       optionalString(obj["color"]),
		Pattern:     optionalString(obj["pattern"]),
		Style:       optionalString(obj["style"]),
		Season:      optionalString(obj["season"]),
		Description: stringify(obj["description"]),
	}, nil
}

// SuggestOutfits runs the second phase. The image is sent again so the model
// can match colors.
func (v *VisionAnalyzer) SuggestOutfits(ctx context.Context, req ImageRequest, item DetectedItem) ([]VisionOutfit, *Failure) {
	sl := newStateLog(v.logger.With(
		zap.String("flow", "vision"),
		zap.String("provider", v.provider.Kind().String()),
	))

	sl.enter(StateBuilding)
	img := req.Image
	prompt := BuildVisionOutfitPrompt(item, req.Prompt, req.Wardrobe)

	sl.enter(StateInvoking)
	text, err := v.provider.Generate(ctx, llm.Request{
		Prompt:  prompt,
		Image:   &img,
		Options: llm.Options{Model: req.Model, JSON: true},
	})
	if err != nil {
		return v.fail(sl, FailureTransport, err)
	}

	sl.enter(StateRecovering)
	value, err := decodeStrict(StripFences(text))
	if err != nil {
		v.logger.Warn("unparseable vision output", zap.String("raw", truncate(text, 500)), zap.Error(err))
		return v.fail(sl, FailureMalformed, &RecoveryError{Raw: text, Cause: err})
	}

	sl.enter(StateNormalizing)
	outfits := NormalizeVisionOutfits(value)
	if len(outfits) == 0 {
		return v.fail(sl, FailureEmpty, errors.New(emptyResultMessage))
	}

	sl.enter(StateDone)
	return outfits, nil
}

// OutfitsFromImage analyzes the image and then asks for outfits built around
// the detected item.
func (v *VisionAnalyzer) OutfitsFromImage(ctx context.Context, req ImageRequest) ImageSuggestionResult {
	item := v.Analyze(ctx, req.Image, req.Model)

	outfits, failure := v.SuggestOutfits(ctx, req, item)
	if failure != nil {
		return ImageSuggestionResult{
			DetectedItem: item,
			Outfits:      []VisionOutfit{},
			Failure:      failure,
			State:        StateFailed,
		}
	}
	return ImageSuggestionResult{DetectedItem: item, Outfits: outfits, State: StateDone}
}

func (v *VisionAnalyzer) fail(sl *stateLog, kind FailureKind, err error) ([]VisionOutfit, *Failure) {
	message := fmt.Sprintf("Failed to generate outfits: %v", err)
	sl.failed(kind, message)
	return []VisionOutfit{}, &Failure{Kind: kind, Message: message}
}

func optionalString(v any) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}
