package stylist

import (
	"context"
	"fmt"

	"dripmateapi/llm"

	"go.uber.org/zap"
)

const emptyResultMessage = "model returned no usable outfits"

// Suggester turns a SuggestionRequest into outfits through one provider.
type Suggester struct {
	provider llm.Provider
	logger   *zap.Logger
}

func NewSuggester(provider llm.Provider, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{provider: provider, logger: logger}
}

// Suggest never returns an error: transport, parse and empty-result problems
// end up in SuggestionResult.Failure with no outfits.
func (s *Suggester) Suggest(ctx context.Context, req SuggestionRequest) SuggestionResult {
	sl := newStateLog(s.logger.With(
		zap.String("flow", "chat"),
		zap.String("provider", s.provider.Kind().String()),
	))

	sl.enter(StateBuilding)
	if req.Schema == "" {
		req.Schema = SchemaTyped
	}
	prompt := BuildSuggestionPrompt(req)

	sl.enter(StateInvoking)
	text, err := s.provider.Generate(ctx, llm.Request{
		Prompt:  prompt,
		Options: llm.Options{Model: req.Model, JSON: true},
	})
	if err != nil {
		return s.fail(sl, FailureTransport, err.Error())
	}

	sl.enter(StateRecovering)
	value, err := Recover(text)
	if err != nil {
		s.logger.Warn("unrecoverable model output", zap.String("raw", truncate(text, 500)), zap.Error(err))
		return s.fail(sl, FailureMalformed, err.Error())
	}

	sl.enter(StateNormalizing)
	opts := NormalizeOptions{Schema: req.Schema}
	if req.Schema == SchemaTyped {
		opts.BaseItem = req.Item
	}
	outfits := NormalizeOutfits(value, opts)
	if len(outfits) == 0 {
		return s.fail(sl, FailureEmpty, emptyResultMessage)
	}

	sl.enter(StateDone)
	return SuggestionResult{Outfits: outfits, State: StateDone}
}

func (s *Suggester) fail(sl *stateLog, kind FailureKind, message string) SuggestionResult {
	sl.failed(kind, message)
	return SuggestionResult{
		Outfits: []Outfit{},
		Failure: &Failure{Kind: kind, Message: message},
		State:   StateFailed,
	}
}

type stateLog struct {
	logger *zap.Logger
	state  State
}

func newStateLog(logger *zap.Logger) *stateLog {
	return &stateLog{logger: logger}
}

func (f *stateLog) enter(state State) {
	f.logger.Debug("state transition", zap.String("from", string(f.state)), zap.String("to", string(state)))
	f.state = state
}

func (f *stateLog) failed(kind FailureKind, message string) {
	f.logger.Info("suggestion failed",
		zap.String("at", string(f.state)),
		zap.String("kind", string(kind)),
		zap.String("message", message),
	)
	f.state = StateFailed
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s...(%d more bytes)", s[:max], len(s)-max)
}
