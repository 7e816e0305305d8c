// Package analyze runs the two request-scoped analysis passes over the raw
// text: the visual style guide and the consistent-element set.
package analyze

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storyreel/prompts"
)

// Completer is the slice of the completion client the analyzers need.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Styler derives a style guide that every image call appends verbatim.
type Styler struct {
	llm    Completer
	logger *zap.Logger
}

// NewStyler builds a style adapter.
func NewStyler(llm Completer, logger *zap.Logger) *Styler {
	return &Styler{llm: llm, logger: logger.Named("style")}
}

// Run generates the style guide for the raw text. Plain text output, so
// there is no parse risk.
func (s *Styler) Run(ctx context.Context, text string) (string, error) {
	style, err := s.llm.Complete(ctx, prompts.StyleSystem, prompts.StyleUser(text))
	if err != nil {
		return "", err
	}
	style = strings.TrimSpace(style)
	s.logger.Info("style guide ready", zap.Int("chars", len(style)))
	return style, nil
}
