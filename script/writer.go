// Package script generates the narration script spoken over the slideshow.
package script

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"storyreel/prompts"
)

// Completer is the slice of the completion client the writer needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Writer turns raw text into a spoken script with synthesis markup.
type Writer struct {
	llm    Completer
	logger *zap.Logger
}

// New builds a script writer.
func New(llm Completer, logger *zap.Logger) *Writer {
	return &Writer{llm: llm, logger: logger.Named("script")}
}

// Run generates the narration script. The output is free text with embedded
// prosody markup, so there is no parse step; an empty script is still an
// error since nothing downstream can work with it.
func (w *Writer) Run(ctx context.Context, text string) (string, error) {
	narration, err := w.llm.Complete(ctx, prompts.NarrationSystem, prompts.NarrationUser(text))
	if err != nil {
		return "", err
	}
	narration = strings.TrimSpace(narration)
	if narration == "" {
		return "", errors.New("script: model returned an empty narration")
	}
	w.logger.Info("narration script ready", zap.Int("chars", len(narration)))
	return narration, nil
}
