package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubCompleter struct {
	content string
	err     error
	gotUser string
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.gotUser = userPrompt
	return s.content, s.err
}

func TestWriterRun(t *testing.T) {
	stub := &stubCompleter{content: `The storm rolled in. <break time="1.0s" /> Nobody saw it coming.`}
	w := New(stub, zap.NewNop())

	got, err := w.Run(context.Background(), "raw account of the storm")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got != stub.content {
		t.Errorf("Run() = %q", got)
	}
	if !strings.HasPrefix(stub.gotUser, "TEXT:") {
		t.Errorf("user prompt missing TEXT: prefix: %q", stub.gotUser)
	}
}

func TestWriterEmptyNarration(t *testing.T) {
	w := New(&stubCompleter{content: "   \n "}, zap.NewNop())
	if _, err := w.Run(context.Background(), "raw"); err == nil {
		t.Fatal("expected error for empty narration")
	}
}

func TestWriterPropagatesError(t *testing.T) {
	w := New(&stubCompleter{err: errors.New("boom")}, zap.NewNop())
	if _, err := w.Run(context.Background(), "raw"); err == nil {
		t.Fatal("expected error")
	}
}
