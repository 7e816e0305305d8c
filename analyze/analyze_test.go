package analyze

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"storyreel/types"
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

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func TestStylerTrimsOutput(t *testing.T) {
	stub := &stubCompleter{content: "\n  in the style of an oil painting  \n"}
	s := NewStyler(stub, zap.NewNop())

	got, err := s.Run(context.Background(), "a story")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got != "in the style of an oil painting" {
		t.Errorf("Run() = %q", got)
	}
}

func TestStylerPropagatesError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("completion down")}
	s := NewStyler(stub, zap.NewNop())
	if _, err := s.Run(context.Background(), "a story"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractorAssignsLocalIDs(t *testing.T) {
	stub := &stubCompleter{content: "```json\n[{\"name\":\" Ship \",\"description\":\" a red ship \"},{\"name\":\"Sea\",\"description\":\"a calm sea\"}]\n```"}
	e := NewExtractor(stub, &seqIDs{}, zap.NewNop())

	got, err := e.Run(context.Background(), "a sea story")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	want := []types.ConsistentElement{
		{ID: "id-1", Name: "Ship", Description: "a red ship"},
		{ID: "id-2", Name: "Sea", Description: "a calm sea"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractorParseError(t *testing.T) {
	stub := &stubCompleter{content: "I could not find any elements."}
	e := NewExtractor(stub, &seqIDs{}, zap.NewNop())

	_, err := e.Run(context.Background(), "text")
	var parseErr *types.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *types.ParseError, got %v", err)
	}
	if parseErr.Stage != "elements" {
		t.Errorf("stage = %q", parseErr.Stage)
	}
	if parseErr.Raw != stub.content {
		t.Errorf("raw payload not preserved: %q", parseErr.Raw)
	}
}

func TestExtractorEmptyArray(t *testing.T) {
	stub := &stubCompleter{content: "[]"}
	e := NewExtractor(stub, &seqIDs{}, zap.NewNop())

	got, err := e.Run(context.Background(), "a text without recurring subjects")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
