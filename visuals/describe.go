// Package visuals plans the image timeline and generates the still images
// for it.
package visuals

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"storyreel/llm"
	"storyreel/prompts"
	"storyreel/types"
)

// Completer is the slice of the completion client the planner needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Planner derives the time-stamped image descriptions from the transcript
// and the consistent-element set.
type Planner struct {
	llm    Completer
	logger *zap.Logger
}

// NewPlanner builds an image-description adapter.
func NewPlanner(llm Completer, logger *zap.Logger) *Planner {
	return &Planner{llm: llm, logger: logger.Named("describe")}
}

// Run plans one image per visual beat. The returned sequence always covers
// the transcript continuously: first start 0, last end at the transcript
// duration, adjacent spans contiguous. Model output that cannot be coerced
// into that shape is a *types.ParseError.
func (p *Planner) Run(ctx context.Context, elements []types.ConsistentElement, transcript types.Transcript) ([]types.ImageDescription, error) {
	content, err := p.llm.Complete(ctx, prompts.DescribeSystem, prompts.DescribeUser(elements, transcript))
	if err != nil {
		return nil, err
	}

	var descriptions []types.ImageDescription
	if err := llm.DecodeJSON(content, &descriptions); err != nil {
		return nil, &types.ParseError{Stage: "describe", Raw: content, Err: err}
	}

	normalized, err := normalizeTimeline(descriptions, transcript.Duration)
	if err != nil {
		return nil, &types.ParseError{Stage: "describe", Raw: content, Err: err}
	}

	p.logger.Info("image timeline planned",
		zap.Int("descriptions", len(normalized)),
		zap.Float64("duration_sec", transcript.Duration),
	)
	return normalized, nil
}

// normalizeTimeline snaps a description sequence onto the transcript so the
// continuous-coverage invariant holds: the model is asked for contiguous
// timestamps but is not trusted to deliver them.
func normalizeTimeline(descriptions []types.ImageDescription, duration float64) ([]types.ImageDescription, error) {
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("no image descriptions")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("non-positive transcript duration %.3f", duration)
	}

	out := make([]types.ImageDescription, len(descriptions))
	copy(out, descriptions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	out[0].Start = 0
	out[len(out)-1].End = duration
	for i := 0; i < len(out)-1; i++ {
		// Tie each boundary to the next start so adjacent spans meet exactly.
		out[i].End = out[i+1].Start
	}

	for i, d := range out {
		if d.End <= d.Start {
			return nil, fmt.Errorf("description %d has non-positive span [%.3f, %.3f]", i, d.Start, d.End)
		}
		if strings.TrimSpace(d.Description) == "" {
			return nil, fmt.Errorf("description %d is empty", i)
		}
	}
	return out, nil
}
