// Package pipeline runs one generation request end to end: style and
// element analysis, narration, speech synthesis, transcription, image
// planning and generation, video assembly, and the persistence record.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storyreel/config"
	"storyreel/types"
	"storyreel/videostore"
)

// Styler produces the reusable image style guide for a story.
type Styler interface {
	Run(ctx context.Context, text string) (string, error)
}

// ElementExtractor finds the recurring visual subjects of a story.
type ElementExtractor interface {
	Run(ctx context.Context, text string) ([]types.ConsistentElement, error)
}

// ScriptWriter turns the raw text into a spoken narration script.
type ScriptWriter interface {
	Run(ctx context.Context, text string) (string, error)
}

// Synthesizer voices a narration script and stores the audio.
type Synthesizer interface {
	Run(ctx context.Context, narration string) (types.AudioTrack, error)
}

// Transcriber recovers segment-level timing from stored audio.
type Transcriber interface {
	Run(ctx context.Context, track types.AudioTrack) (types.Transcript, error)
}

// Planner produces the time-stamped image descriptions for a transcript.
type Planner interface {
	Run(ctx context.Context, elements []types.ConsistentElement, transcript types.Transcript) ([]types.ImageDescription, error)
}

// ImageGenerator renders one image description and stores the result.
type ImageGenerator interface {
	Run(ctx context.Context, desc types.ImageDescription, prompt string, aspect types.AspectRatio) (types.GeneratedImage, error)
}

// Assembler turns the image set and narration audio into the final video.
type Assembler interface {
	Run(ctx context.Context, requestID string, images []types.GeneratedImage, audio types.AudioTrack) (types.FinalVideo, error)
}

// VideoStore records finished videos. The record is written only after the
// final video exists in storage.
type VideoStore interface {
	CreateVideo(ctx context.Context, url, ownerID string) (videostore.Video, error)
}

// Deps are the stage implementations the orchestrator drives. Every field
// is an interface so tests can substitute stubs per stage.
type Deps struct {
	Styler      Styler
	Elements    ElementExtractor
	Script      ScriptWriter
	Synthesizer Synthesizer
	Transcriber Transcriber
	Planner     Planner
	Images      ImageGenerator
	Assembler   Assembler
	Videos      VideoStore
}

// Result carries every intermediate and final artifact of one request.
type Result struct {
	RequestID    string                    `json:"request_id"`
	Style        string                    `json:"style"`
	Elements     []types.ConsistentElement `json:"elements"`
	Script       string                    `json:"script"`
	Audio        types.AudioTrack          `json:"audio"`
	Transcript   types.Transcript          `json:"transcript"`
	Descriptions []types.ImageDescription  `json:"descriptions"`
	Images       []types.GeneratedImage    `json:"images"`
	Video        types.FinalVideo          `json:"video"`
	Record       videostore.Video          `json:"record"`
}

// Orchestrator sequences the stages of one generation request.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	logger *zap.Logger
}

// New builds an orchestrator over the given stage implementations.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, deps: deps, logger: logger.Named("pipeline")}
}

// Run executes one request. Stages run in dependency order; style and
// element analysis run concurrently since both depend only on the raw
// text. Any stage failure aborts the request, and the persistence record
// is created last so a stored record always points at an existing video.
func (o *Orchestrator) Run(ctx context.Context, req types.GenerationRequest) (*Result, error) {
	if err := o.validate(&req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout())
	defer cancel()

	logger := o.logger.With(zap.String("request_id", req.ID))
	logger.Info("request accepted",
		zap.Int("text_chars", len(req.RawText)),
		zap.String("aspect_ratio", string(req.AspectRatio)),
	)

	res := &Result{RequestID: req.ID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		style, err := runStage(o, gctx, func(ctx context.Context) (string, error) {
			return o.deps.Styler.Run(ctx, req.RawText)
		})
		if err != nil {
			return fmt.Errorf("style analysis: %w", err)
		}
		res.Style = style
		return nil
	})
	g.Go(func() error {
		elements, err := runStage(o, gctx, func(ctx context.Context) ([]types.ConsistentElement, error) {
			return o.deps.Elements.Run(ctx, req.RawText)
		})
		if err != nil {
			return fmt.Errorf("element extraction: %w", err)
		}
		res.Elements = elements
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("analysis complete", zap.Int("elements", len(res.Elements)))

	script, err := runStage(o, ctx, func(ctx context.Context) (string, error) {
		return o.deps.Script.Run(ctx, req.RawText)
	})
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	res.Script = script

	audio, err := runStage(o, ctx, func(ctx context.Context) (types.AudioTrack, error) {
		return o.deps.Synthesizer.Run(ctx, script)
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	res.Audio = audio

	transcript, err := runStage(o, ctx, func(ctx context.Context) (types.Transcript, error) {
		return o.deps.Transcriber.Run(ctx, audio)
	})
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	res.Transcript = transcript
	logger.Info("audio ready",
		zap.Float64("duration_sec", transcript.Duration),
		zap.Int("segments", len(transcript.Segments)),
	)

	descs, err := runStage(o, ctx, func(ctx context.Context) ([]types.ImageDescription, error) {
		return o.deps.Planner.Run(ctx, res.Elements, transcript)
	})
	if err != nil {
		return nil, fmt.Errorf("image planning: %w", err)
	}
	res.Descriptions = descs

	images, err := o.generateImages(ctx, req, res.Style, res.Elements, descs)
	if err != nil {
		return nil, err
	}
	res.Images = images

	video, err := o.deps.Assembler.Run(ctx, req.ID, images, audio)
	if err != nil {
		return nil, fmt.Errorf("assembly: %w", err)
	}
	res.Video = video

	record, err := o.deps.Videos.CreateVideo(ctx, video.URL, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("record video: %w", err)
	}
	res.Record = record

	logger.Info("request complete", zap.String("video_url", video.URL))
	return res, nil
}

// validate rejects a request before any external call is made, and assigns
// the request id when the caller did not.
func (o *Orchestrator) validate(req *types.GenerationRequest) error {
	if strings.TrimSpace(req.RawText) == "" {
		return &types.ValidationError{Reason: "text is empty"}
	}
	if limit := o.cfg.Generation.CharacterLimit; len(req.RawText) > limit {
		return &types.ValidationError{Reason: fmt.Sprintf("text is %d characters, limit is %d", len(req.RawText), limit)}
	}
	if !req.AspectRatio.Valid() {
		return &types.ValidationError{Reason: fmt.Sprintf("unsupported aspect ratio %q", req.AspectRatio)}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return nil
}

// runStage applies the per-call deadline to one stage invocation.
func runStage[T any](o *Orchestrator, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout())
	defer cancel()
	return fn(ctx)
}
