package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storyreel/prompts"
	"storyreel/types"
)

// generateImages renders the planned descriptions in fixed-size batches. The
// images inside a batch are generated concurrently, but batch N+1 does not
// start until every image of batch N succeeded. Results land at the same
// index as their description, so output order always matches timeline order
// regardless of completion order. Any failure aborts the whole request.
func (o *Orchestrator) generateImages(ctx context.Context, req types.GenerationRequest, style string, elements []types.ConsistentElement, descs []types.ImageDescription) ([]types.GeneratedImage, error) {
	batchSize := o.cfg.Images.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	images := make([]types.GeneratedImage, len(descs))
	for start := 0; start < len(descs); start += batchSize {
		end := start + batchSize
		if end > len(descs) {
			end = len(descs)
		}
		o.logger.Info("generating image batch",
			zap.String("request_id", req.ID),
			zap.Int("batch_start", start),
			zap.Int("batch_size", end-start),
			zap.Int("total", len(descs)),
		)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				resolved := prompts.ResolveElements(descs[i].Description, elements)
				prompt := prompts.ImagePrompt(style, resolved)
				img, err := runStage(o, gctx, func(ctx context.Context) (types.GeneratedImage, error) {
					return o.deps.Images.Run(ctx, descs[i], prompt, req.AspectRatio)
				})
				if err != nil {
					return fmt.Errorf("image %d: %w", i, err)
				}
				images[i] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("image generation: %w", err)
		}
	}
	return images, nil
}
