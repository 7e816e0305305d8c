// Package render assembles the final video: one clip per generated image,
// concatenated and muxed with the narration audio via ffmpeg.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyreel/config"
	"storyreel/types"
)

// Store is the slice of the storage client the engine needs: artifacts come
// down from storage and the finished video goes back up.
type Store interface {
	Download(ctx context.Context, url string) ([]byte, error)
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// runFunc invokes one external conversion process and returns its stderr.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Engine owns every temporary file of one assembly and deletes them as a
// unit whether assembly succeeds or fails.
type Engine struct {
	cfg            config.VideoConfig
	convertTimeout time.Duration
	store          Store
	logger         *zap.Logger
	run            runFunc
}

// New builds an assembly engine.
func New(cfg config.VideoConfig, convertTimeout time.Duration, store Store, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:            cfg,
		convertTimeout: convertTimeout,
		store:          store,
		logger:         logger.Named("render"),
		run:            runCommand,
	}
}

// Run converts each image to a fixed-duration clip, concatenates the clips
// in timestamp order, muxes the narration audio on, and publishes the
// result. All scratch files live under a per-request directory so
// concurrent requests cannot collide.
func (e *Engine) Run(ctx context.Context, requestID string, images []types.GeneratedImage, audio types.AudioTrack) (types.FinalVideo, error) {
	if len(images) == 0 {
		return types.FinalVideo{}, fmt.Errorf("render: no images to assemble")
	}

	scratch := filepath.Join(e.cfg.ScratchDir, "storyreel-"+requestID)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return types.FinalVideo{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer e.cleanup(scratch)

	e.logger.Info("assembling video",
		zap.String("request_id", requestID),
		zap.Int("images", len(images)),
		zap.String("scratch", scratch),
	)

	clipPaths := make([]string, 0, len(images))
	for i, img := range images {
		data, err := e.store.Download(ctx, img.URL)
		if err != nil {
			return types.FinalVideo{}, fmt.Errorf("fetch image %d: %w", i, err)
		}
		imagePath := filepath.Join(scratch, fmt.Sprintf("image_%03d.png", i))
		if err := os.WriteFile(imagePath, data, 0644); err != nil {
			return types.FinalVideo{}, fmt.Errorf("write image %d: %w", i, err)
		}

		clipPath := filepath.Join(scratch, fmt.Sprintf("clip_%03d.mp4", i))
		if err := e.toClip(ctx, imagePath, clipPath, img.End-img.Start); err != nil {
			return types.FinalVideo{}, err
		}
		clipPaths = append(clipPaths, clipPath)
	}

	silentPath := filepath.Join(scratch, "silent.mp4")
	if err := e.concatenate(ctx, scratch, clipPaths, silentPath); err != nil {
		return types.FinalVideo{}, err
	}

	audioData, err := e.store.Download(ctx, audio.URL)
	if err != nil {
		return types.FinalVideo{}, fmt.Errorf("fetch narration audio: %w", err)
	}
	audioPath := filepath.Join(scratch, "narration.mp3")
	if err := os.WriteFile(audioPath, audioData, 0644); err != nil {
		return types.FinalVideo{}, fmt.Errorf("write narration audio: %w", err)
	}

	finalPath := filepath.Join(scratch, "final.mp4")
	if err := e.mux(ctx, silentPath, audioPath, finalPath); err != nil {
		return types.FinalVideo{}, err
	}

	finalData, err := os.ReadFile(finalPath)
	if err != nil {
		return types.FinalVideo{}, fmt.Errorf("read final video: %w", err)
	}
	url, err := e.store.Upload(ctx, fmt.Sprintf("videos/%s.mp4", requestID), finalData, "video/mp4")
	if err != nil {
		return types.FinalVideo{}, fmt.Errorf("publish final video: %w", err)
	}

	e.logger.Info("final video published", zap.String("url", url), zap.Int("bytes", len(finalData)))
	return types.FinalVideo{URL: url}, nil
}

// toClip loops a still image into a fixed-frame-rate clip whose duration is
// the image's timestamp span.
func (e *Engine) toClip(ctx context.Context, imagePath, clipPath string, duration float64) error {
	if duration <= 0 {
		return fmt.Errorf("render: non-positive clip duration %.3f for %s", duration, imagePath)
	}
	ctx, cancel := e.convertContext(ctx)
	defer cancel()

	stderr, err := e.run(ctx, "ffmpeg",
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", fmt.Sprintf("fps=%d", e.cfg.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		clipPath,
	)
	if err != nil {
		return &types.MediaError{Op: "image to clip", Stderr: string(stderr), Err: err}
	}
	return nil
}

// concatenate joins the clips in order with a lossless stream copy. All
// clips share codec and frame rate since toClip produced every one of them.
func (e *Engine) concatenate(ctx context.Context, scratch string, clipPaths []string, outPath string) error {
	lines := make([]string, 0, len(clipPaths))
	for _, p := range clipPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	listPath := filepath.Join(scratch, "filelist.txt")
	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}

	ctx, cancel := e.convertContext(ctx)
	defer cancel()

	stderr, err := e.run(ctx, "ffmpeg",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	if err != nil {
		return &types.MediaError{Op: "concatenate clips", Stderr: string(stderr), Err: err}
	}
	return nil
}

// mux combines the silent picture stream with the narration audio,
// re-encoding only the audio. -shortest trims to the shorter input: minor
// drift between image-timeline coverage and actual speech length is
// tolerated, not an error.
func (e *Engine) mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	ctx, cancel := e.convertContext(ctx)
	defer cancel()

	stderr, err := e.run(ctx, "ffmpeg",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)
	if err != nil {
		return &types.MediaError{Op: "mux audio", Stderr: string(stderr), Err: err}
	}
	return nil
}

// cleanup removes the whole scratch directory. Best effort: failures are
// logged and never propagated.
func (e *Engine) cleanup(scratch string) {
	if err := os.RemoveAll(scratch); err != nil {
		e.logger.Warn("scratch cleanup failed", zap.String("dir", scratch), zap.Error(err))
	}
}

func (e *Engine) convertContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.convertTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.convertTimeout)
}

// runCommand executes a conversion process, killing it if the context
// expires, and captures stderr for diagnostics.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
