package deck

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"motionpitch/internal/infra"
	"motionpitch/internal/providers/genai"
	"motionpitch/internal/storage"
)

const (
	videoPromptPrefix    = "Cinematic 4k. "
	videoAspectRatio     = "16:9"
	videoResolution      = "720p"
	videoDurationSeconds = 8
)

// VideoClient is the subset of the provider the animator needs.
type VideoClient interface {
	GenerateVideo(ctx context.Context, req genai.VideoRequest) (*genai.VideoOperation, error)
	GetOperation(ctx context.Context, name string) (*genai.VideoOperation, error)
	DownloadFile(ctx context.Context, uri string) ([]byte, error)
}

// VideoAnimator wraps the long-running video operation in a bounded poll
// loop. Every failure mode (submit error, timeout, empty response, download
// error) comes back as a plain error; the batch treats them all as "keep the
// image".
type VideoAnimator struct {
	client VideoClient
	store  *storage.FileStore
	logger infra.Logger

	pollInterval time.Duration
	maxPolls     int
}

// AnimatorOptions tunes the poll loop. Defaults give the 10-minute cap:
// 120 polls at 5-second intervals.
type AnimatorOptions struct {
	PollInterval time.Duration
	MaxPolls     int
}

// NewVideoAnimator builds an animator.
func NewVideoAnimator(client VideoClient, store *storage.FileStore, logger infra.Logger, opts AnimatorOptions) *VideoAnimator {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxPolls := opts.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 120
	}
	return &VideoAnimator{
		client:       client,
		store:        store,
		logger:       logger,
		pollInterval: interval,
		maxPolls:     maxPolls,
	}
}

// Animate turns the stored image into a short video conditioned on it and
// returns the saved video's public URL.
func (a *VideoAnimator) Animate(ctx context.Context, imageKey, prompt string) (string, error) {
	imageBytes, err := a.store.Read(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("animate: read conditioning frame: %w", err)
	}

	op, err := a.client.GenerateVideo(ctx, genai.VideoRequest{
		Prompt:          videoPromptPrefix + prompt,
		ImageBytes:      imageBytes,
		ImageMIME:       "image/png",
		AspectRatio:     videoAspectRatio,
		Resolution:      videoResolution,
		DurationSeconds: videoDurationSeconds,
	})
	if err != nil {
		return "", fmt.Errorf("animate: submit operation: %w", err)
	}

	op, err = a.waitForCompletion(ctx, op)
	if err != nil {
		return "", err
	}

	if op.VideoURI == "" {
		return "", fmt.Errorf("animate: operation completed without a video")
	}

	data, err := a.client.DownloadFile(ctx, op.VideoURI)
	if err != nil {
		return "", fmt.Errorf("animate: download video: %w", err)
	}

	key := fmt.Sprintf("veo_%s.mp4", uuid.NewString())
	storedKey, err := a.store.Write(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("animate: save video: %w", err)
	}

	a.logger.Info().Str("key", storedKey).Msg("deck: video saved")
	return a.store.PublicURL(storedKey), nil
}

// waitForCompletion refreshes the operation on a fixed cadence until it
// completes or the attempt budget runs out.
func (a *VideoAnimator) waitForCompletion(ctx context.Context, op *genai.VideoOperation) (*genai.VideoOperation, error) {
	for polls := 0; !op.Done; polls++ {
		if polls >= a.maxPolls {
			return nil, fmt.Errorf("animate: timed out after %d polls", a.maxPolls)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}

		refreshed, err := a.client.GetOperation(ctx, op.Name)
		if err != nil {
			return nil, fmt.Errorf("animate: poll operation: %w", err)
		}
		op = refreshed

		if (polls+1)%6 == 0 {
			a.logger.Info().Int("elapsed_seconds", (polls+1)*int(a.pollInterval.Seconds())).Msg("deck: still generating video")
		}
	}
	return op, nil
}
