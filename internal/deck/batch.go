package deck

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"motionpitch/internal/domain"
	"motionpitch/internal/events"
	"motionpitch/internal/infra"
	"motionpitch/internal/providers/genai"
	"motionpitch/internal/storage"
)

const (
	imageAspectRatio = "16:9"
	imageSizeTier    = "2K"
)

// ImageClient is the provider operation the batch needs.
type ImageClient interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) ([]byte, error)
}

// Animator chains a video onto a finished image. Implemented by
// VideoAnimator; faked in tests.
type Animator interface {
	Animate(ctx context.Context, imageKey, prompt string) (string, error)
}

// BatchRunner fans image generation out over a bounded worker pool and folds
// the results back into an index-ordered slide sequence. Per-slide failures
// degrade to a placeholder; they never abort the batch.
type BatchRunner struct {
	images   ImageClient
	animator Animator
	store    *storage.FileStore
	events   events.Sink
	logger   infra.Logger

	workers        int
	placeholderURL string
}

// BatchOptions tunes the runner.
type BatchOptions struct {
	Workers        int
	PlaceholderURL string
}

// NewBatchRunner builds a runner. The worker limit defaults to 5, which keeps
// the upstream API happy while still parallelizing image synthesis latency.
func NewBatchRunner(images ImageClient, animator Animator, store *storage.FileStore, sink events.Sink, logger infra.Logger, opts BatchOptions) *BatchRunner {
	workers := opts.Workers
	if workers <= 0 {
		workers = 5
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	return &BatchRunner{
		images:         images,
		animator:       animator,
		store:          store,
		events:         sink,
		logger:         logger,
		workers:        workers,
		placeholderURL: opts.PlaceholderURL,
	}
}

// imageOutcome is one completed image task. An empty key marks a failed
// generation for that index.
type imageOutcome struct {
	index    int
	key      string
	imageURL string
}

// Run generates media for every slide in the plan and returns exactly one
// SlideResult per SlideSpec, index-aligned. When enableVideo is set, slide 0
// additionally gets a video chained onto its image; a video failure leaves
// the image result in place.
func (r *BatchRunner) Run(ctx context.Context, plan *domain.PlanResult, enableVideo bool) []domain.SlideResult {
	results := make([]domain.SlideResult, len(plan.Slides))
	outcomes := make(chan imageOutcome, len(plan.Slides))

	r.events.Emit("batch.start", map[string]any{"slides": len(plan.Slides)})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, slide := range plan.Slides {
		i, slide := i, slide
		g.Go(func() error {
			outcomes <- r.generateImage(gctx, i, slide.VisualPrompt)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(outcomes)
	}()

	// Fan-in by completion order; slot placement restores index order. The
	// video chain runs here, off the worker pool, so it cannot starve
	// remaining image tasks.
	for outcome := range outcomes {
		spec := plan.Slides[outcome.index]
		result := domain.SlideResult{
			Title:     spec.Title,
			Content:   spec.Content,
			MediaType: domain.MediaTypeImage,
		}

		if outcome.key == "" {
			result.MediaURL = r.placeholderURL
		} else {
			result.MediaURL = outcome.imageURL
			r.events.Emit("batch.image", map[string]any{"slide": outcome.index + 1})

			if enableVideo && outcome.index == 0 && spec.VideoPrompt != "" {
				r.events.Emit("batch.video.start", map[string]any{"slide": 1})
				videoURL, err := r.animator.Animate(ctx, outcome.key, spec.VideoPrompt)
				if err != nil {
					r.logger.Warn().Err(err).Msg("deck: video generation failed, keeping image")
				} else {
					result.MediaURL = videoURL
					result.MediaType = domain.MediaTypeVideo
					r.events.Emit("batch.video.done", map[string]any{"slide": 1})
				}
			}
		}

		results[outcome.index] = result
	}

	r.events.Emit("batch.done", map[string]any{"slides": len(results)})
	return results
}

// generateImage runs one image task. All failures collapse into an empty
// outcome; the caller substitutes the placeholder.
func (r *BatchRunner) generateImage(ctx context.Context, index int, visualPrompt string) imageOutcome {
	data, err := r.images.GenerateImage(ctx, genai.ImageRequest{
		Prompt:      visualPrompt,
		AspectRatio: imageAspectRatio,
		ImageSize:   imageSizeTier,
	})
	if err != nil {
		r.logger.Error().Err(err).Int("slide", index+1).Msg("deck: image generation failed")
		return imageOutcome{index: index}
	}

	key := fmt.Sprintf("img_%s.png", uuid.NewString())
	storedKey, err := r.store.Write(ctx, key, data)
	if err != nil {
		r.logger.Error().Err(err).Int("slide", index+1).Msg("deck: image save failed")
		return imageOutcome{index: index}
	}

	return imageOutcome{
		index:    index,
		key:      storedKey,
		imageURL: r.store.PublicURL(storedKey),
	}
}
