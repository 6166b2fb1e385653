package deck

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"motionpitch/internal/domain"
	"motionpitch/internal/events"
	"motionpitch/internal/providers/genai"
	"motionpitch/internal/storage"
)

type fakeImages struct {
	mu    sync.Mutex
	calls int
}

// Prompts containing "fail" produce an error; everything else yields bytes.
func (f *fakeImages) GenerateImage(ctx context.Context, req genai.ImageRequest) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if strings.Contains(req.Prompt, "fail") {
		return nil, errors.New("image refused")
	}
	return []byte("png:" + req.Prompt), nil
}

type fakeAnimator struct {
	mu       sync.Mutex
	calls    []string
	videoURL string
	err      error
}

func (f *fakeAnimator) Animate(ctx context.Context, imageKey, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	return f.videoURL, f.err
}

func newTestRunner(t *testing.T, images ImageClient, animator Animator) *BatchRunner {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewBatchRunner(images, animator, store, events.NopSink{}, zerolog.New(io.Discard), BatchOptions{
		Workers:        3,
		PlaceholderURL: "/static/placeholder.png",
	})
}

func planOf(prompts ...string) *domain.PlanResult {
	plan := &domain.PlanResult{Title: "T"}
	for i, p := range prompts {
		plan.Slides = append(plan.Slides, domain.SlideSpec{
			Title:        "S",
			Content:      "c",
			VisualPrompt: p,
			VideoPrompt:  "motion " + string(rune('a'+i)),
		})
	}
	return plan
}

func TestRunProducesIndexAlignedResults(t *testing.T) {
	runner := newTestRunner(t, &fakeImages{}, &fakeAnimator{})
	plan := planOf("p0", "p1", "p2", "p3", "p4", "p5", "p6")

	results := runner.Run(context.Background(), plan, false)

	if len(results) != len(plan.Slides) {
		t.Fatalf("results = %d, want %d", len(results), len(plan.Slides))
	}
	for i, r := range results {
		if r.MediaURL == "" || r.MediaType != domain.MediaTypeImage {
			t.Fatalf("slide %d not resolved: %+v", i, r)
		}
		if r.Title != plan.Slides[i].Title || r.Content != plan.Slides[i].Content {
			t.Fatalf("slide %d text mismatch: %+v", i, r)
		}
	}
}

func TestRunSubstitutesPlaceholderOnImageFailure(t *testing.T) {
	runner := newTestRunner(t, &fakeImages{}, &fakeAnimator{})
	plan := planOf("p0", "fail here", "p2")

	results := runner.Run(context.Background(), plan, false)

	if results[1].MediaURL != "/static/placeholder.png" {
		t.Fatalf("failed slide url = %q, want placeholder", results[1].MediaURL)
	}
	if results[1].MediaType != domain.MediaTypeImage {
		t.Fatalf("failed slide type = %q", results[1].MediaType)
	}
	for _, i := range []int{0, 2} {
		if results[i].MediaURL == "/static/placeholder.png" {
			t.Fatalf("slide %d degraded unexpectedly", i)
		}
	}
}

func TestRunAllFailuresStillYieldFullDeck(t *testing.T) {
	runner := newTestRunner(t, &fakeImages{}, &fakeAnimator{})
	plan := planOf("fail 1", "fail 2", "fail 3")

	results := runner.Run(context.Background(), plan, false)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.MediaURL != "/static/placeholder.png" {
			t.Fatalf("slide %d url = %q", i, r.MediaURL)
		}
	}
}

func TestRunAnimatesOnlyFirstSlide(t *testing.T) {
	animator := &fakeAnimator{videoURL: "/static/veo_1.mp4"}
	runner := newTestRunner(t, &fakeImages{}, animator)
	plan := planOf("p0", "p1", "p2")

	results := runner.Run(context.Background(), plan, true)

	if len(animator.calls) != 1 || animator.calls[0] != plan.Slides[0].VideoPrompt {
		t.Fatalf("animator calls = %v", animator.calls)
	}
	if results[0].MediaURL != "/static/veo_1.mp4" || results[0].MediaType != domain.MediaTypeVideo {
		t.Fatalf("slide 0 = %+v, want video", results[0])
	}
	for _, i := range []int{1, 2} {
		if results[i].MediaType != domain.MediaTypeImage {
			t.Fatalf("slide %d type = %q, want image", i, results[i].MediaType)
		}
	}
}

func TestRunVideoFailureKeepsImage(t *testing.T) {
	animator := &fakeAnimator{err: errors.New("veo down")}
	runner := newTestRunner(t, &fakeImages{}, animator)

	results := runner.Run(context.Background(), planOf("p0", "p1"), true)

	if results[0].MediaType != domain.MediaTypeImage || results[0].MediaURL == "" {
		t.Fatalf("slide 0 = %+v, want image fallback", results[0])
	}
}

func TestRunSkipsVideoWhenDisabled(t *testing.T) {
	animator := &fakeAnimator{videoURL: "/static/veo_1.mp4"}
	runner := newTestRunner(t, &fakeImages{}, animator)

	runner.Run(context.Background(), planOf("p0", "p1"), false)

	if len(animator.calls) != 0 {
		t.Fatalf("animator called %d times with video disabled", len(animator.calls))
	}
}

func TestRunSkipsVideoWhenFirstImageFailed(t *testing.T) {
	animator := &fakeAnimator{videoURL: "/static/veo_1.mp4"}
	runner := newTestRunner(t, &fakeImages{}, animator)

	results := runner.Run(context.Background(), planOf("fail 0", "p1"), true)

	if len(animator.calls) != 0 {
		t.Fatalf("animator called without a base image")
	}
	if results[0].MediaURL != "/static/placeholder.png" {
		t.Fatalf("slide 0 url = %q", results[0].MediaURL)
	}
}
