package domain

import "time"

// MediaType enumerates the kinds of media a slide can carry.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// SlideSpec is the planner's per-slide output: display text plus the prompts
// used to synthesize media. Immutable once produced; slice order is display
// order.
type SlideSpec struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	VisualPrompt string `json:"visual_prompt"`
	VideoPrompt  string `json:"video_prompt"`
}

// PlanResult is the structured output of a planning call.
type PlanResult struct {
	Title  string      `json:"title"`
	Slides []SlideSpec `json:"slides"`
}

// SlideResult is a finalized slide: text copied from its spec plus resolved
// media. One result per spec, same index.
type SlideResult struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MediaURL  string    `json:"media_url"`
	MediaType MediaType `json:"media_type"`
}

// Presentation is the persisted aggregate. Created once, after the full media
// batch completes; never partially persisted.
type Presentation struct {
	ID        string
	Title     string
	Slides    []SlideResult
	OwnerID   *string
	HasVideo  bool
	CreatedAt time.Time
}
