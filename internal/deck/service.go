package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"motionpitch/internal/domain"
	"motionpitch/internal/events"
	"motionpitch/internal/infra"
	"motionpitch/internal/planner"
)

const (
	defaultSlideCount = 3
	maxSlideCount     = 20
)

// QuotaGate consumes one unit of generation allowance for the caller.
type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID, guestID string) (int, error)
}

// PlanProvider produces the slide plan for a topic.
type PlanProvider interface {
	Plan(ctx context.Context, in planner.Input) (*domain.PlanResult, error)
}

// MediaRunner resolves media for every slide in a plan.
type MediaRunner interface {
	Run(ctx context.Context, plan *domain.PlanResult, enableVideo bool) []domain.SlideResult
}

// Service orchestrates the full generation pipeline: quota, planning, media
// batch, persistence. It owns the one fatal/degradable split the pipeline
// has: quota denial, planning failure, and storage failure abort the request;
// per-slide media failures never do.
type Service struct {
	quota   QuotaGate
	planner PlanProvider
	batch   MediaRunner
	repo    domain.PresentationRepository
	events  events.Sink
	logger  infra.Logger
}

// NewService wires the pipeline stages together.
func NewService(gate QuotaGate, plan PlanProvider, batch MediaRunner, repo domain.PresentationRepository, sink events.Sink, logger infra.Logger) *Service {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Service{
		quota:   gate,
		planner: plan,
		batch:   batch,
		repo:    repo,
		events:  sink,
		logger:  logger,
	}
}

// GenerateInput carries one generation request. Exactly one of UserID and
// GuestID identifies the caller; an authenticated user owns the result.
type GenerateInput struct {
	Topic        string
	SlideCount   int
	EnableVideo  bool
	SourceURL    string
	DocumentPath string
	UserID       string
	GuestID      string
	Locale       string
}

// Generate runs the pipeline end to end and returns the persisted
// presentation.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*domain.Presentation, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, fmt.Errorf("deck: topic is required: %w", domain.ErrInvalidRequest)
	}
	if in.SlideCount <= 0 {
		in.SlideCount = defaultSlideCount
	}
	if in.SlideCount > maxSlideCount {
		return nil, fmt.Errorf("deck: slide count %d exceeds maximum %d: %w", in.SlideCount, maxSlideCount, domain.ErrInvalidRequest)
	}

	remaining, err := s.quota.CheckAndConsume(ctx, in.UserID, in.GuestID)
	if err != nil {
		return nil, err
	}
	if in.UserID == "" {
		s.events.Emit("quota.remaining", map[string]any{"remaining": remaining})
	}

	plan, err := s.planner.Plan(ctx, planner.Input{
		Topic:        in.Topic,
		SlideCount:   in.SlideCount,
		DocumentPath: in.DocumentPath,
		SourceURL:    in.SourceURL,
		Locale:       in.Locale,
	})
	if err != nil {
		return nil, err
	}

	slides := s.batch.Run(ctx, plan, in.EnableVideo)

	pres := &domain.Presentation{
		ID:        uuid.NewString(),
		Title:     plan.Title,
		Slides:    slides,
		HasVideo:  in.EnableVideo,
		CreatedAt: time.Now().UTC(),
	}
	if in.UserID != "" {
		owner := in.UserID
		pres.OwnerID = &owner
	}

	if err := s.repo.Insert(ctx, pres); err != nil {
		s.logger.Error().Err(err).Str("presentation_id", pres.ID).Msg("deck: persist failed")
		return nil, fmt.Errorf("deck: persist presentation: %v: %w", err, domain.ErrStorageFailed)
	}

	s.events.Emit("deck.done", map[string]any{"id": pres.ID, "title": pres.Title})
	s.logger.Info().Str("presentation_id", pres.ID).Int("slides", len(slides)).Bool("video", in.EnableVideo).Msg("deck: generation complete")
	return pres, nil
}
