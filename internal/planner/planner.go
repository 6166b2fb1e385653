package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"motionpitch/internal/domain"
	"motionpitch/internal/events"
	"motionpitch/internal/infra"
	"motionpitch/internal/providers/genai"
)

// Client is the subset of the provider the planner needs.
type Client interface {
	UploadFile(ctx context.Context, path string) (genai.FileRef, error)
	GetFile(ctx context.Context, name string) (genai.FileRef, error)
	GeneratePlan(ctx context.Context, req genai.PlanRequest) (string, error)
}

// ContextCache resolves the reusable system-instruction handle. An empty
// handle means "plan without a cache".
type ContextCache interface {
	GetOrCreate(ctx context.Context) string
}

// Input describes one planning request.
type Input struct {
	Topic        string
	SlideCount   int
	DocumentPath string
	SourceURL    string
	Locale       string
}

// Planner turns a topic into an ordered sequence of slide specifications via
// a single structured planning call.
type Planner struct {
	client Client
	cache  ContextCache
	events events.Sink
	logger infra.Logger

	filePollInterval time.Duration
	filePollMax      int
}

// Options tunes document-processing polling.
type Options struct {
	FilePollInterval time.Duration
	FilePollMax      int
}

// New builds a planner.
func New(client Client, cache ContextCache, sink events.Sink, logger infra.Logger, opts Options) *Planner {
	interval := opts.FilePollInterval
	if interval <= 0 {
		interval = time.Second
	}
	maxPolls := opts.FilePollMax
	if maxPolls <= 0 {
		maxPolls = 60
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Planner{
		client:           client,
		cache:            cache,
		events:           sink,
		logger:           logger,
		filePollInterval: interval,
		filePollMax:      maxPolls,
	}
}

// Plan issues the planning call and parses its structured response. Any call
// or parse failure yields domain.ErrPlanningFailed; the caller never sees a
// partial plan. A failed document upload degrades to planning without the
// document.
func (p *Planner) Plan(ctx context.Context, in Input) (*domain.PlanResult, error) {
	req := genai.PlanRequest{CachedContent: p.cache.GetOrCreate(ctx)}

	var docNote string
	if in.DocumentPath != "" {
		ref, err := p.uploadDocument(ctx, in.DocumentPath)
		if err != nil {
			p.logger.Warn().Err(err).Msg("planner: document upload failed, planning without it")
		} else {
			req.FileURI = ref.URI
			req.FileMIME = ref.MIMEType
			docNote = "\n\nRefer to the uploaded PDF file for facts."
		}
	}

	req.Prompt = composePrompt(in, docNote)

	p.events.Emit("plan.start", map[string]any{"topic": in.Topic, "slides": in.SlideCount})

	text, err := p.client.GeneratePlan(ctx, req)
	if err != nil {
		p.logger.Error().Err(err).Msg("planner: planning call failed")
		return nil, fmt.Errorf("planner: %v: %w", err, domain.ErrPlanningFailed)
	}

	plan, err := parsePlan(text)
	if err != nil {
		p.logger.Error().Err(err).Msg("planner: response parse failed")
		return nil, fmt.Errorf("planner: %v: %w", err, domain.ErrPlanningFailed)
	}

	p.events.Emit("plan.done", map[string]any{"title": plan.Title, "slides": len(plan.Slides)})
	return plan, nil
}

// uploadDocument pushes the source document to the provider and waits for it
// to leave the processing state. The poll loop is capped so a stuck document
// cannot hang the request.
func (p *Planner) uploadDocument(ctx context.Context, path string) (genai.FileRef, error) {
	ref, err := p.client.UploadFile(ctx, path)
	if err != nil {
		return genai.FileRef{}, err
	}

	for i := 0; ref.Processing(); i++ {
		if i >= p.filePollMax {
			return genai.FileRef{}, fmt.Errorf("document still processing after %d polls", p.filePollMax)
		}
		select {
		case <-ctx.Done():
			return genai.FileRef{}, ctx.Err()
		case <-time.After(p.filePollInterval):
		}
		ref, err = p.client.GetFile(ctx, ref.Name)
		if err != nil {
			return genai.FileRef{}, err
		}
	}
	return ref, nil
}

func composePrompt(in Input, docNote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s. Length: %d slides.", in.Topic, in.SlideCount)
	if in.SourceURL != "" {
		fmt.Fprintf(&b, "\n\nContext URL: %s (Browse this site for content).", in.SourceURL)
	}
	b.WriteString(docNote)
	if in.Locale != "" && !strings.HasPrefix(strings.ToLower(in.Locale), "en") {
		fmt.Fprintf(&b, "\n\nWrite all slide titles and content in the '%s' language.", in.Locale)
	}
	return b.String()
}

func parsePlan(text string) (*domain.PlanResult, error) {
	var plan domain.PlanResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if plan.Title == "" || len(plan.Slides) == 0 {
		return nil, fmt.Errorf("plan missing title or slides")
	}
	return &plan, nil
}
