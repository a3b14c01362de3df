// Package generation runs the content-generation pipeline: it creates a
// placeholder artifact, asks the completion backend for structured content,
// imposes structure on the reply and drives the artifact's status through
// generating -> completed or generating -> error.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"edubot/audit"
	"edubot/extract"
	"edubot/llm"
	"edubot/store"
)

// Kind identifies what a generation request produces.
type Kind string

const (
	KindLecture         Kind = "lecture"
	KindSlide           Kind = "slide"
	KindSlideFromSource Kind = "slide_from_source"
)

// Request is the immutable input to the pipeline.
type Request struct {
	Kind             Kind
	Title            string
	Subject          string
	Grade            string
	Requirements     string
	PresentationType string
	Duration         int // minutes
	UserID           string
}

// SourceContent carries an existing lecture's content into a
// slide-from-source generation.
type SourceContent struct {
	Content           string
	Title             string
	Subject           string
	IncludeIntro      bool
	IncludeConclusion bool
	IncludeQuestions  bool
	Style             string
}

// SourceOptions controls how slides are derived from an existing lecture.
type SourceOptions struct {
	IncludeIntro      bool
	IncludeConclusion bool
	IncludeQuestions  bool
	Style             string
	UserID            string
}

// DefaultSourceOptions returns the standard derivation settings: intro and
// conclusion slides on, question slides off, professional style.
func DefaultSourceOptions() SourceOptions {
	return SourceOptions{
		IncludeIntro:      true,
		IncludeConclusion: true,
		Style:             "professional",
	}
}

// Pipeline owns artifact creation and the status state machine. Each run
// operates on a freshly created artifact id, so concurrent runs never
// share mutable state.
type Pipeline struct {
	llm   *llm.Manager
	store *store.Store
	audit *audit.Logger
}

// NewPipeline creates a pipeline over the given gateway and store
func NewPipeline(manager *llm.Manager, st *store.Store, auditLog *audit.Logger) *Pipeline {
	return &Pipeline{
		llm:   manager,
		store: st,
		audit: auditLog,
	}
}

// CreateLecture creates a lecture artifact and generates its content.
// The artifact id is returned even when generation fails, so callers can
// point the user at the errored record.
func (p *Pipeline) CreateLecture(ctx context.Context, req Request) (string, error) {
	lecture := &store.Lecture{
		UserID:       req.UserID,
		Title:        req.Title,
		Subject:      req.Subject,
		Grade:        req.Grade,
		Requirements: req.Requirements,
		Status:       store.StatusGenerating,
	}
	if err := p.store.CreateLecture(lecture); err != nil {
		return "", fmt.Errorf("failed to create lecture record: %w", err)
	}

	started := time.Now()
	content, err := p.LectureContent(ctx, req)
	if err != nil {
		p.fail(lecture.ID, KindLecture, started, err)
		return lecture.ID, err
	}

	encoded, _ := json.Marshal(content)
	if err := p.store.SetLectureContent(lecture.ID, encoded, store.StatusCompleted); err != nil {
		p.fail(lecture.ID, KindLecture, started, err)
		return lecture.ID, fmt.Errorf("failed to persist lecture content: %w", err)
	}

	p.complete(lecture.ID, KindLecture, started, extract.TierFull)
	return lecture.ID, nil
}

// CreateSlideDeck creates a slide-deck artifact and generates its slides.
func (p *Pipeline) CreateSlideDeck(ctx context.Context, req Request) (string, error) {
	deck := &store.SlideDeck{
		UserID:           req.UserID,
		Title:            req.Title,
		Subject:          req.Subject,
		PresentationType: req.PresentationType,
		Duration:         req.Duration,
		Requirements:     req.Requirements,
		Status:           store.StatusGenerating,
	}
	if err := p.store.CreateSlideDeck(deck); err != nil {
		return "", fmt.Errorf("failed to create slide deck record: %w", err)
	}

	started := time.Now()
	slides, tier, err := p.Slides(ctx, req)
	if err != nil {
		p.fail(deck.ID, KindSlide, started, err)
		return deck.ID, err
	}

	if err := p.store.SetSlideDeckSlides(deck.ID, slides, store.StatusCompleted); err != nil {
		p.fail(deck.ID, KindSlide, started, err)
		return deck.ID, fmt.Errorf("failed to persist slides: %w", err)
	}

	p.complete(deck.ID, KindSlide, started, tier)
	return deck.ID, nil
}

// CreateSlidesFromLecture creates a slide deck derived from an existing
// lecture's content. Returns store.ErrNotFound when the lecture is absent.
func (p *Pipeline) CreateSlidesFromLecture(ctx context.Context, lectureID string, opts SourceOptions) (string, error) {
	lecture, err := p.store.GetLecture(lectureID)
	if err != nil {
		return "", fmt.Errorf("failed to load source lecture: %w", err)
	}

	deck := &store.SlideDeck{
		UserID:           opts.UserID,
		Title:            "Slides: " + lecture.Title,
		Subject:          lecture.Subject,
		PresentationType: "lecture",
		Description:      fmt.Sprintf("Slides created from lecture: %s", lecture.Title),
		Requirements:     fmt.Sprintf("Create slides from lecture content (intro=%t, conclusion=%t, questions=%t, style=%s)", opts.IncludeIntro, opts.IncludeConclusion, opts.IncludeQuestions, opts.Style),
		SourceLectureID:  lectureID,
		Status:           store.StatusGenerating,
	}
	if err := p.store.CreateSlideDeck(deck); err != nil {
		return "", fmt.Errorf("failed to create slide deck record: %w", err)
	}

	src := SourceContent{
		Content:           lectureContentText(lecture),
		Title:             lecture.Title,
		Subject:           lecture.Subject,
		IncludeIntro:      opts.IncludeIntro,
		IncludeConclusion: opts.IncludeConclusion,
		IncludeQuestions:  opts.IncludeQuestions,
		Style:             opts.Style,
	}

	started := time.Now()
	slides, tier, err := p.SlidesFromSource(ctx, src)
	if err != nil {
		p.fail(deck.ID, KindSlideFromSource, started, err)
		return deck.ID, err
	}

	if err := p.store.SetSlideDeckSlides(deck.ID, slides, store.StatusCompleted); err != nil {
		p.fail(deck.ID, KindSlideFromSource, started, err)
		return deck.ID, fmt.Errorf("failed to persist slides: %w", err)
	}

	p.complete(deck.ID, KindSlideFromSource, started, tier)
	return deck.ID, nil
}

// LectureContent generates free-text lecture content without touching any
// artifact. Errors are gateway failures only.
func (p *Pipeline) LectureContent(ctx context.Context, req Request) (string, error) {
	resp, err := p.llm.Generate(ctx, llm.PurposeGenerate, llm.Request{
		Messages: []llm.Message{{Role: "system", Content: LecturePrompt(req)}},
	})
	if err != nil {
		return "", fmt.Errorf("lecture generation failed: %w", err)
	}
	return resp.Content, nil
}

// Slides generates a flat slide deck. An unparseable reply degrades to a
// single-slide skeleton; only a failed gateway call is an error.
func (p *Pipeline) Slides(ctx context.Context, req Request) ([]store.SlideContent, extract.Tier, error) {
	resp, err := p.llm.Generate(ctx, llm.PurposeGenerate, llm.Request{
		Messages: []llm.Message{{Role: "system", Content: DeckPrompt(req)}},
	})
	if err != nil {
		return nil, extract.TierSkeleton, fmt.Errorf("slide generation failed: %w", err)
	}

	slides, tier := extract.Array(resp.Content, DeckSkeleton(req.Title, resp.Content))
	if tier == extract.TierSkeleton {
		log.Warn().Str("title", req.Title).Msg("slide extraction degraded to skeleton")
	}
	return slides, tier, nil
}

// SlidesFromSource generates a slide deck derived from lecture content.
func (p *Pipeline) SlidesFromSource(ctx context.Context, src SourceContent) ([]store.SlideContent, extract.Tier, error) {
	resp, err := p.llm.Generate(ctx, llm.PurposeGenerate, llm.Request{
		Messages: []llm.Message{{Role: "system", Content: DeckFromLecturePrompt(src)}},
	})
	if err != nil {
		return nil, extract.TierSkeleton, fmt.Errorf("slide-from-lecture generation failed: %w", err)
	}

	skeleton := []store.SlideContent{{
		Title:     "Slides: " + src.Title,
		Content:   resp.Content,
		SlideType: "content",
		Notes:     "Created from lecture",
	}}
	slides, tier := extract.Array(resp.Content, skeleton)
	if tier == extract.TierSkeleton {
		log.Warn().Str("title", src.Title).Msg("slide-from-lecture extraction degraded to skeleton")
	}
	return slides, tier, nil
}

// fail marks the artifact as errored. Prior content is left untouched:
// only the status column changes.
func (p *Pipeline) fail(artifactID string, kind Kind, started time.Time, cause error) {
	var setErr error
	switch kind {
	case KindLecture:
		setErr = p.store.SetLectureStatus(artifactID, store.StatusError)
	default:
		setErr = p.store.SetSlideDeckStatus(artifactID, store.StatusError)
	}
	if setErr != nil {
		log.Error().Err(setErr).Str("artifact", artifactID).Msg("failed to mark artifact as errored")
	}

	log.Error().Err(cause).Str("artifact", artifactID).Str("kind", string(kind)).Msg("generation failed")
	_ = p.audit.Log(audit.Entry{
		Event:      audit.EventGeneration,
		ArtifactID: artifactID,
		Kind:       string(kind),
		Status:     string(store.StatusError),
		Error:      cause.Error(),
		Duration:   time.Since(started),
	})
}

func (p *Pipeline) complete(artifactID string, kind Kind, started time.Time, tier extract.Tier) {
	log.Info().Str("artifact", artifactID).Str("kind", string(kind)).Str("tier", tier.String()).Msg("generation completed")
	_ = p.audit.Log(audit.Entry{
		Event:      audit.EventGeneration,
		ArtifactID: artifactID,
		Kind:       string(kind),
		Status:     string(store.StatusCompleted),
		Tier:       tier.String(),
		Duration:   time.Since(started),
	})
}

// lectureContentText renders a lecture's stored content as plain text for
// prompt embedding. Content may be a JSON string or a structured outline.
func lectureContentText(lecture *store.Lecture) string {
	if len(lecture.Content) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(lecture.Content, &text); err == nil {
		return text
	}
	return string(lecture.Content)
}
