package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"edubot/extract"
	"edubot/generation"
	"edubot/llm"
)

// LectureHandler turns a lecture request into a structured outline. The
// outline is returned as editable metadata for the caller's UI; the user
// decides separately whether to persist it or derive slides from it.
type LectureHandler struct {
	llm *llm.Manager
}

// NewLectureHandler creates the lecture-outline handler
func NewLectureHandler(manager *llm.Manager) *LectureHandler {
	return &LectureHandler{llm: manager}
}

func (h *LectureHandler) Name() string {
	return "create_lecture"
}

// Handle asks the model for an outline matching the lecture schema and
// degrades to a single-section skeleton when the reply cannot be parsed.
func (h *LectureHandler) Handle(ctx context.Context, state TurnState) TurnState {
	resp, err := h.llm.Generate(ctx, llm.PurposeGenerate, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: generation.OutlinePrompt()},
			{Role: "user", Content: "Request: " + state.Message},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("lecture outline generation failed")
		state.Response = degradationMessage(err)
		state.Metadata = errorMetadata(err)
		return state
	}

	outline, tier := extract.Object(resp.Content, generation.OutlineSkeleton(resp.Content))
	if tier == extract.TierSkeleton {
		log.Warn().Msg("lecture outline extraction degraded to skeleton")
	}

	state.Response = fmt.Sprintf("✅ **Lecture outline: %s**\n\n", outline.Title)
	state.Metadata = map[string]any{
		"type":                     "lecture",
		"lecture_data":             outline,
		"editable":                 true,
		"show_create_slide_button": true,
	}
	state.ToolsUsed = append(state.ToolsUsed, h.Name())
	return state
}
