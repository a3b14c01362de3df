package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"edubot/extract"
	"edubot/generation"
	"edubot/llm"
)

// SlideHandler extracts slide-deck parameters from the message and starts
// the generation pipeline in the same turn. The artifact is observable at
// status=generating; its completion happens out of band from the user's
// perspective.
type SlideHandler struct {
	llm      *llm.Manager
	pipeline *generation.Pipeline
}

// NewSlideHandler creates the slide-creation handler
func NewSlideHandler(manager *llm.Manager, pipeline *generation.Pipeline) *SlideHandler {
	return &SlideHandler{llm: manager, pipeline: pipeline}
}

func (h *SlideHandler) Name() string {
	return "create_slide"
}

func (h *SlideHandler) Handle(ctx context.Context, state TurnState) TurnState {
	resp, err := h.llm.Generate(ctx, llm.PurposeClassify, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: generation.SlideRequestPrompt()},
			{Role: "user", Content: "Request: " + state.Message},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("slide request extraction failed")
		state.Response = degradationMessage(err)
		state.Metadata = errorMetadata(err)
		return state
	}

	slideReq, tier := extract.Object(resp.Content, generation.SlideRequestSkeleton(state.Message))
	if tier == extract.TierSkeleton {
		log.Warn().Msg("slide request extraction degraded to skeleton")
	}
	if slideReq.Requirements == "" {
		slideReq.Requirements = state.Message
	}

	deckID, err := h.pipeline.CreateSlideDeck(ctx, generation.Request{
		Kind:             generation.KindSlide,
		Title:            slideReq.Title,
		Subject:          slideReq.Subject,
		PresentationType: slideReq.PresentationType,
		Duration:         slideReq.Duration,
		Requirements:     slideReq.Requirements,
		UserID:           state.UserID,
	})
	if err != nil {
		log.Error().Err(err).Str("slide_id", deckID).Msg("slide deck generation failed")
		state.Response = degradationMessage(err)
		state.Metadata = errorMetadata(err)
		if deckID != "" {
			state.Metadata["slide_id"] = deckID
		}
		return state
	}

	state.Response = fmt.Sprintf("I've created the slide deck '%s' for you. Its content is being generated and will be ready shortly.", slideReq.Title)
	state.Metadata = map[string]any{"slide_id": deckID}
	state.ToolsUsed = append(state.ToolsUsed, h.Name())
	return state
}
