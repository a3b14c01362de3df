package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"edubot/store"
)

// searchLimit caps each result set in a search reply.
const searchLimit = 3

// SearchHandler looks up existing lectures and slide decks matching the
// message text.
type SearchHandler struct {
	store *store.Store
}

// NewSearchHandler creates the search handler
func NewSearchHandler(st *store.Store) *SearchHandler {
	return &SearchHandler{store: st}
}

func (h *SearchHandler) Name() string {
	return "search"
}

// Handle queries lectures and slide decks in parallel and formats a
// human-readable listing. Both sets empty yields an explicit offer to
// create a new document instead.
func (h *SearchHandler) Handle(ctx context.Context, state TurnState) TurnState {
	var lectures []store.Lecture
	var decks []store.SlideDeck

	var g errgroup.Group
	g.Go(func() error {
		var err error
		lectures, err = h.store.SearchLectures(state.Message, state.UserID, searchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		decks, err = h.store.SearchSlideDecks(state.Message, state.UserID, searchLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("document search failed")
		state.Response = msgSearchFailure
		state.Metadata = errorMetadata(err)
		return state
	}

	if len(lectures) == 0 && len(decks) == 0 {
		state.Response = msgNoResults
		return state
	}

	var sb strings.Builder
	sb.WriteString("I found the following documents:\n")

	if len(lectures) > 0 {
		sb.WriteString("\n📚 **Lectures:**\n")
		for _, lec := range lectures {
			fmt.Fprintf(&sb, "- %s (%s)\n", lec.Title, lec.Subject)
		}
	}
	if len(decks) > 0 {
		sb.WriteString("\n🎯 **Slide decks:**\n")
		for _, deck := range decks {
			fmt.Fprintf(&sb, "- %s (%d slides)\n", deck.Title, deck.SlideCount)
		}
	}

	state.Response = sb.String()
	state.Metadata = map[string]any{
		"search_results": map[string]any{
			"lectures": lectures,
			"slides":   decks,
		},
	}
	state.ToolsUsed = append(state.ToolsUsed, h.Name())
	return state
}
