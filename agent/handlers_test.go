package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edubot/generation"
	"edubot/llm"
	"edubot/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// --- Chat handler ---

func TestChatHandlerReply(t *testing.T) {
	manager := managerWith(llm.PurposeChat, replyWith("Happy to help with your lesson plan!"))
	handler := NewChatHandler(manager)

	state := handler.Handle(context.Background(), TurnState{Message: "How do I plan a lesson?"})

	assert.Equal(t, "Happy to help with your lesson plan!", state.Response)
	assert.Contains(t, state.ToolsUsed, "chat_completion")
	assert.Nil(t, state.Metadata)
}

func TestChatHandlerEmbedsHistory(t *testing.T) {
	var systemPrompt string
	manager := managerWith(llm.PurposeChat, &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			systemPrompt = req.Messages[0].Content
			return &llm.Response{Content: "ok"}, nil
		},
	})
	handler := NewChatHandler(manager)

	handler.Handle(context.Background(), TurnState{
		Message: "and then?",
		History: []HistoryTurn{{Sender: "user", Content: "photosynthesis basics"}},
	})

	assert.Contains(t, systemPrompt, "user: photosynthesis basics")
}

func TestChatHandlerGatewayFailure(t *testing.T) {
	manager := managerWith(llm.PurposeChat, &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, errors.New("boom")
		},
	})
	handler := NewChatHandler(manager)

	state := handler.Handle(context.Background(), TurnState{Message: "hi"})

	assert.Equal(t, msgChatFailure, state.Response)
	assert.Equal(t, true, state.Metadata["error"])
}

// --- Lecture handler ---

func TestLectureHandlerValidOutline(t *testing.T) {
	manager := managerWith(llm.PurposeGenerate, replyWith(`{
		"title": "Photosynthesis",
		"subject": "Biology",
		"grade": "middle",
		"duration": "45 minutes",
		"objectives": ["Explain light reactions"],
		"outline": [{
			"section": "Introduction",
			"duration": "10 minutes",
			"topics": [{
				"main_topic": "What plants do with light",
				"subtopics": [{"subtitle": "Chlorophyll", "content": "Pigments absorb light", "activities": ["Demo"]}]
			}]
		}],
		"resources": ["Textbook ch. 4"],
		"assessment": "Quiz"
	}`))
	handler := NewLectureHandler(manager)

	state := handler.Handle(context.Background(), TurnState{Message: "lecture about photosynthesis"})

	assert.True(t, strings.HasPrefix(state.Response, "✅"))
	assert.Contains(t, state.Response, "Photosynthesis")

	assert.Equal(t, "lecture", state.Metadata["type"])
	assert.Equal(t, true, state.Metadata["editable"])
	assert.Equal(t, true, state.Metadata["show_create_slide_button"])

	outline, ok := state.Metadata["lecture_data"].(generation.LectureOutline)
	require.True(t, ok)
	assert.Equal(t, "Photosynthesis", outline.Title)
	require.Len(t, outline.Outline, 1)
	assert.Equal(t, "Introduction", outline.Outline[0].Section)
}

func TestLectureHandlerProseDegradesToSkeleton(t *testing.T) {
	prose := strings.Repeat("The model rambles about teaching instead of returning JSON. ", 10)
	manager := managerWith(llm.PurposeGenerate, replyWith(prose))
	handler := NewLectureHandler(manager)

	state := handler.Handle(context.Background(), TurnState{Message: "lecture please"})

	// The reply still follows the success shape, carrying the fallback title
	assert.True(t, strings.HasPrefix(state.Response, "✅"))

	outline, ok := state.Metadata["lecture_data"].(generation.LectureOutline)
	require.True(t, ok)
	assert.Equal(t, "Requested lecture", outline.Title)

	// The skeleton carries the first 200 characters of the raw reply
	require.Len(t, outline.Outline, 1)
	content := outline.Outline[0].Topics[0].Subtopics[0].Content
	assert.Equal(t, prose[:200]+"...", content)
}

func TestLectureHandlerTimeout(t *testing.T) {
	manager := managerWith(llm.PurposeGenerate, &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, context.DeadlineExceeded
		},
	})
	handler := NewLectureHandler(manager)

	state := handler.Handle(context.Background(), TurnState{Message: "lecture please"})

	assert.Equal(t, msgTimeout, state.Response)
	assert.Equal(t, "timeout", state.Metadata["error_type"])
}

// --- Slide handler ---

func slideTestManager(extractReply string, generateReply func(ctx context.Context, req llm.Request) (*llm.Response, error)) *llm.Manager {
	manager := llm.NewManager()
	manager.RegisterClient(llm.PurposeClassify, llm.Config{Model: "stub"}, replyWith(extractReply))
	manager.RegisterClient(llm.PurposeGenerate, llm.Config{Model: "stub", Timeout: 50 * time.Millisecond}, &stubClient{generateFunc: generateReply})
	return manager
}

func TestSlideHandlerSuccess(t *testing.T) {
	st := newTestStore(t)
	manager := slideTestManager(
		`{"title": "Cell Division", "subject": "Biology", "presentation_type": "lecture", "duration": 30, "requirements": "mitosis basics"}`,
		func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: `[{"title": "Mitosis", "content": "Phases"}]`}, nil
		},
	)
	pipeline := generation.NewPipeline(manager, st, nil)
	handler := NewSlideHandler(manager, pipeline)

	state := handler.Handle(context.Background(), TurnState{Message: "slides about cell division", UserID: "u1"})

	assert.Contains(t, state.Response, "Cell Division")
	assert.Contains(t, state.Response, "being generated")
	deckID, ok := state.Metadata["slide_id"].(string)
	require.True(t, ok)

	deck, err := st.GetSlideDeck(deckID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, deck.Status)
	assert.Equal(t, "u1", deck.UserID)
}

func TestSlideHandlerTimeoutMarksArtifactError(t *testing.T) {
	st := newTestStore(t)
	manager := slideTestManager(
		`{"title": "Cell Division", "subject": "Biology", "requirements": "r"}`,
		func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	)
	pipeline := generation.NewPipeline(manager, st, nil)
	handler := NewSlideHandler(manager, pipeline)

	state := handler.Handle(context.Background(), TurnState{Message: "slides please"})

	// The reply invites a retry and still points at the errored artifact
	assert.Equal(t, msgTimeout, state.Response)
	assert.Equal(t, "timeout", state.Metadata["error_type"])
	deckID, ok := state.Metadata["slide_id"].(string)
	require.True(t, ok)

	deck, err := st.GetSlideDeck(deckID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusError, deck.Status)
	assert.Empty(t, deck.Slides)
}

func TestSlideHandlerExtractionFallsBackToMessage(t *testing.T) {
	st := newTestStore(t)
	var generatePrompt string
	manager := slideTestManager(
		"no structured output here",
		func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			generatePrompt = req.Messages[0].Content
			return &llm.Response{Content: `[{"title": "A"}]`}, nil
		},
	)
	pipeline := generation.NewPipeline(manager, st, nil)
	handler := NewSlideHandler(manager, pipeline)

	message := "make me slides about volcanoes"
	state := handler.Handle(context.Background(), TurnState{Message: message})

	// The raw message becomes the requirements when extraction degrades
	assert.Contains(t, generatePrompt, message)
	assert.NotNil(t, state.Metadata["slide_id"])
}

// --- Search handler ---

func TestSearchHandlerFindsDocuments(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateLecture(&store.Lecture{
		UserID: "u1", Title: "Volcanoes", Subject: "Geography", Requirements: "r",
	}))
	deck := &store.SlideDeck{UserID: "u1", Title: "Volcano Types", Subject: "Geography", Requirements: "r"}
	require.NoError(t, st.CreateSlideDeck(deck))
	require.NoError(t, st.SetSlideDeckSlides(deck.ID, []store.SlideContent{{Title: "s"}, {Title: "t"}}, store.StatusCompleted))

	handler := NewSearchHandler(st)
	state := handler.Handle(context.Background(), TurnState{Message: "volcano", UserID: "u1"})

	assert.Contains(t, state.Response, "I found the following documents:")
	assert.Contains(t, state.Response, "Volcanoes (Geography)")
	assert.Contains(t, state.Response, "Volcano Types (2 slides)")

	results, ok := state.Metadata["search_results"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, results["lectures"].([]store.Lecture), 1)
	assert.Len(t, results["slides"].([]store.SlideDeck), 1)
}

func TestSearchHandlerNoResults(t *testing.T) {
	st := newTestStore(t)
	handler := NewSearchHandler(st)

	state := handler.Handle(context.Background(), TurnState{Message: "quantum knitting", UserID: "u1"})

	assert.Equal(t, msgNoResults, state.Response)
	// No search_results key on an empty result
	_, present := state.Metadata["search_results"]
	assert.False(t, present)
}

func TestSearchHandlerScopedToUser(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateLecture(&store.Lecture{
		UserID: "someone-else", Title: "Volcanoes", Subject: "Geography", Requirements: "r",
	}))

	handler := NewSearchHandler(st)
	state := handler.Handle(context.Background(), TurnState{Message: "volcano", UserID: "u1"})

	assert.Equal(t, msgNoResults, state.Response)
}
