package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedHandler struct {
	name string
}

func (h *namedHandler) Name() string { return h.name }
func (h *namedHandler) Handle(ctx context.Context, state TurnState) TurnState {
	state.Response = h.name
	return state
}

func TestRoute(t *testing.T) {
	handlers := Handlers{
		Chat:    &namedHandler{name: "chat"},
		Lecture: &namedHandler{name: "lecture"},
		Slide:   &namedHandler{name: "slide"},
		Search:  &namedHandler{name: "search"},
	}

	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentChat, "chat"},
		{IntentCreateLecture, "lecture"},
		{IntentCreateSlide, "slide"},
		{IntentSearch, "search"},
		{Intent(42), "chat"},
	}

	for _, tt := range tests {
		t.Run(tt.intent.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.intent, handlers).Name())
		})
	}
}
