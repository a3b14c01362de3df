package agent

// Handlers holds one handler per conversational capability.
type Handlers struct {
	Chat    Handler
	Lecture Handler
	Slide   Handler
	Search  Handler
}

// Route is a pure dispatch from intent to handler. The switch is
// exhaustive over the closed intent set; anything else falls back to chat.
func Route(intent Intent, h Handlers) Handler {
	switch intent {
	case IntentCreateLecture:
		return h.Lecture
	case IntentCreateSlide:
		return h.Slide
	case IntentSearch:
		return h.Search
	case IntentChat:
		return h.Chat
	default:
		return h.Chat
	}
}
