package agent

import (
	"context"
	"errors"
)

// User-facing degradation messages. Internal error text is never exposed
// to the end user.
const (
	msgChatFailure   = "Sorry, I ran into a problem handling your message. Please try again."
	msgTimeout       = "The content service is responding slowly right now. Please try again."
	msgUnavailable   = "Sorry, I'm having technical difficulties. Please try again later."
	msgSearchFailure = "Something went wrong while searching."
	msgClarify       = "I didn't quite understand your request. Could you describe it in more detail?"
	msgNoResults     = "I couldn't find any matching documents. Would you like me to create one?"
)

// degradationMessage picks the user-facing reply for an upstream failure:
// timeouts invite a retry, everything else gets the generic degradation.
func degradationMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	return msgUnavailable
}

// errorMetadata builds the metadata envelope marking a failed handler run
func errorMetadata(err error) map[string]any {
	errType := "unavailable"
	if errors.Is(err, context.DeadlineExceeded) {
		errType = "timeout"
	}
	return map[string]any{
		"error":      true,
		"error_type": errType,
	}
}
