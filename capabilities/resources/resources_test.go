package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRedirectURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"redirect link", "/l/?uddg=https%3A%2F%2Fexample.com%2Fpage", "https://example.com/page"},
		{"relative link", "/html/?q=test", "https://duckduckgo.com/html/?q=test"},
		{"absolute link", "https://example.com", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRedirectURL(tt.in))
		})
	}
}

func TestTranslateWithoutServiceDegrades(t *testing.T) {
	client := NewClient("", 5)

	result := client.Translate(context.Background(), "Guten Tag", "de", "en")

	assert.Equal(t, "error", result.Status)
	// The original text survives so callers can still show something
	assert.Equal(t, "Guten Tag", result.TranslatedText)
	assert.NotEmpty(t, result.Error)
}

func TestTranslateCallsExternalService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(TranslationResult{Status: "success", TranslatedText: "Good day"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5)
	result := client.Translate(context.Background(), "Guten Tag", "de", "en")

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "Good day", result.TranslatedText)
}

func TestTranslateServiceFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5)
	result := client.Translate(context.Background(), "Guten Tag", "de", "en")

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Guten Tag", result.TranslatedText)
}

func TestFactCheckWithoutServiceDegrades(t *testing.T) {
	client := NewClient("", 5)

	result := client.FactCheck(context.Background(), "The sun is a star.", "astronomy")

	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "unable to verify", result.Result)
}

func TestFactCheckCallsExternalService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "astronomy", payload["topic"])
		json.NewEncoder(w).Encode(FactCheckResult{Status: "success", Result: "accurate", ConfidenceScore: 0.95})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5)
	result := client.FactCheck(context.Background(), "The sun is a star.", "astronomy")

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "accurate", result.Result)
	assert.InDelta(t, 0.95, result.ConfidenceScore, 0.001)
}

func TestNewClientDefaultsMaxResults(t *testing.T) {
	client := NewClient("", 0)
	assert.Equal(t, 5, client.maxResults)
}
