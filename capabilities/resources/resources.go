// Package resources wraps the external helper services: web search,
// Wikipedia lookups and the translation/fact-check pass-throughs. These
// are thin boundary calls; failures degrade to an error-status payload
// instead of propagating.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client calls external resource services
type Client struct {
	externalURL string // translation / fact-check service, optional
	maxResults  int
	http        *http.Client
}

// NewClient creates a resources client
func NewClient(externalURL string, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		externalURL: externalURL,
		maxResults:  maxResults,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// TranslationResult is the translate helper's payload.
type TranslationResult struct {
	Status         string `json:"status"`
	TranslatedText string `json:"translated_text"`
	Error          string `json:"error,omitempty"`
}

// Translate passes text to the external translation service. On any
// failure the original text comes back with an error status.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) TranslationResult {
	if c.externalURL == "" {
		return TranslationResult{Status: "error", TranslatedText: text, Error: "no external service configured"}
	}

	params := url.Values{}
	params.Set("text", text)
	params.Set("source_lang", sourceLang)
	params.Set("target_lang", targetLang)

	var result TranslationResult
	if err := c.postJSON(ctx, c.externalURL+"/translate?"+params.Encode(), nil, &result); err != nil {
		log.Warn().Err(err).Msg("translation service call failed")
		return TranslationResult{Status: "error", TranslatedText: text, Error: err.Error()}
	}
	return result
}

// FactCheckResult is the fact-check helper's payload.
type FactCheckResult struct {
	Status          string  `json:"status"`
	Result          string  `json:"fact_check_result"`
	ConfidenceScore float64 `json:"confidence_score"`
	Error           string  `json:"error,omitempty"`
}

// FactCheck passes content to the external fact-check service.
func (c *Client) FactCheck(ctx context.Context, content, topic string) FactCheckResult {
	if c.externalURL == "" {
		return FactCheckResult{Status: "error", Result: "unable to verify", Error: "no external service configured"}
	}

	payload := map[string]string{"content": content, "topic": topic}
	var result FactCheckResult
	if err := c.postJSON(ctx, c.externalURL+"/fact-check", payload, &result); err != nil {
		log.Warn().Err(err).Msg("fact-check service call failed")
		return FactCheckResult{Status: "error", Result: "unable to verify", Error: err.Error()}
	}
	return result
}

// WikipediaResult is a summary lookup payload.
type WikipediaResult struct {
	Status  string `json:"status"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Error   string `json:"error,omitempty"`
}

// Wikipedia fetches an article summary from the public REST API.
func (c *Client) Wikipedia(ctx context.Context, topic string) WikipediaResult {
	endpoint := "https://en.wikipedia.org/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return WikipediaResult{Status: "error", Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("wikipedia lookup failed")
		return WikipediaResult{Status: "error", Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WikipediaResult{Status: "error", Error: fmt.Sprintf("wikipedia returned %d", resp.StatusCode)}
	}

	var parsed struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
		Content struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return WikipediaResult{Status: "error", Error: err.Error()}
	}

	return WikipediaResult{
		Status:  "success",
		Title:   parsed.Title,
		Summary: parsed.Extract,
		URL:     parsed.Content.Desktop.Page,
	}
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	var body strings.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = *strings.NewReader(string(b))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
