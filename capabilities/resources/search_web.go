package resources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the web-search helper's payload.
type SearchResponse struct {
	Status  string         `json:"status"`
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

// SearchWeb searches for educational content using DuckDuckGo. Failures
// degrade to an empty error-status result set.
func (c *Client) SearchWeb(ctx context.Context, query string) SearchResponse {
	results, err := c.searchDuckDuckGo(ctx, query)
	if err != nil {
		return SearchResponse{Status: "error", Results: []SearchResult{}, Error: err.Error()}
	}
	return SearchResponse{Status: "success", Results: results}
}

func (c *Client) searchDuckDuckGo(ctx context.Context, query string) ([]SearchResult, error) {
	// The HTML endpoint returns actual result listings, unlike the API.
	searchURL := "https://html.duckduckgo.com/html/"

	params := url.Values{}
	params.Add("q", query)
	params.Add("b", "")
	params.Add("kl", "us-en")

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", searchURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; EduBot Assistant/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	results := make([]SearchResult, 0, c.maxResults)

	// DuckDuckGo HTML uses .result for each search hit
	doc.Find(".result").Each(func(i int, s *goquery.Selection) {
		if len(results) >= c.maxResults {
			return
		}

		titleElem := s.Find(".result__a")
		title := strings.TrimSpace(titleElem.Text())
		href, exists := titleElem.Attr("href")
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())

		if exists && title != "" && href != "" {
			results = append(results, SearchResult{
				Title:   title,
				URL:     resolveRedirectURL(href),
				Snippet: snippet,
			})
		}
	})

	return results, nil
}

// resolveRedirectURL unwraps DuckDuckGo redirect links of the form
// /l/?uddg=https%3A%2F%2Fexample.com
func resolveRedirectURL(ddgURL string) string {
	if strings.HasPrefix(ddgURL, "/l/?uddg=") {
		encoded := strings.TrimPrefix(ddgURL, "/l/?uddg=")
		if decoded, err := url.QueryUnescape(encoded); err == nil {
			return decoded
		}
	}
	if strings.HasPrefix(ddgURL, "/") {
		return "https://duckduckgo.com" + ddgURL
	}
	return ddgURL
}
