package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

// NewsAPIClient implements ports.NewsSearcher backed by the NewsAPI
// "everything" endpoint.
type NewsAPIClient struct {
	endpoint string
	apiKey   string
	language string
	client   *http.Client
}

var _ ports.NewsSearcher = (*NewsAPIClient)(nil)

// NewNewsAPIClient builds a client from configuration.
func NewNewsAPIClient(cfg config.NewsAPIConfig, client *http.Client) *NewsAPIClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NewsAPIClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		client:   client,
	}
}

// Configured reports whether the client can issue requests at all.
func (c *NewsAPIClient) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != ""
}

// SearchNews queries articles mentioning the company, optionally bounded
// to the date window, newest first.
func (c *NewsAPIClient) SearchNews(ctx context.Context, company string, window *ports.DateWindow, limit int) ([]domain.NewsItem, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("newsapi client misconfigured")
	}

	params := url.Values{}
	params.Set("q", company)
	params.Set("language", c.language)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("sortBy", "publishedAt")
	params.Set("apiKey", c.apiKey)
	if window != nil {
		params.Set("from", window.From.Format("2006-01-02"))
		params.Set("to", window.To.Format("2006-01-02"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var body struct {
		Articles []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Content     string `json:"content"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]domain.NewsItem, 0, limit)
	for _, art := range body.Articles {
		if len(items) >= limit {
			break
		}
		content := art.Description
		if content == "" {
			content = art.Content
		}
		items = append(items, domain.NewsItem{
			Title:       art.Title,
			Link:        art.URL,
			Content:     content,
			PublishedAt: art.PublishedAt,
			SourceName:  art.Source.Name,
		})
	}
	return items, nil
}

// ChainNewsSearcher tries searchers in order and returns the first
// non-empty result, so NewsAPI can fall back to the Naver scraper.
type ChainNewsSearcher struct {
	searchers []ports.NewsSearcher
}

var _ ports.NewsSearcher = (*ChainNewsSearcher)(nil)

// NewChainNewsSearcher composes the fallback order.
func NewChainNewsSearcher(searchers ...ports.NewsSearcher) *ChainNewsSearcher {
	return &ChainNewsSearcher{searchers: searchers}
}

// SearchNews walks the chain; a failing or empty searcher defers to the
// next one. The last error is reported when every searcher fails.
func (c *ChainNewsSearcher) SearchNews(ctx context.Context, company string, window *ports.DateWindow, limit int) ([]domain.NewsItem, error) {
	var lastErr error
	for _, s := range c.searchers {
		items, err := s.SearchNews(ctx, company, window, limit)
		if err != nil {
			lastErr = err
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, lastErr
}
