package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/enrich"
	"SignalScanner/internal/ports"
)

const (
	wantedBaseURL = "https://www.wanted.co.kr"

	// The Wanted search page is flaky; bounded retries with a short fixed
	// backoff before giving up.
	wantedMaxAttempts  = 3
	wantedRetryBackoff = time.Second
)

// WantedJobSearcher scrapes job cards from the Wanted search page.
type WantedJobSearcher struct {
	client     *http.Client
	userAgent  string
	baseURL    string
	classifier *enrich.TeamClassifier
	backoff    time.Duration
}

var _ ports.JobSearcher = (*WantedJobSearcher)(nil)

// NewWantedJobSearcher wires the scraper. baseURL is overridable for
// tests; empty means the live site.
func NewWantedJobSearcher(client *http.Client, userAgent, baseURL string, classifier *enrich.TeamClassifier) *WantedJobSearcher {
	if baseURL == "" {
		baseURL = wantedBaseURL
	}
	return &WantedJobSearcher{
		client:     client,
		userAgent:  userAgent,
		baseURL:    baseURL,
		classifier: classifier,
		backoff:    wantedRetryBackoff,
	}
}

// Name identifies the source on persisted postings.
func (s *WantedJobSearcher) Name() string { return "wanted" }

// SearchJobs fetches the search page with up to three attempts and parses
// job cards.
func (s *WantedJobSearcher) SearchJobs(ctx context.Context, company string, limit int) ([]domain.JobPosting, error) {
	pageURL := fmt.Sprintf("%s/search?query=%s", s.baseURL, url.QueryEscape(company))

	var lastErr error
	for attempt := 1; attempt <= wantedMaxAttempts; attempt++ {
		doc, err := fetchDocument(ctx, s.client, pageURL, s.userAgent)
		if err == nil {
			return s.parseCards(doc, limit), nil
		}
		lastErr = err
		if attempt == wantedMaxAttempts {
			break
		}
		select {
		case <-time.After(s.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("wanted jobs after %d attempts: %w", wantedMaxAttempts, lastErr)
}

func (s *WantedJobSearcher) parseCards(doc *goquery.Document, limit int) []domain.JobPosting {
	cards := doc.Find(`div[class*="JobCard"]`)
	if cards.Length() == 0 {
		cards = doc.Find(".card-job, .job-card")
	}

	var jobs []domain.JobPosting
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find("a, h3, strong, h4").First().Text())
		if title == "" {
			return true
		}

		team := ""
		for _, sel := range []string{".job-meta", ".JobCard_meta", ".meta", ".tags", ".job-tag"} {
			if meta := card.Find(sel).First(); meta.Length() > 0 {
				team = strings.TrimSpace(meta.Text())
				break
			}
		}
		classifyText := title
		if team != "" {
			classifyText = team
		}

		link := ""
		if a := card.Find("a[href]").First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			link = absoluteLink(s.baseURL, href)
		}

		jobs = append(jobs, domain.JobPosting{
			Title:  title,
			Team:   s.classifier.Classify(classifyText),
			Link:   link,
			Source: s.Name(),
		})
		return len(jobs) < limit
	})
	return jobs
}
