package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/enrich"
	"SignalScanner/internal/ports"
)

const saraminBaseURL = "https://www.saramin.co.kr"

// SaraminJobSearcher scrapes recruit items from the Saramin search page.
type SaraminJobSearcher struct {
	client     *http.Client
	userAgent  string
	baseURL    string
	classifier *enrich.TeamClassifier
}

var _ ports.JobSearcher = (*SaraminJobSearcher)(nil)

// NewSaraminJobSearcher wires the scraper. baseURL is overridable for
// tests; empty means the live site.
func NewSaraminJobSearcher(client *http.Client, userAgent, baseURL string, classifier *enrich.TeamClassifier) *SaraminJobSearcher {
	if baseURL == "" {
		baseURL = saraminBaseURL
	}
	return &SaraminJobSearcher{client: client, userAgent: userAgent, baseURL: baseURL, classifier: classifier}
}

// Name identifies the source on persisted postings.
func (s *SaraminJobSearcher) Name() string { return "Saramin" }

// SearchJobs extracts posting titles and links from recruit items.
func (s *SaraminJobSearcher) SearchJobs(ctx context.Context, company string, limit int) ([]domain.JobPosting, error) {
	pageURL := fmt.Sprintf("%s/zf_user/search?searchword=%s", s.baseURL, url.QueryEscape(company))
	doc, err := fetchDocument(ctx, s.client, pageURL, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("saramin jobs: %w", err)
	}

	var jobs []domain.JobPosting
	doc.Find("div.item_recruit, .recruit_item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		a := item.Find("a[href]").First()
		if a.Length() == 0 {
			return true
		}
		title := strings.TrimSpace(a.Text())
		if title == "" {
			return true
		}
		href, _ := a.Attr("href")

		jobs = append(jobs, domain.JobPosting{
			Title:  title,
			Team:   s.classifier.Classify(title),
			Link:   absoluteLink(s.baseURL, href),
			Source: s.Name(),
		})
		return len(jobs) < limit
	})
	return jobs, nil
}
