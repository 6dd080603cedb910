package search

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/enrich"
	"SignalScanner/internal/ports"
)

var careerLinkExpr = regexp.MustCompile(`(?i)채용|recruit|career|job`)

// careerPaths are the common hiring paths probed on candidate domains.
var careerPaths = []string{"/career", "/careers", "/recruit", "/recruitment", "/jobs", "/채용"}

// CareersJobSearcher probes likely company domains for a careers page.
// A light heuristic: a proper solution would resolve the homepage through
// a company profile lookup first.
type CareersJobSearcher struct {
	client     *http.Client
	userAgent  string
	classifier *enrich.TeamClassifier
	// domainsFor is overridable for tests; default guesses .com/.co.kr.
	domainsFor func(company string) []string
}

var _ ports.JobSearcher = (*CareersJobSearcher)(nil)

// NewCareersJobSearcher wires the probe.
func NewCareersJobSearcher(client *http.Client, userAgent string, classifier *enrich.TeamClassifier) *CareersJobSearcher {
	return &CareersJobSearcher{
		client:     client,
		userAgent:  userAgent,
		classifier: classifier,
		domainsFor: func(company string) []string {
			return []string{
				fmt.Sprintf("https://%s.com", company),
				fmt.Sprintf("https://%s.co.kr", company),
			}
		},
	}
}

// Name identifies the source on persisted postings.
func (s *CareersJobSearcher) Name() string { return "careers-page" }

// SearchJobs returns hiring anchors from the first careers path that
// responds; unreachable probes are simply skipped.
func (s *CareersJobSearcher) SearchJobs(ctx context.Context, company string, limit int) ([]domain.JobPosting, error) {
	for _, base := range s.domainsFor(company) {
		for _, path := range careerPaths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			doc, err := fetchDocument(ctx, s.client, base+path, s.userAgent)
			if err != nil {
				continue
			}
			if jobs := s.parseAnchors(doc, base, limit); len(jobs) > 0 {
				return jobs, nil
			}
		}
	}
	return nil, nil
}

func (s *CareersJobSearcher) parseAnchors(doc *goquery.Document, base string, limit int) []domain.JobPosting {
	var jobs []domain.JobPosting
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if text == "" || !careerLinkExpr.MatchString(text) {
			return true
		}
		href, _ := a.Attr("href")

		jobs = append(jobs, domain.JobPosting{
			Title:  text,
			Team:   s.classifier.Classify(text),
			Link:   absoluteLink(base, href),
			Source: s.Name(),
		})
		return len(jobs) < limit
	})
	return jobs
}
