package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/enrich"
	"SignalScanner/internal/ports"
)

const naverSearchURL = "https://search.naver.com/search.naver"

var (
	foundedExpr  = regexp.MustCompile(`(\d{4})년(?:\s*(\d{1,2})월(?:\s*(\d{1,2})일)?)?`)
	employeeExpr = regexp.MustCompile(`(\d{1,4})명(?:\s*이상)?`)
	hiringExpr   = regexp.MustCompile(`(?i)채용|공고|모집|recruit|hiring`)
)

// NaverNewsSearcher scrapes the Naver news tab; the fallback when NewsAPI
// is unavailable.
type NaverNewsSearcher struct {
	client    *http.Client
	userAgent string
	searchURL string
}

var _ ports.NewsSearcher = (*NaverNewsSearcher)(nil)

// NewNaverNewsSearcher wires the scraping client. searchURL is overridable
// for tests; empty means the live endpoint.
func NewNaverNewsSearcher(client *http.Client, userAgent, searchURL string) *NaverNewsSearcher {
	if searchURL == "" {
		searchURL = naverSearchURL
	}
	return &NaverNewsSearcher{client: client, userAgent: userAgent, searchURL: searchURL}
}

// SearchNews returns top article titles and links; the date window is not
// supported by the scrape and is ignored.
func (s *NaverNewsSearcher) SearchNews(ctx context.Context, company string, _ *ports.DateWindow, limit int) ([]domain.NewsItem, error) {
	pageURL := fmt.Sprintf("%s?where=news&query=%s", s.searchURL, url.QueryEscape(company))
	doc, err := fetchDocument(ctx, s.client, pageURL, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("naver news: %w", err)
	}

	var items []domain.NewsItem
	doc.Find(".news_tit").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		title := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if title == "" || href == "" || !strings.Contains(href, "news.naver.com") {
			return true
		}

		publishedAt := ""
		parent := a.ParentsFiltered("li, div").First()
		if parent.Length() > 0 {
			publishedAt = strings.TrimSpace(parent.Find("span.info, time").First().Text())
		}

		items = append(items, domain.NewsItem{
			Title:       title,
			Link:        href,
			PublishedAt: publishedAt,
			SourceName:  "Naver",
		})
		return len(items) < limit
	})
	return items, nil
}

// NaverJobSearcher extracts hiring announcements from a "<company> 채용"
// web search.
type NaverJobSearcher struct {
	client     *http.Client
	userAgent  string
	searchURL  string
	classifier *enrich.TeamClassifier
}

var _ ports.JobSearcher = (*NaverJobSearcher)(nil)

// NewNaverJobSearcher wires the aggregate job scraper.
func NewNaverJobSearcher(client *http.Client, userAgent, searchURL string, classifier *enrich.TeamClassifier) *NaverJobSearcher {
	if searchURL == "" {
		searchURL = naverSearchURL
	}
	return &NaverJobSearcher{client: client, userAgent: userAgent, searchURL: searchURL, classifier: classifier}
}

// Name identifies the source on persisted postings.
func (s *NaverJobSearcher) Name() string { return "Naver Search" }

// SearchJobs keeps anchors whose text looks like a hiring announcement.
func (s *NaverJobSearcher) SearchJobs(ctx context.Context, company string, limit int) ([]domain.JobPosting, error) {
	pageURL := fmt.Sprintf("%s?where=web&query=%s", s.searchURL, url.QueryEscape(company+" 채용"))
	doc, err := fetchDocument(ctx, s.client, pageURL, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("naver jobs: %w", err)
	}

	var jobs []domain.JobPosting
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if title == "" || !strings.HasPrefix(href, "http") || !hiringExpr.MatchString(title) {
			return true
		}
		jobs = append(jobs, domain.JobPosting{
			Title:  title,
			Team:   s.classifier.Classify(title),
			Link:   href,
			Source: s.Name(),
		})
		return len(jobs) < limit
	})
	return jobs, nil
}

// NaverProfiler looks up founding date and headcount from the text of a
// profile-style search.
type NaverProfiler struct {
	client    *http.Client
	userAgent string
	searchURL string
}

var _ ports.Profiler = (*NaverProfiler)(nil)

// NewNaverProfiler wires the profile scraper.
func NewNaverProfiler(client *http.Client, userAgent, searchURL string) *NaverProfiler {
	if searchURL == "" {
		searchURL = naverSearchURL
	}
	return &NaverProfiler{client: client, userAgent: userAgent, searchURL: searchURL}
}

// Profile extracts "YYYY년 MM월 DD일" and "N명" patterns from the page
// text; missing patterns leave fields unset.
func (s *NaverProfiler) Profile(ctx context.Context, company string) (ports.CompanyProfile, error) {
	pageURL := fmt.Sprintf("%s?query=%s", s.searchURL, url.QueryEscape(company+" 설립일 직원수"))
	doc, err := fetchDocument(ctx, s.client, pageURL, s.userAgent)
	if err != nil {
		return ports.CompanyProfile{}, fmt.Errorf("naver profile: %w", err)
	}

	text := doc.Text()
	var profile ports.CompanyProfile

	if m := foundedExpr.FindStringSubmatch(text); m != nil {
		profile.FoundedDate = fmt.Sprintf("%s-%s-%s", m[1], padDatePart(m[2]), padDatePart(m[3]))
	}
	if m := employeeExpr.FindStringSubmatch(text); m != nil {
		profile.EmployeeCount = m[1]
	}
	return profile, nil
}

func padDatePart(part string) string {
	if part == "" {
		return "01"
	}
	if len(part) == 1 {
		return "0" + part
	}
	return part
}
