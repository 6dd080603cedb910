// Package enrich augments candidate records with news, job postings, and
// inferred company events.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
	"SignalScanner/internal/scoring"
)

// newsWindowRadius bounds the news search around a known funding date.
const newsWindowRadius = 7 * 24 * time.Hour

// Enricher orchestrates per-candidate lookups across all configured
// sources. Source failures degrade to empty results and never abort the
// candidate or the batch.
type Enricher struct {
	news       ports.NewsSearcher
	jobSources []ports.JobSearcher
	profiler   ports.Profiler
	eventRules []config.KeywordRule
	logger     *slog.Logger
}

// NewEnricher wires the search capabilities and event rules.
func NewEnricher(news ports.NewsSearcher, jobs []ports.JobSearcher, profiler ports.Profiler, eventRules []config.KeywordRule, log *slog.Logger) *Enricher {
	return &Enricher{
		news:       news,
		jobSources: jobs,
		profiler:   profiler,
		eventRules: eventRules,
		logger:     log,
	}
}

// Enrich produces exactly one enriched record per candidate, in input
// order.
func (e *Enricher) Enrich(ctx context.Context, candidates []domain.CompanyRecord, maxNews, maxJobs int) []domain.EnrichedCompanyRecord {
	out := make([]domain.EnrichedCompanyRecord, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, e.enrichOne(ctx, c, maxNews, maxJobs))
	}
	e.debug("enrichment finished", "candidates", len(candidates))
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, candidate domain.CompanyRecord, maxNews, maxJobs int) domain.EnrichedCompanyRecord {
	record := domain.EnrichedCompanyRecord{CompanyRecord: candidate}

	news := e.searchNews(ctx, candidate, maxNews)
	record.NewsList = news
	record.JobRoles = e.searchJobs(ctx, candidate.Name, maxJobs)
	record.InferredEvent = e.inferEvent(news)

	if e.profiler != nil {
		profile, err := e.profiler.Profile(ctx, candidate.Name)
		if err != nil {
			e.warn("profile lookup failed", "company", candidate.Name, "error", err)
		} else {
			record.FoundedDate = profile.FoundedDate
			record.EmployeeCount = profile.EmployeeCount
		}
	}

	return record
}

func (e *Enricher) searchNews(ctx context.Context, candidate domain.CompanyRecord, maxNews int) []domain.NewsItem {
	if e.news == nil {
		return nil
	}

	var window *ports.DateWindow
	if fd, ok := scoring.ParseFundingDate(candidate.FundingDate); ok {
		window = &ports.DateWindow{
			From: fd.Add(-newsWindowRadius),
			To:   fd.Add(newsWindowRadius),
		}
	}

	items, err := e.news.SearchNews(ctx, candidate.Name, window, maxNews)
	if err != nil {
		e.warn("news search failed", "company", candidate.Name, "error", err)
		return nil
	}
	if len(items) > maxNews {
		items = items[:maxNews]
	}
	return items
}

// searchJobs merges postings from every source, deduplicates them by
// trimmed title preserving first-seen order, and truncates to maxJobs.
func (e *Enricher) searchJobs(ctx context.Context, company string, maxJobs int) []domain.JobPosting {
	var merged []domain.JobPosting
	for _, source := range e.jobSources {
		postings, err := source.SearchJobs(ctx, company, maxJobs)
		if err != nil {
			e.warn("job search failed", "company", company, "source", source.Name(), "error", err)
			continue
		}
		merged = append(merged, postings...)
	}

	seen := map[string]struct{}{}
	deduped := make([]domain.JobPosting, 0, len(merged))
	for _, job := range merged {
		key := strings.TrimSpace(job.Title)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, job)
		if len(deduped) >= maxJobs {
			break
		}
	}
	return deduped
}

// inferEvent classifies concatenated news titles with the ordered event
// rules; growth rules precede decline rules in the default configuration.
func (e *Enricher) inferEvent(news []domain.NewsItem) string {
	titles := make([]string, 0, len(news))
	for _, n := range news {
		titles = append(titles, n.Title)
	}

	if label, ok := firstMatch(e.eventRules, strings.Join(titles, " ")); ok {
		return label
	}
	return domain.EventUnknown
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Enricher) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
