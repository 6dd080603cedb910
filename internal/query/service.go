package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/normalize"
	"SignalScanner/internal/ports"
)

// At most this many news and job rows are shown per company.
const maxDisplayItems = 5

// Enricher builds live company data when nothing is persisted yet.
type Enricher interface {
	Enrich(ctx context.Context, candidates []domain.CompanyRecord, maxNews, maxJobs int) []domain.EnrichedCompanyRecord
}

// Service resolves a company name to a presentation view, preferring the
// store and falling back to live enrichment without persisting.
type Service struct {
	repository ports.CompanyRepository
	enricher   Enricher
	sentiment  []config.KeywordRule
	logger     *slog.Logger
}

// NewService wires the read path.
func NewService(repository ports.CompanyRepository, enricher Enricher, sentiment []config.KeywordRule, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		enricher:   enricher,
		sentiment:  sentiment,
		logger:     logger,
	}
}

// Lookup returns the view for one company name.
func (s *Service) Lookup(ctx context.Context, name string) (*domain.CompanyView, error) {
	norm := normalize.Name(name)
	if !normalize.Resolvable(norm) {
		return nil, fmt.Errorf("company name %q is too short to resolve", name)
	}

	company, err := s.repository.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	if company != nil {
		return s.storedView(ctx, company)
	}

	s.logger.Info("company not persisted, running live lookup", "company", norm)
	return s.liveView(ctx, norm)
}

func (s *Service) storedView(ctx context.Context, company *domain.PersistedCompany) (*domain.CompanyView, error) {
	news, err := s.repository.NewsForCompany(ctx, company.ID, maxDisplayItems)
	if err != nil {
		return nil, fmt.Errorf("load news: %w", err)
	}
	jobs, err := s.repository.JobsForCompany(ctx, company.ID, maxDisplayItems)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	return &domain.CompanyView{
		Company:   company,
		News:      s.tagAll(news),
		Jobs:      jobs,
		FromStore: true,
	}, nil
}

// liveView enriches the name on the spot. Nothing is written back; a later
// ingestion run may persist the company properly.
func (s *Service) liveView(ctx context.Context, norm string) (*domain.CompanyView, error) {
	enriched := s.enricher.Enrich(ctx, []domain.CompanyRecord{{Name: norm, Source: "live-query"}},
		maxDisplayItems, maxDisplayItems)
	if len(enriched) == 0 {
		return nil, fmt.Errorf("no data found for %q", norm)
	}

	rec := enriched[0]
	if len(rec.NewsList) == 0 && len(rec.JobRoles) == 0 && rec.FoundedDate == "" {
		return nil, fmt.Errorf("no data found for %q", norm)
	}

	news := rec.NewsList
	if len(news) > maxDisplayItems {
		news = news[:maxDisplayItems]
	}
	jobs := rec.JobRoles
	if len(jobs) > maxDisplayItems {
		jobs = jobs[:maxDisplayItems]
	}

	transient := &domain.PersistedCompany{
		CompanyName:   norm,
		FoundedDate:   rec.FoundedDate,
		EmployeeCount: rec.EmployeeCount,
	}
	if len(rec.NewsList) > 0 {
		transient.NewsTitle = rec.NewsList[0].Title
	}

	return &domain.CompanyView{
		Company:   transient,
		News:      s.tagAll(news),
		Jobs:      jobs,
		FromStore: false,
	}, nil
}

func (s *Service) tagAll(items []domain.NewsItem) []domain.TaggedNews {
	tagged := make([]domain.TaggedNews, 0, len(items))
	for _, n := range items {
		tagged = append(tagged, domain.TaggedNews{
			NewsItem:  n,
			Sentiment: s.sentimentOf(n.Title + " " + n.Content),
		})
	}
	return tagged
}

// sentimentOf tags display sentiment by keyword-count majority; ties and
// no matches are neutral.
func (s *Service) sentimentOf(text string) domain.SentimentTag {
	lower := strings.ToLower(text)

	counts := make(map[string]int, len(s.sentiment))
	for _, rule := range s.sentiment {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				counts[rule.Label]++
			}
		}
	}

	positive := counts[string(domain.SentimentPositive)]
	negative := counts[string(domain.SentimentNegative)]
	switch {
	case positive > negative:
		return domain.SentimentPositive
	case negative > positive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
