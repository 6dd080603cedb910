package ports

import (
	"context"
	"time"

	"SignalScanner/internal/domain"
)

// DateWindow bounds a news search around a funding event.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// NewsSearcher finds recent articles mentioning a company. Implementations
// return an error for observability but callers degrade it to no results.
type NewsSearcher interface {
	SearchNews(ctx context.Context, company string, window *DateWindow, limit int) ([]domain.NewsItem, error)
}

// JobSearcher finds open positions at a company from one source.
type JobSearcher interface {
	Name() string
	SearchJobs(ctx context.Context, company string, limit int) ([]domain.JobPosting, error)
}

// CompanyProfile carries best-effort founding/headcount data.
type CompanyProfile struct {
	FoundedDate   string
	EmployeeCount string
}

// Profiler looks up company profile facts via a text-pattern search.
type Profiler interface {
	Profile(ctx context.Context, company string) (CompanyProfile, error)
}

// Scorer turns an enriched record into a signal score.
type Scorer interface {
	Score(record domain.EnrichedCompanyRecord) domain.SignalScore
}

// EnrichFilter selects persisted companies for re-enrichment.
type EnrichFilter struct {
	Companies  []string
	Industries []string
	OnlyStale  bool          // restrict to rows stale by more than StaleAfter
	StaleAfter time.Duration // zero means the 7-day default
	Limit      int
}

// CompanyRepository is the persistence and deduplication boundary.
type CompanyRepository interface {
	// Exists reports whether a company with the same normalized name is
	// already persisted.
	Exists(ctx context.Context, name string) (bool, error)

	// Save persists new records with first-write-wins semantics and marks
	// any funding periods they resolve to. Per-record failures are logged
	// and do not abort the batch.
	Save(ctx context.Context, records []domain.EnrichedCompanyRecord) error

	// FindByName resolves a company by normalized name; nil when absent.
	FindByName(ctx context.Context, name string) (*domain.PersistedCompany, error)

	NewsForCompany(ctx context.Context, companyID int64, limit int) ([]domain.NewsItem, error)
	JobsForCompany(ctx context.Context, companyID int64, limit int) ([]domain.JobPosting, error)

	// CompaniesForEnrichment lists persisted rows matching the filter.
	CompaniesForEnrichment(ctx context.Context, filter EnrichFilter) ([]domain.PersistedCompany, error)

	// UpdateEnrichment refreshes enrichment columns of an existing row,
	// dedup-inserts its news/jobs, recomputes the score, and stamps
	// last_enrich_date.
	UpdateEnrichment(ctx context.Context, record domain.EnrichedCompanyRecord) error

	// PromoteTargets inserts mart rows for companies at or above the score
	// threshold and returns the newly promoted ones.
	PromoteTargets(ctx context.Context, threshold int) ([]domain.SalesTarget, error)
}

// PeriodTracker records which year-month scan periods are fully ingested.
type PeriodTracker interface {
	IsProcessed(ctx context.Context, period string) (bool, error)
	MarkProcessed(ctx context.Context, period string) error
}

// CollectRequest names the scan periods and the trailing-scan recency
// filter toggle.
type CollectRequest struct {
	Periods    []string // "YYYY-MM" keys
	RecentOnly bool
}

// CandidateSource yields raw candidate records for the requested periods.
type CandidateSource interface {
	Collect(ctx context.Context, req CollectRequest) ([]domain.CompanyRecord, error)
}

// Notifier pushes sales-target digests to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
