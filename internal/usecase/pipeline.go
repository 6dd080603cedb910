package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

// Enricher augments raw candidates with news, jobs, and profile data.
type Enricher interface {
	Enrich(ctx context.Context, candidates []domain.CompanyRecord, maxNews, maxJobs int) []domain.EnrichedCompanyRecord
}

// PipelineConfig carries the tunables of one ingestion run.
type PipelineConfig struct {
	MonthsBack    int
	MaxNews       int
	MaxJobs       int
	MartThreshold int
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.CandidateSource
	Enricher   Enricher
	Repository ports.CompanyRepository
	Notifier   ports.Notifier
	Config     PipelineConfig
	Logger     *slog.Logger
}

// IngestOptions selects the ingestion mode and its filters.
type IngestOptions struct {
	SkipEnrich bool // save candidates without enrichment
	OnlyEnrich bool // re-enrich persisted rows, no collection

	// Bounded historical scan; Year zero means the trailing scan.
	Year       int
	StartMonth int
	EndMonth   int

	// Enrich-only filters.
	FilterCompanies  []string
	FilterIndustries []string
	UpdateOld        bool // restrict to rows stale by more than 7 days
	BatchSize        int
}

// Summary reports what one ingestion pass did.
type Summary struct {
	Candidates int // raw candidates collected
	Records    int // records handed to the store
	Updated    int // persisted rows re-enriched
	Promoted   int // new sales-mart targets
}

// Pipeline implements the collect -> enrich -> save -> promote -> notify
// workflow.
type Pipeline struct {
	source     ports.CandidateSource
	enricher   Enricher
	repository ports.CompanyRepository
	notifier   ports.Notifier
	cfg        PipelineConfig
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		enricher:   deps.Enricher,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		cfg:        deps.Config,
		logger:     deps.Logger,
	}
}

// Ingest runs one ingestion pass as of now. Mode and scan bounds come from
// opts; the scheduled daily run uses the zero options.
func (p *Pipeline) Ingest(ctx context.Context, now time.Time, opts IngestOptions) (Summary, error) {
	var summary Summary

	if opts.OnlyEnrich {
		updated, err := p.reenrich(ctx, opts)
		if err != nil {
			return summary, err
		}
		summary.Updated = updated
		summary.Promoted, err = p.promote(ctx)
		return summary, err
	}

	periods, recentOnly, err := scanPeriods(now, p.cfg.MonthsBack, opts)
	if err != nil {
		return summary, err
	}

	candidates, err := p.source.Collect(ctx, ports.CollectRequest{
		Periods:    periods,
		RecentOnly: recentOnly,
	})
	if err != nil {
		return summary, fmt.Errorf("collect candidates: %w", err)
	}
	summary.Candidates = len(candidates)
	p.logger.Info("candidates collected", "count", len(candidates), "periods", periods)
	if len(candidates) == 0 {
		return summary, nil
	}

	var records []domain.EnrichedCompanyRecord
	if opts.SkipEnrich {
		records = make([]domain.EnrichedCompanyRecord, 0, len(candidates))
		for _, c := range candidates {
			records = append(records, domain.EnrichedCompanyRecord{
				CompanyRecord: c,
				InferredEvent: domain.EventUnknown,
			})
		}
	} else {
		records = p.enricher.Enrich(ctx, candidates, p.cfg.MaxNews, p.cfg.MaxJobs)
	}
	summary.Records = len(records)

	if err := p.repository.Save(ctx, records); err != nil {
		return summary, fmt.Errorf("save records: %w", err)
	}
	summary.Promoted, err = p.promote(ctx)
	return summary, err
}

// reenrich refreshes enrichment data of already-persisted companies and
// returns how many rows were updated.
func (p *Pipeline) reenrich(ctx context.Context, opts IngestOptions) (int, error) {
	filter := ports.EnrichFilter{
		Companies:  opts.FilterCompanies,
		Industries: opts.FilterIndustries,
		OnlyStale:  opts.UpdateOld,
		Limit:      opts.BatchSize,
	}
	companies, err := p.repository.CompaniesForEnrichment(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list companies for enrichment: %w", err)
	}
	p.logger.Info("re-enriching companies", "count", len(companies))

	updated := 0
	for _, company := range companies {
		candidate := candidateFromPersisted(company)
		enriched := p.enricher.Enrich(ctx, []domain.CompanyRecord{candidate}, p.cfg.MaxNews, p.cfg.MaxJobs)
		if len(enriched) == 0 {
			continue
		}
		if err := p.repository.UpdateEnrichment(ctx, enriched[0]); err != nil {
			p.logger.Warn("update enrichment failed", "company", company.CompanyName, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}

// promote moves threshold-crossing companies into the sales mart and pushes
// a digest for the newly promoted ones.
func (p *Pipeline) promote(ctx context.Context) (int, error) {
	targets, err := p.repository.PromoteTargets(ctx, p.cfg.MartThreshold)
	if err != nil {
		return 0, fmt.Errorf("promote targets: %w", err)
	}
	if len(targets) == 0 {
		return 0, nil
	}
	p.logger.Info("sales targets promoted", "count", len(targets))

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, buildDigest(targets)); err != nil {
			p.logger.Warn("digest delivery failed", "error", err)
		}
	}
	return len(targets), nil
}

func buildDigest(targets []domain.SalesTarget) string {
	message := fmt.Sprintf("새 영업 타겟 %d건\n", len(targets))
	for _, t := range targets {
		message += fmt.Sprintf("- %s (score %d)", t.CompanyName, t.TotalScore)
		if t.SalesHook != "" {
			message += ": " + t.SalesHook
		}
		message += "\n"
	}
	return message
}

// scanPeriods resolves the year-month keys to scan. An explicit year bounds
// a historical scan; otherwise the trailing window ending at now is used
// and the recency filter applies.
func scanPeriods(now time.Time, monthsBack int, opts IngestOptions) ([]string, bool, error) {
	if opts.Year == 0 {
		return trailingPeriods(now, monthsBack), true, nil
	}

	start, end := opts.StartMonth, opts.EndMonth
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = 12
	}
	if start < 1 || end > 12 || start > end {
		return nil, false, fmt.Errorf("invalid month range %d..%d", start, end)
	}

	periods := make([]string, 0, end-start+1)
	for m := start; m <= end; m++ {
		periods = append(periods, fmt.Sprintf("%04d-%02d", opts.Year, m))
	}
	return periods, false, nil
}

func trailingPeriods(now time.Time, monthsBack int) []string {
	if monthsBack < 1 {
		monthsBack = 1
	}
	// Anchor at the first of the month so month-end dates cannot skip a
	// month during normalization.
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	periods := make([]string, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		periods = append(periods, base.AddDate(0, -i, 0).Format("2006-01"))
	}
	return periods
}

func candidateFromPersisted(c domain.PersistedCompany) domain.CompanyRecord {
	return domain.CompanyRecord{
		ID:           c.ID,
		Name:         c.CompanyName,
		Source:       c.Source,
		FundingStage: c.FundingStage,
		FundingRound: c.FundingRound,
		FundingDate:  c.FundingDate,
		Amount:       c.Amount,
		Investors:    c.Investors,
		Industry:     c.Industry,
	}
}
