package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/normalize"
	"SignalScanner/internal/ports"
)

const (
	// Enrichment data older than this is considered stale.
	defaultStaleAfter = 7 * 24 * time.Hour

	maxKeywords = 10
)

var (
	// Anchored so a year-month is only taken from a real date value, not
	// from free text that happens to mention one.
	periodExpr  = regexp.MustCompile(`^\d{4}-\d{2}`)
	keywordExpr = regexp.MustCompile(`[가-힣]{2,}`)
)

// SQLiteRepository is the store of record. It owns deduplication, the
// derived summary columns, scoring persistence, and the scan-period
// history.
type SQLiteRepository struct {
	db        *sql.DB
	scorer    ports.Scorer
	stopWords map[string]struct{}
	logger    *slog.Logger
	now       func() time.Time
}

var (
	_ ports.CompanyRepository = (*SQLiteRepository)(nil)
	_ ports.PeriodTracker     = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository wires the repository over an open database handle.
func NewSQLiteRepository(db *sql.DB, scorer ports.Scorer, stopWords []string, logger *slog.Logger) *SQLiteRepository {
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[w] = struct{}{}
	}
	return &SQLiteRepository{
		db:        db,
		scorer:    scorer,
		stopWords: stops,
		logger:    logger,
		now:       time.Now,
	}
}

// Exists reports whether a company with the same normalized name is
// already persisted.
func (r *SQLiteRepository) Exists(ctx context.Context, name string) (bool, error) {
	norm := normalize.Name(name)

	var count int
	err := sq.Select("count(1)").
		From("raw_company_data").
		Where("lower(company_name) = ?", norm).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check company exists: %w", err)
	}
	return count > 0, nil
}

// Save persists new records with first-write-wins semantics. Each record
// gets its own transaction so a failure does not roll back earlier saves.
// Funding periods of saved records are marked processed at the end.
func (r *SQLiteRepository) Save(ctx context.Context, records []domain.EnrichedCompanyRecord) error {
	periods := make(map[string]struct{})

	for _, rec := range records {
		name := normalize.Name(rec.Name)
		if !normalize.Resolvable(name) {
			r.logger.Info("skipping unresolvable company name", "raw", rec.Name)
			continue
		}

		exists, err := r.Exists(ctx, name)
		if err != nil {
			r.logger.Warn("duplicate check failed", "company", name, "error", err)
			continue
		}
		if exists {
			r.logger.Debug("company already persisted", "company", name)
			continue
		}

		if err := r.saveOne(ctx, name, rec); err != nil {
			r.logger.Warn("save company failed", "company", name, "error", err)
			continue
		}
		if p := periodExpr.FindString(strings.TrimSpace(rec.FundingDate)); p != "" {
			periods[p] = struct{}{}
		}
	}

	for _, p := range sortedKeys(periods) {
		if err := r.MarkProcessed(ctx, p); err != nil {
			r.logger.Warn("mark period failed", "period", p, "error", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) saveOne(ctx context.Context, name string, rec domain.EnrichedCompanyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now()
	res, err := sq.Insert("raw_company_data").
		Columns("company_name", "source", "funding_stage", "funding_round",
			"funding_date", "amount", "investors", "industry",
			"keywords", "required_roles", "job_roles", "news_title",
			"founded_date", "employee_count", "collected_at", "last_enrich_date").
		Values(name, rec.Source, rec.FundingStage, rec.FundingRound,
			rec.FundingDate, rec.Amount, rec.Investors, rec.Industry,
			r.extractKeywords(rec.NewsList), requiredRoles(rec.JobRoles), jobsSummary(rec), firstNewsTitle(rec.NewsList),
			rec.FoundedDate, rec.EmployeeCount, now, now).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("company id: %w", err)
	}

	// News and job sub-rows are best effort.
	r.insertNews(ctx, tx, id, rec.NewsList)
	r.insertJobs(ctx, tx, id, rec)

	if err := r.replaceScore(ctx, tx, id, rec); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) insertNews(ctx context.Context, tx *sql.Tx, companyID int64, items []domain.NewsItem) {
	for _, n := range items {
		if n.Title == "" || n.Link == "" {
			continue
		}

		var count int
		err := sq.Select("count(1)").
			From("news").
			Where(sq.Eq{"company_id": companyID, "title": n.Title, "url": n.Link}).
			RunWith(tx).
			QueryRowContext(ctx).
			Scan(&count)
		if err != nil {
			r.logger.Warn("news dedup check failed", "title", n.Title, "error", err)
			continue
		}
		if count > 0 {
			continue
		}

		_, err = sq.Insert("news").
			Columns("company_id", "title", "content", "url", "published_at", "source_name", "created_at").
			Values(companyID, n.Title, n.Content, n.Link, n.PublishedAt, n.SourceName, r.now()).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			r.logger.Warn("insert news failed", "title", n.Title, "error", err)
		}
	}
}

func (r *SQLiteRepository) insertJobs(ctx context.Context, tx *sql.Tx, companyID int64, rec domain.EnrichedCompanyRecord) {
	for _, j := range rec.JobRoles {
		if j.Title == "" {
			continue
		}

		var count int
		err := sq.Select("count(1)").
			From("jobs").
			Where(sq.Eq{"company_id": companyID, "title": j.Title}).
			RunWith(tx).
			QueryRowContext(ctx).
			Scan(&count)
		if err != nil {
			r.logger.Warn("job dedup check failed", "title", j.Title, "error", err)
			continue
		}
		if count > 0 {
			continue
		}

		source := j.Source
		if source == "" {
			source = "wanted"
		}
		_, err = sq.Insert("jobs").
			Columns("company_id", "title", "team", "link", "source", "collected_at").
			Values(companyID, j.Title, j.Team, j.Link, source, r.now()).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			r.logger.Warn("insert job failed", "title", j.Title, "error", err)
		}
	}

	// A legacy plain-string line is stored as one untyped row.
	if len(rec.JobRoles) == 0 && rec.LegacyJobLine != "" {
		_, err := sq.Insert("jobs").
			Columns("company_id", "title", "team", "link", "source", "collected_at").
			Values(companyID, rec.LegacyJobLine, nil, nil, "unknown", r.now()).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			r.logger.Warn("insert legacy job failed", "error", err)
		}
	}
}

func (r *SQLiteRepository) replaceScore(ctx context.Context, tx *sql.Tx, companyID int64, rec domain.EnrichedCompanyRecord) error {
	rec.ID = companyID
	score := r.scorer.Score(rec)

	_, err := sq.Delete("signal_scores").
		Where(sq.Eq{"company_id": companyID}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("clear score: %w", err)
	}

	_, err = sq.Insert("signal_scores").
		Columns("company_id", "funding_score", "hiring_score", "recency_score", "total_score").
		Values(companyID, score.FundingScore, score.HiringScore, score.RecencyScore, score.TotalScore).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// IsProcessed reports whether a year-month period is already ingested.
func (r *SQLiteRepository) IsProcessed(ctx context.Context, period string) (bool, error) {
	var count int
	err := sq.Select("count(1)").
		From("processed_periods").
		Where(sq.Eq{"period": period}).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check period: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records a period as ingested; marking twice is a no-op.
func (r *SQLiteRepository) MarkProcessed(ctx context.Context, period string) error {
	_, err := sq.Insert("processed_periods").
		Options("OR IGNORE").
		Columns("period", "processed_at").
		Values(period, r.now()).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark period: %w", err)
	}
	return nil
}

// jobsSummary renders structured postings as "team: title" pairs, or falls
// back to the legacy plain-string line.
func jobsSummary(rec domain.EnrichedCompanyRecord) string {
	if len(rec.JobRoles) == 0 {
		return rec.LegacyJobLine
	}
	parts := make([]string, 0, len(rec.JobRoles))
	for _, j := range rec.JobRoles {
		team := j.Team
		if team == "" {
			team = "Other"
		}
		parts = append(parts, team+": "+j.Title)
	}
	return strings.Join(parts, ", ")
}

// requiredRoles lists the distinct classified teams, sorted, excluding the
// Other bucket.
func requiredRoles(jobs []domain.JobPosting) string {
	seen := make(map[string]struct{})
	for _, j := range jobs {
		if j.Team == "" || j.Team == "Other" {
			continue
		}
		seen[j.Team] = struct{}{}
	}
	return strings.Join(sortedKeys(seen), ", ")
}

// extractKeywords pulls Korean word tokens out of news titles and bodies,
// drops stop words, and keeps at most ten, sorted.
func (r *SQLiteRepository) extractKeywords(items []domain.NewsItem) string {
	seen := make(map[string]struct{})
	for _, n := range items {
		for _, w := range keywordExpr.FindAllString(n.Title+" "+n.Content, -1) {
			if _, stop := r.stopWords[w]; stop {
				continue
			}
			seen[w] = struct{}{}
		}
	}
	words := sortedKeys(seen)
	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return strings.Join(words, ", ")
}

func firstNewsTitle(items []domain.NewsItem) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Title
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
