package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/normalize"
	"SignalScanner/internal/ports"
)

var companyColumns = []string{
	"id", "company_name", "source", "funding_stage", "funding_round",
	"funding_date", "amount", "investors", "industry",
	"keywords", "required_roles", "job_roles", "news_title",
	"founded_date", "employee_count", "collected_at", "last_enrich_date",
}

// FindByName resolves a company by normalized name; nil when absent.
func (r *SQLiteRepository) FindByName(ctx context.Context, name string) (*domain.PersistedCompany, error) {
	norm := normalize.Name(name)

	row := sq.Select(companyColumns...).
		From("raw_company_data").
		Where("lower(company_name) = ?", norm).
		RunWith(r.db).
		QueryRowContext(ctx)

	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	return company, nil
}

// NewsForCompany returns stored news rows in insertion order.
func (r *SQLiteRepository) NewsForCompany(ctx context.Context, companyID int64, limit int) ([]domain.NewsItem, error) {
	q := sq.Select("title", "content", "url", "published_at", "source_name").
		From("news").
		Where(sq.Eq{"company_id": companyID}).
		OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []domain.NewsItem
	for rows.Next() {
		var title, content, url, published, source sql.NullString
		if err := rows.Scan(&title, &content, &url, &published, &source); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, domain.NewsItem{
			Title:       title.String,
			Content:     content.String,
			Link:        url.String,
			PublishedAt: published.String,
			SourceName:  source.String,
		})
	}
	return items, rows.Err()
}

// JobsForCompany returns stored job rows in insertion order.
func (r *SQLiteRepository) JobsForCompany(ctx context.Context, companyID int64, limit int) ([]domain.JobPosting, error) {
	q := sq.Select("title", "team", "link", "source").
		From("jobs").
		Where(sq.Eq{"company_id": companyID}).
		OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobPosting
	for rows.Next() {
		var title, team, link, source sql.NullString
		if err := rows.Scan(&title, &team, &link, &source); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, domain.JobPosting{
			Title:  title.String,
			Team:   team.String,
			Link:   link.String,
			Source: source.String,
		})
	}
	return jobs, rows.Err()
}

// CompaniesForEnrichment lists persisted rows matching the filter, oldest
// enrichment first.
func (r *SQLiteRepository) CompaniesForEnrichment(ctx context.Context, filter ports.EnrichFilter) ([]domain.PersistedCompany, error) {
	q := sq.Select(companyColumns...).From("raw_company_data")

	if len(filter.Companies) > 0 {
		names := make([]string, 0, len(filter.Companies))
		for _, name := range filter.Companies {
			names = append(names, normalize.Name(name))
		}
		q = q.Where(sq.Eq{"lower(company_name)": names})
	}
	if len(filter.Industries) > 0 {
		q = q.Where(sq.Eq{"industry": filter.Industries})
	}
	if filter.OnlyStale {
		staleAfter := filter.StaleAfter
		if staleAfter <= 0 {
			staleAfter = defaultStaleAfter
		}
		cutoff := r.now().Add(-staleAfter)
		q = q.Where(sq.Or{
			sq.Expr("last_enrich_date IS NULL"),
			sq.Lt{"last_enrich_date": cutoff},
		})
	}
	q = q.OrderBy("last_enrich_date", "id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	rows, err := q.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.PersistedCompany
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	return companies, rows.Err()
}

// UpdateEnrichment refreshes the enrichment columns of an existing row,
// dedup-inserts its news and jobs, recomputes the score, and stamps
// last_enrich_date.
func (r *SQLiteRepository) UpdateEnrichment(ctx context.Context, rec domain.EnrichedCompanyRecord) error {
	if rec.ID == 0 {
		return fmt.Errorf("update enrichment: record has no id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	values := map[string]interface{}{
		"keywords":         r.extractKeywords(rec.NewsList),
		"required_roles":   requiredRoles(rec.JobRoles),
		"job_roles":        jobsSummary(rec),
		"last_enrich_date": r.now(),
	}
	if title := firstNewsTitle(rec.NewsList); title != "" {
		values["news_title"] = title
	}
	if rec.FoundedDate != "" {
		values["founded_date"] = rec.FoundedDate
	}
	if rec.EmployeeCount != "" {
		values["employee_count"] = rec.EmployeeCount
	}

	_, err = sq.Update("raw_company_data").
		SetMap(values).
		Where(sq.Eq{"id": rec.ID}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}

	r.insertNews(ctx, tx, rec.ID, rec.NewsList)
	r.insertJobs(ctx, tx, rec.ID, rec)

	if err := r.replaceScore(ctx, tx, rec.ID, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// PromoteTargets inserts mart rows for companies at or above the score
// threshold and returns the newly promoted ones. Companies already in the
// mart stay untouched.
func (r *SQLiteRepository) PromoteTargets(ctx context.Context, threshold int) ([]domain.SalesTarget, error) {
	rows, err := sq.Select("s.company_id", "c.company_name", "s.total_score",
		"c.funding_stage", "c.required_roles").
		From("signal_scores s").
		Join("raw_company_data c ON c.id = s.company_id").
		Where(sq.GtOrEq{"s.total_score": threshold}).
		Where("s.company_id NOT IN (SELECT company_id FROM sales_mart)").
		OrderBy("s.total_score DESC", "s.company_id").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("select promotable: %w", err)
	}
	defer rows.Close()

	var targets []domain.SalesTarget
	for rows.Next() {
		var target domain.SalesTarget
		var stage, roles sql.NullString
		if err := rows.Scan(&target.CompanyID, &target.CompanyName, &target.TotalScore, &stage, &roles); err != nil {
			return nil, fmt.Errorf("scan promotable: %w", err)
		}
		target.Priority = domain.PriorityHigh
		target.SalesHook = salesHook(stage.String, roles.String)
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range targets {
		_, err := sq.Insert("sales_mart").
			Options("OR IGNORE").
			Columns("company_id", "priority", "sales_hook", "is_sent").
			Values(t.CompanyID, t.Priority, t.SalesHook, false).
			RunWith(r.db).
			ExecContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("insert mart row: %w", err)
		}
	}
	return targets, nil
}

// salesHook builds the one-line outreach context shown to the sales team.
func salesHook(stage, roles string) string {
	var parts []string
	if stage != "" {
		parts = append(parts, stage+" 투자 유치")
	}
	if roles != "" {
		parts = append(parts, roles+" 채용 중")
	}
	return strings.Join(parts, ", ")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (*domain.PersistedCompany, error) {
	var c domain.PersistedCompany
	var source, stage, round, date, amount, investors, industry sql.NullString
	var keywords, roles, jobs, newsTitle, founded, employees sql.NullString
	var collected, enriched sql.NullTime

	err := row.Scan(&c.ID, &c.CompanyName, &source, &stage, &round,
		&date, &amount, &investors, &industry,
		&keywords, &roles, &jobs, &newsTitle,
		&founded, &employees, &collected, &enriched)
	if err != nil {
		return nil, err
	}

	c.Source = source.String
	c.FundingStage = stage.String
	c.FundingRound = round.String
	c.FundingDate = date.String
	c.Amount = amount.String
	c.Investors = investors.String
	c.Industry = industry.String
	c.Keywords = keywords.String
	c.RequiredRoles = roles.String
	c.JobsSummary = jobs.String
	c.NewsTitle = newsTitle.String
	c.FoundedDate = founded.String
	c.EmployeeCount = employees.String
	c.CollectedAt = collected.Time
	c.LastEnrichDate = enriched.Time
	return &c, nil
}
