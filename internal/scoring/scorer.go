// Package scoring turns enriched company records into signal scores.
//
// Two policies coexist: the fixed ruleset used by the ingestion store and a
// weight-table policy tuned via configuration. They are selected explicitly,
// never merged.
package scoring

import (
	"regexp"
	"strings"
	"time"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

var (
	fullDateExpr  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthDateExpr = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// New selects the scorer implementation for the configured mode.
func New(cfg config.ScoringConfig, now func() time.Time) ports.Scorer {
	if cfg.Mode == config.ScoringModeWeighted {
		return NewWeightedScorer(cfg, now)
	}
	return NewFixedScorer(now)
}

// FixedScorer applies the canonical funding/hiring/recency rules.
type FixedScorer struct {
	now func() time.Time
}

var _ ports.Scorer = (*FixedScorer)(nil)

// NewFixedScorer builds the scorer; now defaults to time.Now.
func NewFixedScorer(now func() time.Time) *FixedScorer {
	if now == nil {
		now = time.Now
	}
	return &FixedScorer{now: now}
}

// Score computes the three components and their sum. Pure and total:
// unparseable dates contribute zero recency instead of failing.
func (s *FixedScorer) Score(record domain.EnrichedCompanyRecord) domain.SignalScore {
	funding := fundingScore(record.InferredEvent)
	hiring := hiringScore(record.JobCount())
	recency := recencyScore(record.FundingDate, s.now())

	return domain.SignalScore{
		CompanyID:    record.ID,
		FundingScore: funding,
		HiringScore:  hiring,
		RecencyScore: recency,
		TotalScore:   funding + hiring + recency,
	}
}

func fundingScore(inferredEvent string) int {
	ie := strings.ToLower(inferredEvent)
	switch {
	case strings.Contains(ie, "grow") || strings.Contains(ie, "투자"):
		return 3
	case strings.Contains(ie, "declin") || strings.Contains(ie, "감소"):
		return 0
	default:
		return 1
	}
}

func hiringScore(jobCount int) int {
	switch {
	case jobCount == 0:
		return 0
	case jobCount <= 2:
		return 1
	default:
		return 2
	}
}

func recencyScore(fundingDate string, now time.Time) int {
	parsed, ok := ParseFundingDate(fundingDate)
	if !ok {
		return 0
	}

	delta := monthsBetween(parsed, now)
	switch {
	case delta <= 1:
		return 3
	case delta <= 3:
		return 2
	case delta <= 6:
		return 1
	default:
		return 0
	}
}

// ParseFundingDate accepts "YYYY-MM-DD" or "YYYY-MM"; anything else is
// reported as unparseable.
func ParseFundingDate(value string) (time.Time, bool) {
	switch {
	case fullDateExpr.MatchString(value):
		t, err := time.Parse("2006-01-02", value)
		return t, err == nil
	case monthDateExpr.MatchString(value):
		t, err := time.Parse("2006-01", value)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
