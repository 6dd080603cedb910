package scoring

import (
	"strings"
	"time"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

// WeightedScorer sums operator-tunable weight tables: a funding-stage table
// and a per-keyword job-title table, plus a flat bonus for funding dates
// within the configured trailing months.
type WeightedScorer struct {
	cfg config.ScoringConfig
	now func() time.Time
}

var _ ports.Scorer = (*WeightedScorer)(nil)

// NewWeightedScorer builds the scorer from config tables; now defaults to
// time.Now.
func NewWeightedScorer(cfg config.ScoringConfig, now func() time.Time) *WeightedScorer {
	if now == nil {
		now = time.Now
	}
	return &WeightedScorer{cfg: cfg, now: now}
}

// Score maps the stage table onto the funding component, the job-title
// table onto the hiring component, and the recency bonus onto the recency
// component, keeping total = sum of the three.
func (s *WeightedScorer) Score(record domain.EnrichedCompanyRecord) domain.SignalScore {
	funding := s.stageWeight(record.FundingStage)
	hiring := s.roleWeight(record)
	recency := s.recencyBonus(record.FundingDate)

	return domain.SignalScore{
		CompanyID:    record.ID,
		FundingScore: funding,
		HiringScore:  hiring,
		RecencyScore: recency,
		TotalScore:   funding + hiring + recency,
	}
}

// stageWeight picks the heaviest matching stage entry so overlapping keys
// ("Series A" vs "Series") stay deterministic.
func (s *WeightedScorer) stageWeight(stage string) int {
	best := 0
	for key, weight := range s.cfg.StageWeights {
		if strings.Contains(stage, key) && weight > best {
			best = weight
		}
	}
	return best
}

func (s *WeightedScorer) roleWeight(record domain.EnrichedCompanyRecord) int {
	var parts []string
	for _, job := range record.JobRoles {
		parts = append(parts, job.Title)
	}
	if record.LegacyJobLine != "" {
		parts = append(parts, record.LegacyJobLine)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	total := 0
	for keyword, weight := range s.cfg.RoleKeywordWeights {
		if strings.Contains(text, strings.ToLower(keyword)) {
			total += weight
		}
	}
	return total
}

func (s *WeightedScorer) recencyBonus(fundingDate string) int {
	parsed, ok := ParseFundingDate(fundingDate)
	if !ok {
		return 0
	}
	if monthsBetween(parsed, s.now()) <= s.cfg.RecencyMonths {
		return s.cfg.RecencyBonus
	}
	return 0
}
