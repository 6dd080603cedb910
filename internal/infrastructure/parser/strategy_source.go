package parser

import (
	"context"
	"fmt"
	"log/slog"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
	"SignalScanner/internal/scanner"
)

// StrategySource implements ports.CandidateSource via registered scanner
// strategies, skipping periods the tracker has already ingested.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	tracker  ports.PeriodTracker
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, tracker ports.PeriodTracker, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		tracker:  tracker,
		logger:   log,
	}
}

// Collect iterates over configured sites and executes their scanners for
// the periods that are not already processed. A site whose scan fails
// contributes no candidates; an unregistered scanner is a configuration
// error and aborts.
func (s *StrategySource) Collect(ctx context.Context, req ports.CollectRequest) ([]domain.CompanyRecord, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	periods, err := s.pendingPeriods(ctx, req.Periods)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		s.debug("all requested periods already processed", "requested", len(req.Periods))
		return nil, nil
	}

	s.debug("collect", "sites", len(s.sites), "periods", periods)

	var aggregated []domain.CompanyRecord
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		scanReq := scanner.Request{
			SiteName:   site.Name,
			BaseURL:    site.BaseURL,
			Periods:    periods,
			RecentOnly: req.RecentOnly,
			Options:    site.Options,
		}

		results, err := strategy.Scan(ctx, scanReq)
		if err != nil {
			s.warn("site scan failed", "site", site.Name, "error", err)
			continue
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = site.Name
			}
		}
		s.debug("site produced candidates", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_candidates", len(aggregated))
	return aggregated, nil
}

// pendingPeriods drops year-months the tracker already ingested, which is
// the sole mechanism bounding redundant scans across runs.
func (s *StrategySource) pendingPeriods(ctx context.Context, requested []string) ([]string, error) {
	if s.tracker == nil {
		return requested, nil
	}

	pending := make([]string, 0, len(requested))
	for _, period := range requested {
		done, err := s.tracker.IsProcessed(ctx, period)
		if err != nil {
			return nil, fmt.Errorf("check period %s: %w", period, err)
		}
		if done {
			s.debug("skip processed period", "period", period)
			continue
		}
		pending = append(pending, period)
	}
	return pending, nil
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
