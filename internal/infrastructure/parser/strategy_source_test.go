package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
	"SignalScanner/internal/scanner"
)

type fakeScanner struct {
	name     string
	requests []scanner.Request
	records  []domain.CompanyRecord
	err      error
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(_ context.Context, req scanner.Request) ([]domain.CompanyRecord, error) {
	f.requests = append(f.requests, req)
	return f.records, f.err
}

type memoryTracker struct {
	done map[string]bool
}

func (m *memoryTracker) IsProcessed(_ context.Context, period string) (bool, error) {
	return m.done[period], nil
}

func (m *memoryTracker) MarkProcessed(_ context.Context, period string) error {
	if m.done == nil {
		m.done = map[string]bool{}
	}
	m.done[period] = true
	return nil
}

func TestCollectSkipsProcessedPeriods(t *testing.T) {
	t.Parallel()

	fake := &fakeScanner{name: "startuprecipe", records: []domain.CompanyRecord{{Name: "무촌"}}}
	reg := scanner.NewRegistry()
	reg.Register(fake)

	tracker := &memoryTracker{done: map[string]bool{"2024-10": true}}
	source := NewStrategySource(reg, []config.SiteConfig{
		{Name: "스타트업레시피", Scanner: "startuprecipe", BaseURL: "https://example.org/invest"},
	}, tracker, nil)

	records, err := source.Collect(context.Background(), ports.CollectRequest{
		Periods:    []string{"2024-10", "2024-11"},
		RecentOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, []string{"2024-11"}, fake.requests[0].Periods)
	assert.True(t, fake.requests[0].RecentOnly)

	// Source name is stamped when the scanner leaves it empty.
	assert.Equal(t, "스타트업레시피", records[0].Source)
}

func TestCollectAllPeriodsProcessedIssuesNoScan(t *testing.T) {
	t.Parallel()

	fake := &fakeScanner{name: "startuprecipe"}
	reg := scanner.NewRegistry()
	reg.Register(fake)

	tracker := &memoryTracker{done: map[string]bool{"2024-11": true}}
	source := NewStrategySource(reg, []config.SiteConfig{
		{Name: "스타트업레시피", Scanner: "startuprecipe"},
	}, tracker, nil)

	records, err := source.Collect(context.Background(), ports.CollectRequest{Periods: []string{"2024-11"}})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, fake.requests)
}

func TestCollectUnknownScannerFails(t *testing.T) {
	t.Parallel()

	source := NewStrategySource(scanner.NewRegistry(), []config.SiteConfig{
		{Name: "스타트업레시피", Scanner: "missing"},
	}, nil, nil)

	_, err := source.Collect(context.Background(), ports.CollectRequest{Periods: []string{"2024-11"}})
	require.Error(t, err)
}
