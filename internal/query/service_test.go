package query

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

var sentimentRules = []config.KeywordRule{
	{Label: "positive", Keywords: []string{"성장", "투자", "확장"}},
	{Label: "negative", Keywords: []string{"감원", "폐업", "위기"}},
}

type stubRepo struct {
	company *domain.PersistedCompany
	news    []domain.NewsItem
	jobs    []domain.JobPosting
}

func (s *stubRepo) Exists(context.Context, string) (bool, error) { return s.company != nil, nil }

func (s *stubRepo) Save(context.Context, []domain.EnrichedCompanyRecord) error { return nil }

func (s *stubRepo) FindByName(context.Context, string) (*domain.PersistedCompany, error) {
	return s.company, nil
}

func (s *stubRepo) NewsForCompany(context.Context, int64, int) ([]domain.NewsItem, error) {
	return s.news, nil
}

func (s *stubRepo) JobsForCompany(context.Context, int64, int) ([]domain.JobPosting, error) {
	return s.jobs, nil
}

func (s *stubRepo) CompaniesForEnrichment(context.Context, ports.EnrichFilter) ([]domain.PersistedCompany, error) {
	return nil, nil
}

func (s *stubRepo) UpdateEnrichment(context.Context, domain.EnrichedCompanyRecord) error {
	return nil
}

func (s *stubRepo) PromoteTargets(context.Context, int) ([]domain.SalesTarget, error) {
	return nil, nil
}

type stubEnricher struct {
	result []domain.EnrichedCompanyRecord
	calls  int
}

func (s *stubEnricher) Enrich(_ context.Context, _ []domain.CompanyRecord, _, _ int) []domain.EnrichedCompanyRecord {
	s.calls++
	return s.result
}

func newService(repo *stubRepo, enricher *stubEnricher) *Service {
	return NewService(repo, enricher, sentimentRules, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLookupFromStore(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		company: &domain.PersistedCompany{ID: 1, CompanyName: "무촌", FundingStage: "Series A"},
		news: []domain.NewsItem{
			{Title: "무촌 투자 유치로 성장 가속"},
			{Title: "무촌 감원 위기설"},
			{Title: "무촌 신제품 출시"},
		},
		jobs: []domain.JobPosting{{Title: "세일즈 매니저", Team: "Sales"}},
	}
	enricher := &stubEnricher{}

	view, err := newService(repo, enricher).Lookup(context.Background(), "(주)무촌")
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.True(t, view.FromStore)
	assert.Equal(t, "무촌", view.Company.CompanyName)
	assert.Equal(t, 0, enricher.calls)

	require.Len(t, view.News, 3)
	assert.Equal(t, domain.SentimentPositive, view.News[0].Sentiment)
	assert.Equal(t, domain.SentimentNegative, view.News[1].Sentiment)
	assert.Equal(t, domain.SentimentNeutral, view.News[2].Sentiment)
	require.Len(t, view.Jobs, 1)
}

func TestLookupLiveFallback(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	enricher := &stubEnricher{result: []domain.EnrichedCompanyRecord{{
		CompanyRecord: domain.CompanyRecord{Name: "무촌"},
		NewsList:      []domain.NewsItem{{Title: "무촌 투자 유치"}},
		JobRoles:      []domain.JobPosting{{Title: "마케터", Team: "Marketing"}},
		FoundedDate:   "2019-03-01",
	}}}

	view, err := newService(repo, enricher).Lookup(context.Background(), "무촌")
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.False(t, view.FromStore)
	assert.Equal(t, 1, enricher.calls)
	assert.Equal(t, "무촌 투자 유치", view.Company.NewsTitle)
	assert.Equal(t, "2019-03-01", view.Company.FoundedDate)
	require.Len(t, view.News, 1)
	assert.Equal(t, domain.SentimentPositive, view.News[0].Sentiment)
}

func TestLookupLiveFallbackNoData(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{result: []domain.EnrichedCompanyRecord{{
		CompanyRecord: domain.CompanyRecord{Name: "무촌"},
	}}}

	_, err := newService(&stubRepo{}, enricher).Lookup(context.Background(), "무촌")
	require.Error(t, err)
}

func TestLookupRejectsShortName(t *testing.T) {
	t.Parallel()

	enricher := &stubEnricher{}
	_, err := newService(&stubRepo{}, enricher).Lookup(context.Background(), "주")
	require.Error(t, err)
	assert.Equal(t, 0, enricher.calls)
}

func TestSentimentTie(t *testing.T) {
	t.Parallel()

	s := newService(&stubRepo{}, &stubEnricher{})
	// One positive and one negative keyword each.
	assert.Equal(t, domain.SentimentNeutral, s.sentimentOf("투자 이후 감원"))
	assert.Equal(t, domain.SentimentNeutral, s.sentimentOf("별다른 소식 없음"))
}
