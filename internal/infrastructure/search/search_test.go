package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/enrich"
	"SignalScanner/internal/ports"
)

var testClassifier = enrich.NewTeamClassifier([]config.KeywordRule{
	{Label: "Sales", Keywords: []string{"세일즈", "영업", "sales"}},
	{Label: "Engineering", Keywords: []string{"개발", "engineer"}},
})

func TestNewsAPIClientSearchNews(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "무촌", q.Get("q"))
		assert.Equal(t, "ko", q.Get("language"))
		assert.Equal(t, "3", q.Get("pageSize"))
		assert.Equal(t, "2024-11-03", q.Get("from"))
		assert.Equal(t, "2024-11-17", q.Get("to"))
		assert.Equal(t, "secret", q.Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[
			{"title":"무촌 투자 유치","url":"https://news.example/1","description":"시리즈 A","publishedAt":"2024-11-05","source":{"name":"example"}},
			{"title":"무촌 채용 확대","url":"https://news.example/2","content":"full body","source":{"name":"example"}}
		]}`))
	}))
	defer server.Close()

	c := NewNewsAPIClient(config.NewsAPIConfig{
		Endpoint: server.URL,
		APIKey:   "secret",
		Language: "ko",
	}, server.Client())

	window := &ports.DateWindow{
		From: mustDate(t, "2024-11-03"),
		To:   mustDate(t, "2024-11-17"),
	}
	items, err := c.SearchNews(context.Background(), "무촌", window, 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "무촌 투자 유치", items[0].Title)
	assert.Equal(t, "시리즈 A", items[0].Content)
	assert.Equal(t, "full body", items[1].Content)
	assert.Equal(t, "example", items[0].SourceName)
}

func TestNewsAPIClientMisconfigured(t *testing.T) {
	t.Parallel()

	c := NewNewsAPIClient(config.NewsAPIConfig{}, nil)
	assert.False(t, c.Configured())

	_, err := c.SearchNews(context.Background(), "무촌", nil, 3)
	require.Error(t, err)
}

type stubNews struct {
	items []domain.NewsItem
	err   error
	calls int
}

func (s *stubNews) SearchNews(context.Context, string, *ports.DateWindow, int) ([]domain.NewsItem, error) {
	s.calls++
	return s.items, s.err
}

func TestChainNewsSearcherFallsBack(t *testing.T) {
	t.Parallel()

	primary := &stubNews{err: errors.New("401")}
	secondary := &stubNews{items: []domain.NewsItem{{Title: "fallback"}}}

	chain := NewChainNewsSearcher(primary, secondary)
	items, err := chain.SearchNews(context.Background(), "무촌", nil, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fallback", items[0].Title)
	assert.Equal(t, 1, primary.calls)

	// Empty-but-healthy primary also defers.
	chain = NewChainNewsSearcher(&stubNews{}, secondary)
	items, err = chain.SearchNews(context.Background(), "무촌", nil, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Every searcher failing surfaces the last error.
	chain = NewChainNewsSearcher(&stubNews{err: errors.New("401")}, &stubNews{err: errors.New("timeout")})
	_, err = chain.SearchNews(context.Background(), "무촌", nil, 3)
	require.Error(t, err)
}

func TestNaverNewsSearcher(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`
		<ul>
		  <li><a class="news_tit" href="https://n.news.naver.com/article/1">무촌 투자 유치</a><span class="info">2024.11.05.</span></li>
		  <li><a class="news_tit" href="https://other.example/2">무시할 기사</a></li>
		  <li><a class="news_tit" href="https://n.news.naver.com/article/3">무촌 채용 확대</a></li>
		</ul>`))
	}))
	defer server.Close()

	s := NewNaverNewsSearcher(server.Client(), "", server.URL)
	items, err := s.SearchNews(context.Background(), "무촌", nil, 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "무촌 투자 유치", items[0].Title)
	assert.Equal(t, "2024.11.05.", items[0].PublishedAt)
	assert.Equal(t, "Naver", items[0].SourceName)
}

func TestNaverJobSearcher(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`
		<div>
		  <a href="https://blog.example/post">무촌 이야기</a>
		  <a href="https://recruit.example/1">무촌 세일즈 매니저 채용</a>
		  <a href="/relative">백엔드 모집</a>
		  <a href="https://recruit.example/2">개발자 모집 공고</a>
		</div>`))
	}))
	defer server.Close()

	s := NewNaverJobSearcher(server.Client(), "", server.URL, testClassifier)
	jobs, err := s.SearchJobs(context.Background(), "무촌", 5)
	require.NoError(t, err)
	require.Len(t, jobs, 2) // relative link and non-hiring anchor skipped
	assert.Equal(t, "무촌 세일즈 매니저 채용", jobs[0].Title)
	assert.Equal(t, "Sales", jobs[0].Team)
	assert.Equal(t, "Engineering", jobs[1].Team)
}

func TestNaverProfiler(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<p>무촌은 2019년 3월 설립, 현재 직원 85명 이상이 근무합니다.</p>`))
	}))
	defer server.Close()

	s := NewNaverProfiler(server.Client(), "", server.URL)
	profile, err := s.Profile(context.Background(), "무촌")
	require.NoError(t, err)
	assert.Equal(t, "2019-03-01", profile.FoundedDate)
	assert.Equal(t, "85", profile.EmployeeCount)
}

func TestWantedJobSearcherRetries(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`
		<div class="JobCard_container">
		  <a href="/wd/123">세일즈 매니저</a>
		  <div class="job-meta">영업</div>
		</div>`))
	}))
	defer server.Close()

	s := NewWantedJobSearcher(server.Client(), "", server.URL, testClassifier)
	s.backoff = 0

	jobs, err := s.SearchJobs(context.Background(), "무촌", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	require.Len(t, jobs, 1)
	assert.Equal(t, "세일즈 매니저", jobs[0].Title)
	assert.Equal(t, "Sales", jobs[0].Team)
	assert.Equal(t, server.URL+"/wd/123", jobs[0].Link)
}

func TestWantedJobSearcherGivesUp(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewWantedJobSearcher(server.Client(), "", server.URL, testClassifier)
	s.backoff = 0

	_, err := s.SearchJobs(context.Background(), "무촌", 5)
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestSaraminJobSearcher(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`
		<div class="item_recruit"><a href="/zf_user/jobs/1">영업 담당자</a></div>
		<div class="item_recruit"><a href="https://abs.example/2">개발자</a></div>`))
	}))
	defer server.Close()

	s := NewSaraminJobSearcher(server.Client(), "", server.URL, testClassifier)
	jobs, err := s.SearchJobs(context.Background(), "무촌", 5)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, server.URL+"/zf_user/jobs/1", jobs[0].Link)
	assert.Equal(t, "https://abs.example/2", jobs[1].Link)
	assert.Equal(t, "Sales", jobs[0].Team)
}

func mustDate(t *testing.T, value string) (out time.Time) {
	t.Helper()
	out, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return out
}
