package cli

import (
	"bytes"
	"strings"
	"testing"

	"SignalScanner/internal/domain"
)

func TestRenderView(t *testing.T) {
	t.Parallel()

	view := &domain.CompanyView{
		Company: &domain.PersistedCompany{
			CompanyName:   "무촌",
			Source:        "startuprecipe",
			FundingStage:  "Series A",
			FundingDate:   "2024-11-10",
			Amount:        "50억",
			Investors:     "알토스벤처스",
			FoundedDate:   "2019-03-01",
			EmployeeCount: "85",
		},
		News: []domain.TaggedNews{
			{NewsItem: domain.NewsItem{Title: "무촌 투자 유치", Link: "https://news.example/1"}, Sentiment: domain.SentimentPositive},
		},
		Jobs: []domain.JobPosting{
			{Title: "세일즈 매니저", Team: "Sales"},
			{Title: "사무 보조"},
		},
		FromStore: true,
	}

	var buf bytes.Buffer
	renderView(&buf, view)
	out := buf.String()

	for _, want := range []string{
		"회사: 무촌 (출처: startuprecipe)",
		"투자: Series A | 2024-11-10 | 50억 | 투자사: 알토스벤처스",
		"설립: 2019-03-01",
		"직원수: 85명",
		"- [positive] 무촌 투자 유치 (https://news.example/1)",
		"- Sales: 세일즈 매니저",
		"- Other: 사무 보조",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "실시간 조회") {
		t.Errorf("stored view must not be marked live:\n%s", out)
	}
}

func TestRenderViewLiveMarker(t *testing.T) {
	t.Parallel()

	view := &domain.CompanyView{
		Company:   &domain.PersistedCompany{CompanyName: "무촌"},
		FromStore: false,
	}

	var buf bytes.Buffer
	renderView(&buf, view)
	if !strings.Contains(buf.String(), "[실시간 조회]") {
		t.Errorf("live view must be marked:\n%s", buf.String())
	}
}
