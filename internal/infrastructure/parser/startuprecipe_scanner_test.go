package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"SignalScanner/internal/scanner"
)

func TestBuildMonthURL(t *testing.T) {
	t.Parallel()

	u, err := buildMonthURL("https://startuprecipe.co.kr/invest", "2024-11")
	if err != nil {
		t.Fatalf("buildMonthURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	q := parsed.Query()
	if q.Get("m_year") != "2024" {
		t.Fatalf("expected m_year=2024, got %s", q.Get("m_year"))
	}
	if q.Get("m_month") != "11" {
		t.Fatalf("expected m_month=11, got %s", q.Get("m_month"))
	}

	if _, err := buildMonthURL("https://startuprecipe.co.kr/invest", "202411"); err == nil {
		t.Fatalf("expected error for malformed period")
	}
}

func TestParseInvestInfo(t *testing.T) {
	t.Parallel()

	meta := parseInvestInfo("무촌 | 시리즈 A 투자유치 120억 (커머스) 투자사: 한국투자파트너스 2024-11-05")

	if meta.fundingRound == "" || !strings.Contains(meta.fundingRound, "시리즈") {
		t.Fatalf("unexpected round: %q", meta.fundingRound)
	}
	if meta.fundingStage != "funding" {
		t.Fatalf("unexpected stage: %q", meta.fundingStage)
	}
	if meta.amount != "120억" {
		t.Fatalf("unexpected amount: %q", meta.amount)
	}
	if meta.investors != "한국투자파트너스" {
		t.Fatalf("unexpected investors: %q", meta.investors)
	}
	if meta.industry != "커머스" {
		t.Fatalf("unexpected industry: %q", meta.industry)
	}
	if meta.fundingDate != "2024-11-05" {
		t.Fatalf("unexpected date: %q", meta.fundingDate)
	}
}

func TestParseInvestInfoInvestorDelimiters(t *testing.T) {
	t.Parallel()

	// Bare "투자유치" carries no investor name.
	meta := parseInvestInfo("무촌 시리즈 A 투자유치 120억")
	if meta.investors != "" {
		t.Fatalf("expected no investors, got %q", meta.investors)
	}

	meta = parseInvestInfo("드래프타입 투자: 본엔젤스")
	if meta.investors != "본엔젤스" {
		t.Fatalf("unexpected investors: %q", meta.investors)
	}

	meta = parseInvestInfo("무촌 시리즈 A 투자유치 투자사 한국투자파트너스")
	if meta.investors != "한국투자파트너스" {
		t.Fatalf("unexpected investors: %q", meta.investors)
	}
}

func TestParseInvestInfoDotDate(t *testing.T) {
	t.Parallel()

	meta := parseInvestInfo("세라트젠 Seed 2024.12.01")
	if meta.fundingDate != "2024-12-01" {
		t.Fatalf("unexpected date: %q", meta.fundingDate)
	}
}

func TestParseTableRowWithDetectedColumns(t *testing.T) {
	t.Parallel()

	html := `
	<table>
	  <thead>
	    <tr><th>날짜</th><th>회사명</th><th>업종</th><th>금액</th><th>투자사</th></tr>
	  </thead>
	  <tbody>
	    <tr><td>2024-11-05</td><td>무촌</td><td>커머스</td><td>120억</td><td>한국투자파트너스</td></tr>
	  </tbody>
	</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	table := doc.Find("table").First()
	colmap := detectTableColumns(table)
	if colmap == nil {
		t.Fatalf("expected detected columns")
	}
	if colmap["company"] != 1 || colmap["date"] != 0 {
		t.Fatalf("unexpected column map: %v", colmap)
	}

	row := table.Find("tbody tr").First()
	record, ok := parseTableRow(row, colmap, "스타트업레시피", "2024-11")
	if !ok {
		t.Fatalf("expected row to parse")
	}
	if record.Name != "무촌" {
		t.Fatalf("unexpected name: %q", record.Name)
	}
	if record.FundingDate != "2024-11-05" {
		t.Fatalf("unexpected funding date: %q", record.FundingDate)
	}
	if record.Industry != "커머스" {
		t.Fatalf("unexpected industry: %q", record.Industry)
	}
	if record.Amount != "120억" {
		t.Fatalf("unexpected amount: %q", record.Amount)
	}
}

func TestDetectTableColumnsIgnoresDataRow(t *testing.T) {
	t.Parallel()

	// A headerless table whose first row starts with a date is data, even
	// when an investor cell contains header-looking words.
	html := `<table>
	  <tr><td>2024-11-05</td><td>무촌</td><td>커머스</td><td>120억</td><td>Series A</td><td>한국투자파트너스</td></tr>
	</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if colmap := detectTableColumns(doc.Find("table").First()); colmap != nil {
		t.Fatalf("expected no columns for a data-only table, got %v", colmap)
	}
}

func TestParseTableRowWithStageColumn(t *testing.T) {
	t.Parallel()

	html := `<table>
	  <tr><th>날짜</th><th>회사명</th><th>투자단계</th><th>금액</th></tr>
	  <tr><td>2024-11-05</td><td>무촌</td><td>Series A</td><td>120억</td></tr>
	</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	table := doc.Find("table").First()
	colmap := detectTableColumns(table)
	if colmap == nil || colmap["stage"] != 2 {
		t.Fatalf("unexpected column map: %v", colmap)
	}

	record, ok := parseTableRow(table.Find("tr").Eq(1), colmap, "스타트업레시피", "2024-11")
	if !ok {
		t.Fatalf("expected row to parse")
	}
	if record.FundingStage != "Series A" {
		t.Fatalf("unexpected funding stage: %q", record.FundingStage)
	}
}

func TestParseTableRowRejectsHeaderishNames(t *testing.T) {
	t.Parallel()

	html := `<table><tr><td>2024-11-01</td><td>회사명</td></tr></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	row := doc.Find("tr").First()
	if _, ok := parseTableRow(row, nil, "site", "2024-11"); ok {
		t.Fatalf("expected headerish row to be rejected")
	}
}

func TestStartupRecipeScannerScan(t *testing.T) {
	t.Parallel()

	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Query().Get("m_year")+"-"+r.URL.Query().Get("m_month"))
		_, _ = w.Write([]byte(`
		<article>
		  <h3>이달의 핫 딜</h3>
		  <ul>
		    <li>드래프타입 - 시리즈 A 80억 투자유치</li>
		  </ul>
		  <table>
		    <tr><td>2024-11-05</td><td>무촌</td><td>커머스</td><td>120억</td><td>Series A</td><td>한국투자파트너스</td></tr>
		    <tr><td>2024-11-12</td><td>드래프타입</td><td>AI</td><td>80억</td><td>Seed</td><td>본엔젤스</td></tr>
		  </table>
		</article>`))
	}))
	defer server.Close()

	sc := NewStartupRecipeScanner(server.Client(), "SignalScanner/1.0", 0, 7, nil)

	records, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "스타트업레시피",
		BaseURL:  server.URL + "/invest",
		Periods:  []string{"2024-11"},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(requested) != 1 || requested[0] != "2024-11" {
		t.Fatalf("unexpected requests: %v", requested)
	}

	// 드래프타입 from the hot-deal list wins over its table row; 무촌 comes
	// from the table.
	if len(records) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(records), records)
	}
	if records[0].Name != "드래프타입" {
		t.Fatalf("unexpected first candidate: %q", records[0].Name)
	}
	if records[1].Name != "무촌" {
		t.Fatalf("unexpected second candidate: %q", records[1].Name)
	}
	if records[1].FundingDate != "2024-11-05" {
		t.Fatalf("unexpected funding date: %q", records[1].FundingDate)
	}
	if records[1].FundingStage != "Series A" {
		t.Fatalf("unexpected funding stage: %q", records[1].FundingStage)
	}
}

func TestStartupRecipeScannerSkipsFailingMonth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("m_month") == "10" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`<article><table>
		  <tr><td>2024-11-05</td><td>무촌</td><td>커머스</td><td>120억</td><td>Series A</td><td>VC</td></tr>
		</table></article>`))
	}))
	defer server.Close()

	sc := NewStartupRecipeScanner(server.Client(), "", 0, 7, nil)

	records, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "스타트업레시피",
		BaseURL:  server.URL + "/invest",
		Periods:  []string{"2024-10", "2024-11"},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(records) != 1 || records[0].Name != "무촌" {
		t.Fatalf("expected the healthy month to survive, got %+v", records)
	}
}
