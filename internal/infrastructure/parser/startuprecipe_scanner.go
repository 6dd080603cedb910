package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/scanner"
)

var (
	roundExpr  = regexp.MustCompile(`(?i)(Series\s*[A-Za-z0-9]+|시리즈\s*[A-Za-z0-9]+|Seed|Pre[- ]?A|Pre[- ]?Seed|[AB]\s*라운드)`)
	stageExpr  = regexp.MustCompile(`(?i)(Series|시리즈|Seed|Pre[- ]?A|VC|투자유치|투자)`)
	amountExpr = regexp.MustCompile(`[\d,.]+\s*(억|만원|원|KRW|USD|\$|M|B)`)
	// The explicit "투자사" label wins; the loose patterns need a delimiter
	// so "투자유치" cannot swallow the text after it.
	investorLabelExpr = regexp.MustCompile(`투자사\s*:?\s*([가-힣A-Za-z0-9,·&\s]+)`)
	investorExpr      = regexp.MustCompile(`(?:투자\s*:\s*|by\s+)([가-힣A-Za-z0-9,·&\s]+)`)
	parenExpr         = regexp.MustCompile(`\(([^)]+)\)`)
	dateExpr          = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{4}\.\d{2}\.\d{2}|\d{4}-\d{2}`)
	fullDateExpr      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	digitExpr         = regexp.MustCompile(`\d`)
	headerCellExpr    = regexp.MustCompile(`(?i)회사|기업|업종|단계|투자|금액|라운드|날짜|invest`)

	hotDealHeadings = []string{"핫 딜", "핫딜", "Top Deals", "Top deal", "TOP DEALS", "HOT DEAL", "이달의 핫 딜"}
	headerWords     = []string{"회사", "기업", "회사명", "기업명", "업체"}
)

// investMeta is funding metadata pulled out of a table row or list entry.
type investMeta struct {
	fundingStage string
	fundingRound string
	amount       string
	investors    string
	industry     string
	fundingDate  string
}

// columnMap locates semantic columns inside a detected table header.
type columnMap map[string]int

// StartupRecipeScanner crawls the monthly invest pages and extracts funding
// candidates from hot-deal sections and data tables.
type StartupRecipeScanner struct {
	client      *http.Client
	userAgent   string
	pageDelay   time.Duration
	recencyDays int
	now         func() time.Time
	logger      *slog.Logger
}

var _ scanner.Scanner = (*StartupRecipeScanner)(nil)

// NewStartupRecipeScanner wires an HTTP client; the page delay keeps the
// crawl polite and the recency window backs the trailing-scan filter.
func NewStartupRecipeScanner(client *http.Client, userAgent string, pageDelay time.Duration, recencyDays int, log *slog.Logger) *StartupRecipeScanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if recencyDays <= 0 {
		recencyDays = 7
	}
	return &StartupRecipeScanner{
		client:      client,
		userAgent:   userAgent,
		pageDelay:   pageDelay,
		recencyDays: recencyDays,
		now:         time.Now,
		logger:      log,
	}
}

// Name identifies the strategy inside the registry.
func (s *StartupRecipeScanner) Name() string {
	return "startuprecipe"
}

// Scan walks each requested month page. A failed month is logged and
// skipped; the remaining months still produce candidates.
func (s *StartupRecipeScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CompanyRecord, error) {
	if req.BaseURL == "" {
		return nil, fmt.Errorf("no base url provided for site %s", req.SiteName)
	}

	var results []domain.CompanyRecord
	seen := map[string]struct{}{}

	for i, period := range req.Periods {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 && s.pageDelay > 0 {
			select {
			case <-time.After(s.pageDelay):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}

		pageURL, err := buildMonthURL(req.BaseURL, period)
		if err != nil {
			s.warn("bad month url", "period", period, "error", err)
			continue
		}

		doc, err := s.fetchDocument(ctx, pageURL)
		if err != nil {
			s.warn("month page fetch failed", "period", period, "error", err)
			continue
		}

		monthly := s.extractCandidates(doc, req.SiteName, period, seen)
		s.debug("month scanned", "period", period, "candidates", len(monthly))
		results = append(results, monthly...)
	}

	if req.RecentOnly {
		results = s.filterRecent(results)
	}
	return results, nil
}

func (s *StartupRecipeScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invest page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// extractCandidates reads hot-deal list entries first, then every table on
// the page, deduplicating by raw company name across the whole scan.
func (s *StartupRecipeScanner) extractCandidates(doc *goquery.Document, siteName, period string, seen map[string]struct{}) []domain.CompanyRecord {
	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	var collected []domain.CompanyRecord

	root.Find("h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		if !isHotDealHeading(h.Text()) {
			return
		}
		container := h.NextFiltered("*")
		if container.Length() == 0 {
			container = h.Parent()
		}
		container.Find("li").Each(func(_ int, li *goquery.Selection) {
			if record, ok := parseListEntry(li.Text(), siteName, period); ok {
				if _, dup := seen[record.Name]; dup {
					return
				}
				seen[record.Name] = struct{}{}
				collected = append(collected, record)
			}
		})
	})

	root.Find("table").Each(func(_ int, table *goquery.Selection) {
		colmap := detectTableColumns(table)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if record, ok := parseTableRow(tr, colmap, siteName, period); ok {
				if _, dup := seen[record.Name]; dup {
					return
				}
				seen[record.Name] = struct{}{}
				collected = append(collected, record)
			}
		})
	})

	return collected
}

// filterRecent keeps candidates whose funding date is inside the trailing
// window. Unparseable dates pass through; dropping them would lose real
// signals over a formatting quirk.
func (s *StartupRecipeScanner) filterRecent(records []domain.CompanyRecord) []domain.CompanyRecord {
	cutoff := s.now().AddDate(0, 0, -s.recencyDays)
	kept := records[:0]
	for _, r := range records {
		if !fullDateExpr.MatchString(r.FundingDate) {
			kept = append(kept, r)
			continue
		}
		fd, err := time.Parse("2006-01-02", r.FundingDate[:10])
		if err != nil || !fd.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept
}

func (s *StartupRecipeScanner) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *StartupRecipeScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func buildMonthURL(base, period string) (string, error) {
	parts := strings.SplitN(period, "-", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid period %q", period)
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("m_year", parts[0])
	query.Set("m_month", parts[1])
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func isHotDealHeading(text string) bool {
	t := strings.TrimSpace(text)
	for _, h := range hotDealHeadings {
		if strings.Contains(t, h) {
			return true
		}
	}
	return false
}

func looksLikeHeaderCell(text string) bool {
	for _, w := range headerWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// parseListEntry extracts a candidate from a hot-deal bullet line.
func parseListEntry(text, siteName, period string) (domain.CompanyRecord, bool) {
	line := strings.TrimSpace(text)
	line = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s*[-–]?\s*`).ReplaceAllString(line, "")
	if line == "" {
		return domain.CompanyRecord{}, false
	}

	parts := regexp.MustCompile(`[-–,|()]`).Split(line, 2)
	name := strings.TrimSpace(parts[0])
	if len([]rune(name)) < 2 {
		return domain.CompanyRecord{}, false
	}
	if looksLikeHeaderCell(name) {
		return domain.CompanyRecord{}, false
	}

	meta := parseInvestInfo(line)
	return candidateFromMeta(name, siteName, period, meta), true
}

// parseTableRow extracts a candidate from a table row, preferring detected
// column positions and falling back to the common date/company ordering.
func parseTableRow(tr *goquery.Selection, colmap columnMap, siteName, period string) (domain.CompanyRecord, bool) {
	cells := tr.Find("td, th")
	if cells.Length() < 2 {
		return domain.CompanyRecord{}, false
	}

	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(c.Text()))
	})

	nameIdx := 1
	if idx, ok := colmap["company"]; ok && idx < len(texts) {
		nameIdx = idx
	}
	name := texts[nameIdx]
	if name == "" && nameIdx != 0 {
		name = texts[0]
	}
	if len([]rune(name)) < 2 || looksLikeHeaderCell(name) {
		return domain.CompanyRecord{}, false
	}

	meta := parseInvestInfo(strings.Join(texts, " | "))
	for field, idx := range colmap {
		if idx >= len(texts) || texts[idx] == "" {
			continue
		}
		switch field {
		case "date":
			if meta.fundingDate == "" {
				meta.fundingDate = texts[idx]
			}
		case "amount":
			if meta.amount == "" {
				meta.amount = texts[idx]
			}
		case "investors":
			if meta.investors == "" {
				meta.investors = texts[idx]
			}
		case "industry":
			if meta.industry == "" {
				meta.industry = texts[idx]
			}
		case "stage":
			// An explicit stage cell beats the generic text-derived label.
			meta.fundingStage = texts[idx]
		case "round":
			if meta.fundingRound == "" {
				meta.fundingRound = texts[idx]
			}
		}
	}

	// Wide rows on the period pages follow date|company|industry|amount|
	// stage|investors ordering when no header was detected.
	if colmap == nil && len(texts) >= 5 && fullDateExpr.MatchString(texts[0]) {
		meta.fundingDate = texts[0]
		if meta.industry == "" {
			meta.industry = texts[2]
		}
		if meta.amount == "" {
			meta.amount = texts[3]
		}
		if texts[4] != "" {
			meta.fundingStage = texts[4]
		}
		if len(texts) > 5 && meta.investors == "" {
			meta.investors = texts[5]
		}
	}

	return candidateFromMeta(name, siteName, period, meta), true
}

func candidateFromMeta(name, siteName, period string, meta investMeta) domain.CompanyRecord {
	fundingDate := meta.fundingDate
	if fundingDate == "" {
		fundingDate = period
	}
	return domain.CompanyRecord{
		Name:         name,
		Source:       siteName,
		FundingStage: meta.fundingStage,
		FundingRound: meta.fundingRound,
		FundingDate:  fundingDate,
		Amount:       meta.amount,
		Investors:    meta.investors,
		Industry:     meta.industry,
	}
}

// parseInvestInfo pulls funding metadata out of free text with rule-based
// patterns.
func parseInvestInfo(text string) investMeta {
	var meta investMeta
	if text == "" {
		return meta
	}

	if m := roundExpr.FindString(text); m != "" {
		meta.fundingRound = m
	}
	if stageExpr.MatchString(text) {
		meta.fundingStage = "funding"
	}
	if m := amountExpr.FindString(text); m != "" {
		meta.amount = m
	}
	meta.investors = extractInvestors(text)
	if m := parenExpr.FindStringSubmatch(text); len(m) > 1 {
		inside := strings.TrimSpace(m[1])
		if len([]rune(inside)) <= 40 && !digitExpr.MatchString(inside) {
			meta.industry = inside
		}
	}
	if m := dateExpr.FindString(text); m != "" {
		meta.fundingDate = strings.ReplaceAll(m, ".", "-")
	}
	return meta
}

// extractInvestors reads the investor name after a label. Dates are cut
// out first so a trailing "2024-11-05" never ends up in the name.
func extractInvestors(text string) string {
	cleaned := dateExpr.ReplaceAllString(text, "")
	m := investorLabelExpr.FindStringSubmatch(cleaned)
	if m == nil {
		m = investorExpr.FindStringSubmatch(cleaned)
	}
	if len(m) < 2 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(m[1]), ",")
}

// detectTableColumns inspects the header row to learn which column holds
// which field; nil means no recognizable header.
func detectTableColumns(table *goquery.Selection) columnMap {
	headerCells := table.Find("thead th, thead td")
	if headerCells.Length() == 0 {
		first := table.Find("tr").First()
		cells := first.Find("th, td")
		// A leading date marks a data row, not a header.
		if fullDateExpr.MatchString(strings.TrimSpace(cells.First().Text())) {
			return nil
		}
		// Funding text like "한국투자파트너스" trips a single word match;
		// a real header names at least two columns.
		headerish := 0
		cells.Each(func(_ int, c *goquery.Selection) {
			if headerCellExpr.MatchString(c.Text()) {
				headerish++
			}
		})
		if headerish < 2 {
			return nil
		}
		headerCells = cells
	}

	mapping := columnMap{}
	headerCells.Each(func(i int, c *goquery.Selection) {
		h := strings.ToLower(strings.TrimSpace(c.Text()))
		switch {
		case regexp.MustCompile(`회사|기업|company`).MatchString(h):
			mapping["company"] = i
		case regexp.MustCompile(`날짜|일자|date|년|월`).MatchString(h):
			mapping["date"] = i
		case regexp.MustCompile(`금액|amount|원|억|krw|usd`).MatchString(h):
			mapping["amount"] = i
		case regexp.MustCompile(`투자사|투자자|investor`).MatchString(h):
			mapping["investors"] = i
		case regexp.MustCompile(`업종|산업|industry|category`).MatchString(h):
			mapping["industry"] = i
		case regexp.MustCompile(`단계|stage`).MatchString(h):
			mapping["stage"] = i
		case regexp.MustCompile(`라운드|round|series`).MatchString(h):
			mapping["round"] = i
		}
	})

	if len(mapping) == 0 {
		return nil
	}
	return mapping
}
