package domain

import "time"

// CompanyRecord is a raw candidate observation produced by a collector.
// Immutable once captured; string fields besides Name are best-effort.
type CompanyRecord struct {
	ID           int64
	Name         string
	Source       string
	FundingStage string
	FundingRound string
	FundingDate  string // "YYYY-MM-DD", "YYYY-MM", or free text
	Amount       string
	Investors    string
	Industry     string
}

// NewsItem is a single article found for a company. No uniqueness at this
// stage; dedup happens at persistence by (company_id, title, url).
type NewsItem struct {
	Title       string
	Link        string
	Content     string
	PublishedAt string
	SourceName  string
}

// JobPosting is a single opening found for a company. Team is one of
// Marketing|Product|Engineering|Sales|Design|HR|Other.
type JobPosting struct {
	Title  string
	Team   string
	Link   string
	Source string
}

// Event classes inferred from news titles.
const (
	EventGrowing   = "growing"
	EventDeclining = "declining"
	EventUnknown   = "unknown"
)

// EnrichedCompanyRecord is a candidate augmented with news, deduplicated
// job postings, and inferred profile data. Consumed once by the store.
type EnrichedCompanyRecord struct {
	CompanyRecord
	NewsList      []NewsItem
	JobRoles      []JobPosting
	LegacyJobLine string // plain-string job_roles shape from older collectors
	InferredEvent string
	FoundedDate   string
	EmployeeCount string
}

// JobCount returns how many hiring signals the record carries, counting a
// non-empty legacy line as one.
func (r EnrichedCompanyRecord) JobCount() int {
	if len(r.JobRoles) > 0 {
		return len(r.JobRoles)
	}
	if r.LegacyJobLine != "" {
		return 1
	}
	return 0
}

// SignalScore is the funding/hiring/recency composite for one company.
// TotalScore is always the sum of the three components.
type SignalScore struct {
	CompanyID    int64
	FundingScore int
	HiringScore  int
	RecencyScore int
	TotalScore   int
}

// PersistedCompany is the store-of-record row. At most one exists per
// normalized company name.
type PersistedCompany struct {
	ID             int64
	CompanyName    string
	Source         string
	FundingStage   string
	FundingRound   string
	FundingDate    string
	Amount         string
	Investors      string
	Industry       string
	Keywords       string
	RequiredRoles  string
	JobsSummary    string
	NewsTitle      string
	FoundedDate    string
	EmployeeCount  string
	CollectedAt    time.Time
	LastEnrichDate time.Time
}

// Sales-mart priorities.
const (
	PriorityLow  = "Low"
	PriorityHigh = "High"
)

// SalesTarget is a mart row created once when a company's total score first
// crosses the outreach threshold.
type SalesTarget struct {
	CompanyID   int64
	CompanyName string
	Priority    string
	SalesHook   string
	IsSent      bool
	TotalScore  int
}

// SentimentTag classifies a news item for display only.
type SentimentTag string

const (
	SentimentPositive SentimentTag = "positive"
	SentimentNegative SentimentTag = "negative"
	SentimentNeutral  SentimentTag = "neutral"
)

// TaggedNews pairs a news item with its display sentiment.
type TaggedNews struct {
	NewsItem
	Sentiment SentimentTag
}

// CompanyView is the read-path aggregate returned by the query service.
// FromStore is false when the view was built by live enrichment fallback.
type CompanyView struct {
	Company   *PersistedCompany
	News      []TaggedNews
	Jobs      []JobPosting
	FromStore bool
}
