package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "Asia/Seoul"
	configPathEnv    = "SIGNAL_SCANNER_CONFIG"
	databasePathEnv  = "DATABASE_PATH"
	newsAPIKeyEnv    = "NEWSAPI_KEY"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Scoring strategy selectors. The two policies are never merged; one is
// chosen per run via configuration.
const (
	ScoringModeFixed    = "fixed"
	ScoringModeWeighted = "weighted"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Collector     CollectorConfig    `yaml:"collector"`
	Search        SearchConfig       `yaml:"search"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Mart          MartConfig         `yaml:"mart"`
	Rules         RulesConfig        `yaml:"rules"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes the SQLite file location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the collection pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SiteConfig describes a single funding-signal site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	BaseURL string            `yaml:"baseUrl"`
	Options map[string]string `yaml:"options"`
}

// CollectorConfig groups settings for candidate collection.
type CollectorConfig struct {
	Sites             []SiteConfig  `yaml:"sites"`
	MonthsBack        int           `yaml:"monthsBack"`
	PageDelay         time.Duration `yaml:"pageDelay"`
	RecencyFilterDays int           `yaml:"recencyFilterDays"`
}

// NewsAPIConfig defines how to contact the NewsAPI endpoint.
type NewsAPIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Language string `yaml:"language"`
}

// SearchConfig bounds the enrichment lookups.
type SearchConfig struct {
	NewsAPI        NewsAPIConfig `yaml:"newsApi"`
	UserAgent      string        `yaml:"userAgent"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxNews        int           `yaml:"maxNews"`
	MaxJobs        int           `yaml:"maxJobs"`
}

// ScoringConfig selects the scoring policy and carries the weighted-mode
// tables as data so operators can tune them without code changes.
type ScoringConfig struct {
	Mode               string         `yaml:"mode"`
	StageWeights       map[string]int `yaml:"stageWeights"`
	RoleKeywordWeights map[string]int `yaml:"roleKeywordWeights"`
	RecencyMonths      int            `yaml:"recencyMonths"`
	RecencyBonus       int            `yaml:"recencyBonus"`
}

// MartConfig controls sales-mart promotion.
type MartConfig struct {
	Threshold int `yaml:"threshold"`
}

// KeywordRule pairs a label with the keywords that trigger it. Rules are
// evaluated in order, first match wins.
type KeywordRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// RulesConfig holds the keyword rule sets used by classifiers.
type RulesConfig struct {
	Event     []KeywordRule `yaml:"event"`
	Teams     []KeywordRule `yaml:"teams"`
	Sentiment []KeywordRule `yaml:"sentiment"`
	StopWords []string      `yaml:"stopWords"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig sets log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Collector.Sites) == 0 {
		cfg.Collector.Sites = defaultConfig().Collector.Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Search.NewsAPI.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Collector.Sites) > 0 {
		base.Collector.Sites = override.Collector.Sites
	}
	if override.Collector.MonthsBack > 0 {
		base.Collector.MonthsBack = override.Collector.MonthsBack
	}
	if override.Collector.PageDelay > 0 {
		base.Collector.PageDelay = override.Collector.PageDelay
	}
	if override.Collector.RecencyFilterDays > 0 {
		base.Collector.RecencyFilterDays = override.Collector.RecencyFilterDays
	}

	if override.Search.NewsAPI.Endpoint != "" {
		base.Search.NewsAPI.Endpoint = override.Search.NewsAPI.Endpoint
	}
	if override.Search.NewsAPI.APIKey != "" {
		base.Search.NewsAPI.APIKey = override.Search.NewsAPI.APIKey
	}
	if override.Search.NewsAPI.Language != "" {
		base.Search.NewsAPI.Language = override.Search.NewsAPI.Language
	}
	if override.Search.UserAgent != "" {
		base.Search.UserAgent = override.Search.UserAgent
	}
	if override.Search.RequestTimeout > 0 {
		base.Search.RequestTimeout = override.Search.RequestTimeout
	}
	if override.Search.MaxNews > 0 {
		base.Search.MaxNews = override.Search.MaxNews
	}
	if override.Search.MaxJobs > 0 {
		base.Search.MaxJobs = override.Search.MaxJobs
	}

	if override.Scoring.Mode != "" {
		base.Scoring.Mode = override.Scoring.Mode
	}
	if len(override.Scoring.StageWeights) > 0 {
		base.Scoring.StageWeights = override.Scoring.StageWeights
	}
	if len(override.Scoring.RoleKeywordWeights) > 0 {
		base.Scoring.RoleKeywordWeights = override.Scoring.RoleKeywordWeights
	}
	if override.Scoring.RecencyMonths > 0 {
		base.Scoring.RecencyMonths = override.Scoring.RecencyMonths
	}
	if override.Scoring.RecencyBonus > 0 {
		base.Scoring.RecencyBonus = override.Scoring.RecencyBonus
	}

	if override.Mart.Threshold > 0 {
		base.Mart.Threshold = override.Mart.Threshold
	}

	if len(override.Rules.Event) > 0 {
		base.Rules.Event = override.Rules.Event
	}
	if len(override.Rules.Teams) > 0 {
		base.Rules.Teams = override.Rules.Teams
	}
	if len(override.Rules.Sentiment) > 0 {
		base.Rules.Sentiment = override.Rules.Sentiment
	}
	if len(override.Rules.StopWords) > 0 {
		base.Rules.StopWords = override.Rules.StopWords
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Path: "meta_sales_trigger.db"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Collector: CollectorConfig{
			Sites: []SiteConfig{
				{
					Name:    "스타트업레시피",
					Scanner: "startuprecipe",
					BaseURL: "https://startuprecipe.co.kr/invest",
				},
			},
			MonthsBack:        3,
			PageDelay:         800 * time.Millisecond,
			RecencyFilterDays: 7,
		},
		Search: SearchConfig{
			NewsAPI: NewsAPIConfig{
				Endpoint: "https://newsapi.org/v2/everything",
				Language: "ko",
			},
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
			RequestTimeout: 10 * time.Second,
			MaxNews:        3,
			MaxJobs:        5,
		},
		Scoring: ScoringConfig{
			Mode: ScoringModeFixed,
			StageWeights: map[string]int{
				"Series A": 30,
				"Seed":     10,
			},
			RoleKeywordWeights: map[string]int{
				"세일즈": 25,
				"영업":  25,
				"마케터": 20,
				"마케팅": 20,
			},
			RecencyMonths: 2,
			RecencyBonus:  10,
		},
		Mart: MartConfig{Threshold: 6},
		Rules: RulesConfig{
			Event: []KeywordRule{
				{Label: "growing", Keywords: []string{"투자", "유치", "상장", "확장", "합류", "인수", "시리즈"}},
				{Label: "declining", Keywords: []string{"감원", "적자", "구조조정", "폐업", "축소"}},
			},
			Teams: []KeywordRule{
				{Label: "Marketing", Keywords: []string{"마케", "marketing", "crm", "퍼포먼스", "growth", "광고", "프로모션"}},
				{Label: "Product", Keywords: []string{"product", "프로덕트", "기획", "pd"}},
				{Label: "Engineering", Keywords: []string{"engineer", "개발", "프론트", "백엔드", "dev", "data", "ai", "ml", "software"}},
				{Label: "Sales", Keywords: []string{"sales", "영업", "biz", "bd"}},
				{Label: "Design", Keywords: []string{"디자", "ux", "ui", "designer"}},
				{Label: "HR", Keywords: []string{"채용", "인사", "hr", "recruit"}},
			},
			Sentiment: []KeywordRule{
				{Label: "positive", Keywords: []string{"성장", "투자", "확장", "성공", "파트너십", "혁신", "상장", "m&a", "증원", "채용"}},
				{Label: "negative", Keywords: []string{"부도", "폐업", "소송", "손실", "감원", "위기", "파산", "부정", "문제"}},
			},
			StopWords: []string{"있는", "하는", "된다", "했다"},
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
