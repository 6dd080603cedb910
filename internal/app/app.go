package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"SignalScanner/internal/config"
	"SignalScanner/internal/enrich"
	"SignalScanner/internal/infrastructure/parser"
	"SignalScanner/internal/infrastructure/scheduler"
	"SignalScanner/internal/infrastructure/search"
	"SignalScanner/internal/infrastructure/storage"
	"SignalScanner/internal/infrastructure/telegram"
	"SignalScanner/internal/logging"
	"SignalScanner/internal/ports"
	"SignalScanner/internal/query"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/scoring"
	"SignalScanner/internal/usecase"
)

// Application wires configuration to use cases and owns the database
// handle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	pipeline  *usecase.Pipeline
	query     *query.Service
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. The database schema is
// created when absent.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := storage.InitSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	scorer := scoring.New(cfg.Scoring, nil)
	repository := storage.NewSQLiteRepository(db, scorer, cfg.Rules.StopWords,
		baseLogger.With("component", "storage"))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewStartupRecipeScanner(nil, cfg.Search.UserAgent,
		cfg.Collector.PageDelay, cfg.Collector.RecencyFilterDays,
		baseLogger.With("component", "scanner.startuprecipe")))

	source := parser.NewStrategySource(registry, cfg.Collector.Sites, repository,
		baseLogger.With("component", "source"))

	httpClient := &http.Client{Timeout: cfg.Search.RequestTimeout}
	classifier := enrich.NewTeamClassifier(cfg.Rules.Teams)

	var newsSearchers []ports.NewsSearcher
	if newsAPI := search.NewNewsAPIClient(cfg.Search.NewsAPI, httpClient); newsAPI.Configured() {
		newsSearchers = append(newsSearchers, newsAPI)
	}
	newsSearchers = append(newsSearchers, search.NewNaverNewsSearcher(httpClient, cfg.Search.UserAgent, ""))
	newsChain := search.NewChainNewsSearcher(newsSearchers...)

	jobSearchers := []ports.JobSearcher{
		search.NewWantedJobSearcher(httpClient, cfg.Search.UserAgent, "", classifier),
		search.NewSaraminJobSearcher(httpClient, cfg.Search.UserAgent, "", classifier),
		search.NewNaverJobSearcher(httpClient, cfg.Search.UserAgent, "", classifier),
		search.NewCareersJobSearcher(httpClient, cfg.Search.UserAgent, classifier),
	}

	profiler := search.NewNaverProfiler(httpClient, cfg.Search.UserAgent, "")
	enricher := enrich.NewEnricher(newsChain, jobSearchers, profiler, cfg.Rules.Event,
		baseLogger.With("component", "enrich"))

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Enricher:   enricher,
		Repository: repository,
		Notifier:   notifier,
		Config: usecase.PipelineConfig{
			MonthsBack:    cfg.Collector.MonthsBack,
			MaxNews:       cfg.Search.MaxNews,
			MaxJobs:       cfg.Search.MaxJobs,
			MartThreshold: cfg.Mart.Threshold,
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	queryService := query.NewService(repository, enricher, cfg.Rules.Sentiment,
		baseLogger.With("component", "query"))

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		query:     queryService,
		scheduler: usecase.NewScheduler(driver, pipeline),
	}, nil
}

// Pipeline exposes the ingestion use case.
func (a *Application) Pipeline() *usecase.Pipeline { return a.pipeline }

// Query exposes the company read path.
func (a *Application) Query() *query.Service { return a.query }

// Scheduler exposes the recurring-run glue.
func (a *Application) Scheduler() *usecase.Scheduler { return a.scheduler }

// Now returns the current time in the configured scheduler timezone.
func (a *Application) Now() time.Time {
	return time.Now().In(a.cfg.Scheduler.Location())
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
