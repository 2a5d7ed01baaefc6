package container

import (
	"context"
	"time"

	"github.com/fycapp/fyc-backend/config"
	"github.com/fycapp/fyc-backend/pkg/ai"
	"github.com/fycapp/fyc-backend/pkg/ai/llm"
	"github.com/fycapp/fyc-backend/pkg/api/handlers"
	"github.com/fycapp/fyc-backend/pkg/cache"
	"github.com/fycapp/fyc-backend/pkg/competitors"
	"github.com/fycapp/fyc-backend/pkg/database"
	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/insights"
	"github.com/fycapp/fyc-backend/pkg/jobs"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/logo"
	"github.com/fycapp/fyc-backend/pkg/metrics"
	"github.com/fycapp/fyc-backend/pkg/search"
	"github.com/fycapp/fyc-backend/pkg/tasks"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Infrastructure
	DB    *database.Client
	Cache domain.CacheRepository

	// Pipeline
	Finder     *ai.Finder
	Logos      *logo.Resolver
	Tracker    *tasks.Tracker
	Dispatcher *tasks.Dispatcher
	Store      *search.Store

	// Services
	SearchService     *search.Service
	CompetitorService *competitors.Service
	InsightsService   *insights.Service

	// Background jobs
	Cron *jobs.CronManager

	// Handlers
	SearchHandler     *handlers.SearchHandler
	CompetitorHandler *handlers.CompetitorHandler
}

// New creates and initializes all application dependencies
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger.New(cfg.LogLevel),
		Metrics: metrics.New(),
	}

	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}

	c.initPipeline()
	c.initHandlers()

	c.Logger.Info("Container initialized successfully",
		"environment", cfg.APIEnvironment,
		"workers", cfg.SearchWorkers)

	return c, nil
}

// initInfrastructure initializes database and cache connections
func (c *Container) initInfrastructure(ctx context.Context) error {
	var err error

	c.DB, err = database.NewClient(ctx, c.Config.DatabaseURL)
	if err != nil {
		c.Logger.Error("Failed to connect to database", "error", err)
		return err
	}

	cacheClient, err := cache.NewClient(c.Config.RedisURL)
	if err != nil {
		c.Logger.Error("Failed to connect to cache", "error", err)
		return err
	}
	c.Cache = cacheClient

	c.Logger.Info("Infrastructure initialized",
		"database", "connected",
		"cache", "connected")

	return nil
}

// initPipeline wires the search pipeline: AI finder, logo enrichment,
// task tracking, result store and the background dispatcher.
func (c *Container) initPipeline() {
	chatClient := llm.NewOpenAIClient(llm.Config{
		APIKey:      c.Config.OpenAIAPIKey,
		Model:       c.Config.OpenAIModel,
		Temperature: float32(c.Config.OpenAITemperature),
		MaxTokens:   c.Config.OpenAIMaxTokens,
	}, nil)

	c.Finder = ai.NewFinder(chatClient, c.Logger)

	c.Logos = logo.NewResolver(c.Cache, c.Logger,
		logo.WithTTL(time.Duration(c.Config.LogoCacheTTLHours)*time.Hour),
		logo.WithMetrics(c.Metrics),
	)

	c.Tracker = tasks.NewTracker(c.Cache, time.Duration(c.Config.TaskTTLSeconds)*time.Second, c.Logger)
	c.Store = search.NewStore(c.DB.Pool, c.Logger)

	c.Dispatcher = tasks.NewDispatcher(c.Tracker, c.Finder, c.Logos, c.Store, tasks.Config{
		Workers:         c.Config.SearchWorkers,
		JobTimeout:      time.Duration(c.Config.SearchJobTimeout) * time.Second,
		AICallTimeout:   time.Duration(c.Config.AICallTimeout) * time.Second,
		LogoConcurrency: c.Config.LogoConcurrency,
	}, c.Logger)
	c.Dispatcher.SetMetrics(c.Metrics)

	c.SearchService = search.NewService(c.Store, c.Dispatcher, c.Logger)
	c.CompetitorService = competitors.NewService(c.DB.Pool, c.Logger)
	c.InsightsService = insights.NewService(chatClient, insights.NewScraper(nil), c.Logger)

	c.Cron = jobs.NewCronManager(c.Store, c.Config.SearchRetentionDays, c.Logger)

	c.Logger.Info("Pipeline initialized",
		"model", c.Config.OpenAIModel,
		"retention_days", c.Config.SearchRetentionDays)
}

// initHandlers initializes all HTTP handlers
func (c *Container) initHandlers() {
	c.SearchHandler = handlers.NewSearchHandler(c.SearchService, c.Tracker)
	c.CompetitorHandler = handlers.NewCompetitorHandler(c.CompetitorService, c.InsightsService)

	c.Logger.Info("Handlers initialized")
}

// Start launches background workers and scheduled jobs.
func (c *Container) Start() error {
	c.Dispatcher.Start()

	if err := c.Cron.SetupJobs(); err != nil {
		return err
	}
	c.Cron.Start()

	return nil
}

// Close stops background work and closes all connections.
func (c *Container) Close() error {
	c.Logger.Info("Shutting down container...")

	c.Cron.Stop()
	c.Dispatcher.Stop()

	if err := c.DB.Close(); err != nil {
		c.Logger.Error("Failed to close database", "error", err)
		return err
	}

	if err := c.Cache.Close(); err != nil {
		c.Logger.Error("Failed to close cache", "error", err)
		return err
	}

	c.Logger.Info("Container shutdown complete")
	return nil
}
