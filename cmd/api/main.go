package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fycapp/fyc-backend/config"
	"github.com/fycapp/fyc-backend/pkg/auth"
	"github.com/fycapp/fyc-backend/pkg/cache"
	"github.com/fycapp/fyc-backend/pkg/container"
	custommiddleware "github.com/fycapp/fyc-backend/pkg/middleware"
)

func main() {
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}
	defer c.Close()

	if err := c.Start(); err != nil {
		log.Fatalf("❌ Failed to start background jobs: %v", err)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(ec echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", ec.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(c.Metrics.Middleware())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{
			"http://localhost:3000",
			"https://findyourcompetitors.app",
			"https://www.findyourcompetitors.app",
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.Middleware())

	// Health check endpoints (public)
	e.GET("/", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]any{
			"name":        "FYC API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(ec echo.Context) error {
		reqCtx, cancelHealth := context.WithTimeout(ec.Request().Context(), 2*time.Second)
		defer cancelHealth()

		if err := c.DB.Ping(reqCtx); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		if cacheClient, ok := c.Cache.(*cache.Client); ok {
			if err := cacheClient.Ping(reqCtx); err != nil {
				return ec.JSON(http.StatusServiceUnavailable, map[string]any{
					"status": "unhealthy",
					"cache":  "down",
				})
			}
		}

		return ec.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]string{
			"message": "pong",
		})
	})

	// Search routes (public): submission, polling and paginated reads
	competitorsGroup := v1.Group("/competitors")
	{
		competitorsGroup.POST("/find", c.SearchHandler.FindCompetitors)
		competitorsGroup.POST("/lookup", c.SearchHandler.LookupCompetitor)
		competitorsGroup.GET("/search/status/:task_id", c.SearchHandler.GetSearchStatus)
	}

	// Competitor management routes (require JWT)
	protected := v1.Group("/competitors")
	protected.Use(auth.Middleware(cfg.JWTSecret))
	{
		protected.POST("", c.CompetitorHandler.Create)
		protected.GET("", c.CompetitorHandler.List)
		protected.POST("/search", c.CompetitorHandler.Search)
		protected.PUT("/:id", c.CompetitorHandler.Update)
		protected.DELETE("/:id", c.CompetitorHandler.Delete)
		protected.GET("/:id/insights", c.CompetitorHandler.GetInsights)
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 FYC API starting on %s", address)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("👷 Search workers: %d (job timeout: %ds)", cfg.SearchWorkers, cfg.SearchJobTimeout)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
