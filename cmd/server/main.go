package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/tickerlens/internal/config"
	"github.com/yourusername/tickerlens/internal/handler"
	"github.com/yourusername/tickerlens/internal/middleware"
	"github.com/yourusername/tickerlens/internal/render"
	"github.com/yourusername/tickerlens/internal/repository"
	"github.com/yourusername/tickerlens/internal/service"
	"github.com/yourusername/tickerlens/internal/view"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting Tickerlens")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ── Search history (optional) ────────────────────────
	var history handler.HistoryStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		searchRepo := repository.NewSearchRepo(pool)
		if err := searchRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare database schema")
		}
		history = searchRepo
		log.Info().Msg("Database connected, search history enabled")
	}

	// ── Services ─────────────────────────────────────────
	fmp := service.NewFMPClient(cfg.FMPAPIKey, cfg.FMPBaseURL, cfg.FMPRPS)
	agg := service.NewAggregator(fmp, service.AggregatorOptions{
		StatementLimit:     cfg.StatementLimit,
		CacheTTL:           cfg.CacheTTL,
		FetchTimeout:       cfg.FetchTimeout,
		MaxCompareTickers:  cfg.MaxCompareTickers,
		CompareConcurrency: cfg.CompareConcurrency,
	})
	agg.StartCacheJanitor(ctx, time.Minute)

	sessions := view.NewSessionStore(cfg.SessionMax, cfg.SessionIdle)
	go sweepSessions(ctx, sessions, time.Minute)

	html, err := render.NewHTML()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}

	// ── Handlers ─────────────────────────────────────────
	companyHandler := handler.NewCompanyHandler(agg, sessions, html, history)
	compareHandler := handler.NewCompareHandler(agg, sessions, html, history)

	// ── Middleware ────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)
	rateLimiter.StartCleanup(ctx, 5*time.Minute, 10*time.Minute)

	var authMiddleware *middleware.AuthMiddleware
	if cfg.FirebaseProjectID != "" {
		authMiddleware, err = middleware.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
		}
	}

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (not rate limited)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "tickerlens",
			"history": history != nil,
			"time":    time.Now().UTC(),
		})
	})

	app := r.Group("/")
	if authMiddleware != nil {
		app.Use(authMiddleware.Identify())
	}
	app.Use(rateLimiter.Limit())
	{
		// Pages
		app.GET("/", companyHandler.Index)
		app.GET("/company", companyHandler.Lookup)
		app.GET("/company/:ticker", companyHandler.Show)
		app.GET("/compare", compareHandler.Show)

		// JSON API
		app.GET("/api/company/:ticker", companyHandler.API)
		app.POST("/api/compare", compareHandler.API)
	}

	if history != nil && authMiddleware != nil {
		historyHandler := handler.NewHistoryHandler(history)
		secured := r.Group("/api/history", authMiddleware.Authenticate(), rateLimiter.Limit())
		secured.GET("", historyHandler.List)
		secured.DELETE("", historyHandler.Clear)
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("Tickerlens server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func sweepSessions(ctx context.Context, sessions *view.SessionStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Debug().Int("closed", n).Msg("Swept idle render sessions")
			}
		}
	}
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
