// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggofiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/pcosta/go-intake-backend/docs"
	"github.com/pcosta/go-intake-backend/internal/config"
	"github.com/pcosta/go-intake-backend/internal/domain"
	"github.com/pcosta/go-intake-backend/internal/http/handlers"
	"github.com/pcosta/go-intake-backend/internal/http/middleware"
	"github.com/pcosta/go-intake-backend/internal/repo"
	"github.com/pcosta/go-intake-backend/internal/services"
)

// impressionRepoShim adapts the repository free functions to the
// services.ImpressionRepo interface expected by the ImpressionService. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type impressionRepoShim struct{}

// CreateImpression proxies repo.CreateImpression.
func (impressionRepoShim) CreateImpression(ctx context.Context, db *gorm.DB, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error) {
	return repo.CreateImpression(ctx, db, agentID, rec)
}

// GetImpression proxies repo.GetImpression.
func (impressionRepoShim) GetImpression(ctx context.Context, db *gorm.DB, id, agentID string) (*domain.FirstImpression, error) {
	return repo.GetImpression(ctx, db, id, agentID)
}

// CountImpressions proxies repo.CountImpressions.
func (impressionRepoShim) CountImpressions(ctx context.Context, db *gorm.DB, agentID string, f repo.ImpressionFilter) (int64, error) {
	return repo.CountImpressions(ctx, db, agentID, f)
}

// ListImpressions proxies repo.ListImpressions.
func (impressionRepoShim) ListImpressions(ctx context.Context, db *gorm.DB, agentID string, f repo.ImpressionFilter, offset, limit int) ([]domain.FirstImpression, error) {
	return repo.ListImpressions(ctx, db, agentID, f, offset, limit)
}

// UpdateImpression proxies repo.UpdateImpression.
func (impressionRepoShim) UpdateImpression(ctx context.Context, db *gorm.DB, id, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error) {
	return repo.UpdateImpression(ctx, db, id, agentID, rec)
}

// UpdateImpressionStatus proxies repo.UpdateImpressionStatus.
func (impressionRepoShim) UpdateImpressionStatus(ctx context.Context, db *gorm.DB, id, agentID string, from, to domain.Status, extra map[string]any) (*domain.FirstImpression, error) {
	return repo.UpdateImpressionStatus(ctx, db, id, agentID, from, to, extra)
}

// DeleteImpression proxies repo.DeleteImpression.
func (impressionRepoShim) DeleteImpression(ctx context.Context, db *gorm.DB, id, agentID string) error {
	return repo.DeleteImpression(ctx, db, id, agentID)
}

// CountByStatus proxies repo.CountByStatus.
func (impressionRepoShim) CountByStatus(ctx context.Context, db *gorm.DB, agentID string) (map[domain.Status]int64, error) {
	return repo.CountByStatus(ctx, db, agentID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AgentID: lift the trusted identity header into context
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter, gzip
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per agent/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Resolve the calling agent's identity
	r.Use(middleware.AgentID())

	// 4) Structured logging with redaction; intake payloads carry client
	// phone numbers and e-mail addresses.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (4 MiB: records embed encoded signature
	// images) and transparent compression for listing-heavy clients.
	r.Use(limitBody(4 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, agentID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, agentID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per agent/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAgentOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderAgentID, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "X-Total-Count", "ETag", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderAgentID, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "X-Total-Count", "ETag", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API documentation (off by default)
	if cfg.SwaggerEnabled {
		r.GET("/docs/*any", ginswagger.WrapHandler(swaggofiles.Handler))
	}

	// Dependency injection: service ← repo/db
	impSvc := services.NewImpressionService(db, impressionRepoShim{})
	if cfg.MaxPhotos > 0 {
		impSvc.MaxPhotos = cfg.MaxPhotos
	}
	h := handlers.New(impSvc, cfg.IdempotencyTTL)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		api.POST("/first-impressions", h.CreateImpression)
		api.GET("/first-impressions", h.ListImpressions)
		api.GET("/first-impressions/stats", h.ImpressionStats)
		api.GET("/first-impressions/:id", h.GetImpression)
		api.PUT("/first-impressions/:id", h.UpdateImpression)
		api.DELETE("/first-impressions/:id", h.DeleteImpression)

		// Lifecycle transitions
		api.POST("/first-impressions/:id/signature", h.AttachSignature)
		api.POST("/first-impressions/:id/complete", h.CompleteImpression)
		api.POST("/first-impressions/:id/cancel", h.CancelImpression)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
