package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/wms/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports the availability of the service's backing stores
type HealthHandler struct {
	db      *sql.DB
	redis   redis.UniversalClient
	version string
}

// NewHealthHandler creates a new HealthHandler. rdb may be nil when Redis is
// not configured.
func NewHealthHandler(db *sql.DB, rdb redis.UniversalClient, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, version: version}
}

// Check pings the database and Redis. Any failure answers 503.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		logger.L(ctx).Warn("Database health check failed", zap.Error(err))
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			logger.L(ctx).Warn("Redis health check failed", zap.Error(err))
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"version": h.version,
		"checks":  checks,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
