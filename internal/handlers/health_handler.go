package handlers

import (
	"context"
	"net/http"
	"time"

	"chemequip/internal/repository"
	"chemequip/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatsFunc reports cache server statistics for the health payload.
type StatsFunc func() (map[string]string, error)

type HealthHandler struct {
	db         *gorm.DB
	cache      repository.CacheRepository
	cacheStats StatsFunc
}

// NewHealthHandler takes a nil cache when Redis is disabled.
func NewHealthHandler(db *gorm.DB, cache repository.CacheRepository, cacheStats StatsFunc) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, cacheStats: cacheStats}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	services := gin.H{}

	if err := database.Ping(ctx, h.db); err != nil {
		status = http.StatusServiceUnavailable
		services["database"] = "error: " + err.Error()
	} else {
		services["database"] = "connected"
	}

	if h.cache == nil {
		services["redis"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		services["redis"] = "error: " + err.Error()
	} else {
		services["redis"] = "connected"
	}

	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.cacheStats != nil {
		if stats, err := h.cacheStats(); err == nil {
			body["redis"] = stats
		}
	}

	c.JSON(status, body)
}
