package handlers

import (
	"context"
	"net/http"
	"time"

	"reelsearch/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewHealthHandler(store *database.PostgresStore, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// Healthz verifies corpus connectivity and reports OK.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondWithError(c, http.StatusServiceUnavailable, err, "Database unreachable", h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
