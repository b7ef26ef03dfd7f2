package handlers

import (
	"net/http"
	"strings"

	apperrors "reelsearch/errors"
	"reelsearch/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ListicleHandler struct {
	engine *search.Engine
	logger *zap.Logger
}

// ListicleRequest is the /api/listicle request body.
type ListicleRequest struct {
	Query string `json:"query"`
}

// ListicleResponse is the /api/listicle response body.
type ListicleResponse struct {
	Source         string                `json:"source"`
	Seed           seedInfo              `json:"seed"`
	N              int                   `json:"n"`
	UsedCandidates int                   `json:"usedCandidates"`
	Items          []search.ListicleItem `json:"items"`
}

func NewListicleHandler(engine *search.Engine, logger *zap.Logger) *ListicleHandler {
	return &ListicleHandler{engine: engine, logger: logger}
}

func (h *ListicleHandler) Listicle(c *gin.Context) {
	var req ListicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondWithClientError(c, http.StatusBadRequest, "Query is required")
		return
	}

	result, err := h.engine.Listicle(c.Request.Context(), req.Query)
	if err != nil {
		if apperrors.IsInvalidQuery(err) {
			respondWithClientError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(c, http.StatusInternalServerError, err, "Listicle generation failed", h.logger,
			zap.String("query", req.Query))
		return
	}

	items := result.Items
	if items == nil {
		items = []search.ListicleItem{}
	}

	c.JSON(http.StatusOK, ListicleResponse{
		Source:         result.Source,
		Seed:           seedInfo{ID: result.Seed.ID, Title: result.Seed.Title},
		N:              result.N,
		UsedCandidates: result.UsedCandidates,
		Items:          items,
	})
}
