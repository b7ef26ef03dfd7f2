package handlers

import (
	"net/http"
	"strings"

	apperrors "reelsearch/errors"
	"reelsearch/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	engine *search.Engine
	logger *zap.Logger
}

// SearchRequest is the /api/search request body.
type SearchRequest struct {
	Query  string   `json:"query"`
	Genres []string `json:"genres"`
	K      int      `json:"k"`
	Mode   string   `json:"mode"`
	Alpha  *float64 `json:"alpha"`
	VecK   int      `json:"vecK"`
	BM25K  int      `json:"bmK"`
}

type seedInfo struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// SearchResponse is the /api/search response body. Alpha and the depth
// parameters are echoed only for hybrid requests.
type SearchResponse struct {
	Source string               `json:"source"`
	Seed   seedInfo             `json:"seed"`
	Items  []search.FusedResult `json:"items"`
	Alpha  *float64             `json:"alpha,omitempty"`
	VecK   int                  `json:"vecK,omitempty"`
	BM25K  int                  `json:"bmK,omitempty"`
}

func NewSearchHandler(engine *search.Engine, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{engine: engine, logger: logger}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondWithClientError(c, http.StatusBadRequest, "Query is required")
		return
	}

	result, err := h.engine.Search(c.Request.Context(), search.SearchOptions{
		Query:  req.Query,
		Genres: req.Genres,
		K:      req.K,
		Mode:   search.Mode(req.Mode),
		Alpha:  req.Alpha,
		VecK:   req.VecK,
		BM25K:  req.BM25K,
	})
	if err != nil {
		if apperrors.IsInvalidQuery(err) {
			respondWithClientError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(c, http.StatusInternalServerError, err, "Search failed", h.logger,
			zap.String("query", req.Query), zap.String("mode", req.Mode))
		return
	}

	resp := SearchResponse{
		Source: string(result.Source),
		Seed:   seedInfo{ID: result.Seed.ID, Title: result.Seed.Title},
		Items:  result.Items,
	}
	if result.Items == nil {
		resp.Items = []search.FusedResult{}
	}
	if result.Source == search.ModeHybrid {
		alpha := result.Alpha
		resp.Alpha = &alpha
		resp.VecK = result.VecK
		resp.BM25K = result.BM25K
	}

	c.JSON(http.StatusOK, resp)
}
