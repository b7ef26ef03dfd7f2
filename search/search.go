package search

import (
	"context"
	"strings"

	apperrors "reelsearch/errors"
	"reelsearch/textnorm"

	"go.uber.org/zap"
)

// Mode selects which retrieval backends serve a search request.
type Mode string

const (
	ModeVector Mode = "vector"
	ModeBM25   Mode = "bm25"
	ModeHybrid Mode = "hybrid"
)

// SearchOptions are the caller-controlled knobs of a search request. Zero
// values mean "use the plan/config default".
type SearchOptions struct {
	Query  string
	Genres []string
	K      int
	Mode   Mode
	Alpha  *float64
	VecK   int
	BM25K  int
}

// SearchResult is the ranked outcome of one search request.
type SearchResult struct {
	Source Mode
	Seed   Seed
	Plan   RetrievalPlan
	Items  []FusedResult
	Alpha  float64
	VecK   int
	BM25K  int
}

// Search runs the full pipeline: intent parsing, seed resolution, dual
// retrieval, fusion, truncation. Single-backend failures degrade per mode;
// only a request left with no backend at all fails.
func (e *Engine) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, apperrors.ErrInvalidQuery
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeHybrid
	}
	switch mode {
	case ModeVector, ModeBM25, ModeHybrid:
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidQuery, "unknown mode %q", mode)
	}

	plan := e.parseIntent(ctx, query, e.cfg.SearchDefaultK)

	// Explicit request parameters override the parsed plan.
	k := opts.K
	if k <= 0 {
		k = plan.N
	}
	if k > MaxResults {
		k = MaxResults
	}
	genres := plan.Genres
	if len(opts.Genres) > 0 {
		genres = textnorm.CanonicalizeGenres(opts.Genres)
	}

	alpha := e.cfg.HybridAlpha
	if opts.Alpha != nil && *opts.Alpha >= 0 && *opts.Alpha <= 1 {
		alpha = *opts.Alpha
	}

	vecDepth, bmDepth := e.depths(mode, k, opts.VecK, opts.BM25K)

	seed := e.resolveSeed(ctx, plan)
	sides := e.retrieve(ctx, seed, genres, vecDepth, bmDepth)

	if err := modeFailure(mode, sides); err != nil {
		return nil, err
	}

	fused := fuse(sides.vector, sides.bm25, fusionAlpha(mode, alpha))
	if len(fused) > k {
		fused = fused[:k]
	}

	e.logger.Debug("Search complete",
		zap.String("mode", string(mode)),
		zap.String("task", string(plan.Task)),
		zap.Int("vector_hits", len(sides.vector)),
		zap.Int("bm25_hits", len(sides.bm25)),
		zap.Int("returned", len(fused)))

	return &SearchResult{
		Source: mode,
		Seed:   seed,
		Plan:   plan,
		Items:  fused,
		Alpha:  alpha,
		VecK:   vecDepth,
		BM25K:  bmDepth,
	}, nil
}

// depths computes per-backend retrieval depths. Depths stay at least k so
// truncation after fusion cannot bias the ranking; modes zero out the side
// they do not use.
func (e *Engine) depths(mode Mode, k, vecK, bmK int) (int, int) {
	vecDepth := vecK
	if vecDepth <= 0 {
		vecDepth = e.cfg.VectorDepth
	}
	if vecDepth < k {
		vecDepth = k
	}
	bmDepth := bmK
	if bmDepth <= 0 {
		bmDepth = e.cfg.BM25Depth
	}
	if bmDepth < k {
		bmDepth = k
	}

	switch mode {
	case ModeVector:
		return vecDepth, 0
	case ModeBM25:
		return 0, bmDepth
	default:
		return vecDepth, bmDepth
	}
}

// modeFailure maps backend errors onto the request outcome: a mode fails only
// when every backend it requires failed.
func modeFailure(mode Mode, sides retrievalSides) error {
	switch mode {
	case ModeVector:
		if sides.vectorErr != nil {
			return apperrors.WrapError(apperrors.ErrBackendUnavailable, sides.vectorErr.Error())
		}
	case ModeBM25:
		if sides.bm25Err != nil {
			return apperrors.WrapError(apperrors.ErrBackendUnavailable, sides.bm25Err.Error())
		}
	default:
		if sides.vectorErr != nil && sides.bm25Err != nil {
			return apperrors.WrapErrorf(apperrors.ErrBackendUnavailable,
				"vector: %v; bm25: %v", sides.vectorErr, sides.bm25Err)
		}
	}
	return nil
}

// fusionAlpha collapses the weight for single-engine modes so the surviving
// side carries the whole score.
func fusionAlpha(mode Mode, alpha float64) float64 {
	switch mode {
	case ModeVector:
		return 1
	case ModeBM25:
		return 0
	default:
		return alpha
	}
}
