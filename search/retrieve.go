package search

import (
	"context"

	"reelsearch/database"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// retrievalSides carries the two backend candidate lists plus each side's
// terminal error. A failed side has a nil list and a non-nil error; the
// caller decides whether that is fatal for the active mode.
type retrievalSides struct {
	vector    []database.MovieHit
	vectorErr error
	bm25      []database.MovieHit
	bm25Err   error
}

// retrieve issues the dense and lexical queries concurrently against the
// seed text under one shared timeout budget. A failure on either side never
// cancels the other; it just leaves that side empty.
func (e *Engine) retrieve(ctx context.Context, seed Seed, genres []string, vecDepth, bmDepth int) retrievalSides {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RetrievalTimeout)
	defer cancel()

	var sides retrievalSides
	g := new(errgroup.Group)

	if vecDepth > 0 {
		g.Go(func() error {
			embedding, err := e.embedSeed(ctx, seed.Text)
			if err != nil {
				sides.vectorErr = err
				return nil
			}
			hits, err := e.store.QueryVector(ctx, embedding, vecDepth, genres)
			if err != nil {
				sides.vectorErr = err
				return nil
			}
			sides.vector = hits
			return nil
		})
	}

	if bmDepth > 0 {
		g.Go(func() error {
			hits, err := e.store.SearchBM25(ctx, seed.Text, genres, bmDepth)
			if err != nil {
				sides.bm25Err = err
				return nil
			}
			sides.bm25 = hits
			return nil
		})
	}

	// Goroutines record their outcome and always return nil, so Wait only
	// synchronizes; it cannot fail.
	g.Wait()

	if sides.vectorErr != nil {
		e.logger.Warn("Vector retrieval failed, side contributes no candidates",
			zap.Error(sides.vectorErr), zap.Int("vec_depth", vecDepth))
	}
	if sides.bm25Err != nil {
		e.logger.Warn("BM25 retrieval failed, side contributes no candidates",
			zap.Error(sides.bm25Err), zap.Int("bm25_depth", bmDepth))
	}
	return sides
}
