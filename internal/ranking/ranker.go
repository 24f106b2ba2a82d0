// Package ranking scores documents against a query embedding by cosine similarity.
package ranking

import (
	"errors"
	"sort"

	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/vector"
	"go.uber.org/zap"
)

// Result is a ranked document with its similarity score.
type Result struct {
	Document *models.Document
	Score    float64
}

// Ranker produces a thresholded, capped, ordered ranking of candidate
// documents. It is stateless and safe for concurrent use.
type Ranker struct {
	logger *zap.Logger
}

// NewRanker creates a ranker. logger may be nil.
func NewRanker(logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{logger: logger}
}

// Rank returns the candidates scoring at least threshold against queryVec,
// ordered by descending score with ties broken by ascending document ID, capped
// at limit. Candidates without a decodable embedding of matching dimensionality
// are excluded; a corrupt or mismatched embedding never aborts the ranking.
// Identical input always yields the identical ordered output.
func (r *Ranker) Rank(queryVec []float64, candidates []*models.Document, threshold float64, limit int) []Result {
	if len(queryVec) == 0 || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	results := make([]Result, 0, len(candidates))
	for _, doc := range candidates {
		docVec, err := vector.Decode(doc.Embedding)
		if err != nil {
			if errors.Is(err, vector.ErrCorruptEmbedding) {
				r.logger.Warn("skipping document with corrupt embedding",
					zap.String("doc_id", doc.ID), zap.Error(err))
			}
			continue
		}
		if len(docVec) != len(queryVec) {
			r.logger.Warn("skipping document with mismatched embedding dimension",
				zap.String("doc_id", doc.ID),
				zap.Int("doc_dim", len(docVec)), zap.Int("query_dim", len(queryVec)))
			continue
		}
		score := vector.Cosine(queryVec, docVec)
		if score < threshold {
			continue
		}
		results = append(results, Result{Document: doc, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
