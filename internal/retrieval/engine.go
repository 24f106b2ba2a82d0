// Package retrieval runs the query read path: embed, rank, assemble, answer.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-labs/corpora/internal/answer"
	"github.com/inkwell-labs/corpora/internal/assembler"
	"github.com/inkwell-labs/corpora/internal/config"
	"github.com/inkwell-labs/corpora/internal/embedding"
	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/ranking"
	"github.com/inkwell-labs/corpora/internal/storage"
	"go.uber.org/zap"
)

// NoRelevantDocumentsAnswer is returned when nothing in the organization's
// corpus meets the similarity threshold.
const NoRelevantDocumentsAnswer = "I couldn't find any relevant documents to answer your question. " +
	"Please make sure you have uploaded documents to this organization."

// answerFailureMessage degrades a failed answer-provider call; the sources are
// still returned so the client can fall back to them.
const answerFailureMessage = "Sorry, I encountered an error while processing your request."

// Engine answers queries over an organization's documents. Ranking is a pure
// read over a snapshot fetched once per query; the engine holds no locks and
// is safe for concurrent use.
type Engine struct {
	storage  storage.Storage
	embedder embedding.Provider
	answerer answer.Provider // optional; nil disables answer generation
	ranker   *ranking.Ranker
	asm      *assembler.Assembler
	cfg      *config.RetrievalConfig
	timeout  time.Duration
	logger   *zap.Logger
}

// NewEngine creates an engine. answerer may be nil, in which case Query
// returns sources with an empty answer. logger may be nil.
func NewEngine(
	store storage.Storage,
	embedder embedding.Provider,
	answerer answer.Provider,
	cfg *config.RetrievalConfig,
	providerTimeout time.Duration,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	return &Engine{
		storage:  store,
		embedder: embedder,
		answerer: answerer,
		ranker:   ranking.NewRanker(logger),
		asm:      assembler.NewAssembler(cfg.PreviewLength),
		cfg:      cfg,
		timeout:  providerTimeout,
		logger:   logger,
	}
}

// Query answers req against its organization's corpus. A failed query
// embedding and an empty ranking both surface as models.ErrNoRelevantDocuments
// so that callers can distinguish "nothing relevant" from a system fault.
func (e *Engine) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.storage.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}

	limit := req.TopK
	if limit == 0 {
		limit = e.cfg.TopK
	}
	threshold := e.cfg.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	results, err := e.rankOrg(ctx, req.Query, req.OrgID, threshold, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.ErrNoRelevantDocuments
	}

	docContext, sources := e.asm.Assemble(results)

	resp := &models.QueryResponse{Query: req.Query, Sources: sources}
	if e.answerer == nil {
		return resp, nil
	}
	actx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	text, err := e.answerer.Generate(actx, req.Query, docContext)
	if err != nil {
		// The provider failing is not the client's fault; degrade the answer
		// and keep the sources.
		e.logger.Error("answer generation failed", zap.String("org_id", req.OrgID), zap.Error(err))
		resp.Answer = answerFailureMessage
		return resp, nil
	}
	resp.Answer = text
	return resp, nil
}

// Search returns documents relevant to query. With an organization filter it
// ranks that organization's corpus; without one it fans out as an independent
// per-organization ranking for every known organization and concatenates the
// results (not a cross-organization joint ranking).
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrValidation)
	}

	resp := &models.SearchResponse{Query: req.Query, Results: []*models.SearchResult{}}

	orgIDs := []string{req.OrgID}
	if req.OrgID == "" {
		orgs, err := e.storage.ListOrganizations(ctx)
		if err != nil {
			return nil, err
		}
		orgIDs = orgIDs[:0]
		for _, org := range orgs {
			orgIDs = append(orgIDs, org.ID)
		}
	} else if _, err := e.storage.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}

	for _, orgID := range orgIDs {
		results, err := e.rankOrg(ctx, req.Query, orgID, e.cfg.Threshold, e.cfg.TopK)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			resp.Results = append(resp.Results, &models.SearchResult{Document: r.Document, Score: r.Score})
		}
	}
	return resp, nil
}

// rankOrg embeds the query and ranks one organization's snapshot. A provider
// failure on the query embedding yields an empty ranking, never a propagated
// provider error.
func (e *Engine) rankOrg(ctx context.Context, query, orgID string, threshold float64, limit int) ([]ranking.Result, error) {
	ectx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	queryVec, err := e.embedder.Embed(ectx, query)
	if err != nil {
		e.logger.Warn("query embedding failed", zap.String("org_id", orgID), zap.Error(err))
		return nil, nil
	}

	docs, err := e.storage.ListDocumentsByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// Vectors from a different embedding model live in a different space and
	// must never be compared against this query.
	candidates := docs[:0]
	for _, doc := range docs {
		if doc.Embedding.Valid && doc.EmbeddingModel != e.embedder.ModelName() {
			e.logger.Warn("skipping document embedded by a different model",
				zap.String("doc_id", doc.ID),
				zap.String("doc_model", doc.EmbeddingModel),
				zap.String("query_model", e.embedder.ModelName()))
			continue
		}
		candidates = append(candidates, doc)
	}
	return e.ranker.Rank(queryVec, candidates, threshold, limit), nil
}
