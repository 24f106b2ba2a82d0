// Package ingest orchestrates hashing, embedding generation, and store writes
// for document creation and update.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-labs/corpora/internal/embedding"
	"github.com/inkwell-labs/corpora/internal/identity"
	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/storage"
	"github.com/inkwell-labs/corpora/internal/vector"
	"go.uber.org/zap"
)

// DefaultEmbedTimeout bounds a single embedding provider call.
const DefaultEmbedTimeout = 30 * time.Second

// Pipeline creates and updates documents while keeping the content hash and
// embedding consistent with the content. A failing embedding provider degrades
// the record (no embedding); only store-level failures abort the operation.
type Pipeline struct {
	storage      storage.Storage
	embedder     embedding.Provider
	logger       *zap.Logger
	embedTimeout time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithEmbedTimeout overrides the embedding call timeout.
func WithEmbedTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.embedTimeout = d }
}

// NewPipeline creates a pipeline with the given dependencies. logger may be nil.
func NewPipeline(store storage.Storage, embedder embedding.Provider, logger *zap.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		storage:      store,
		embedder:     embedder,
		logger:       logger,
		embedTimeout: DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest creates a document: validates input, verifies the organization,
// computes the content hash, attempts embedding generation, and persists the
// record with whatever embedding result was obtained.
func (p *Pipeline) Ingest(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if input.OrgID == "" {
		return nil, fmt.Errorf("%w: org_id is required", models.ErrValidation)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if input.Content == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}
	if _, err := p.storage.GetOrganization(ctx, input.OrgID); err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:          uuid.New().String(),
		OrgID:       input.OrgID,
		Title:       input.Title,
		Content:     input.Content,
		ContentHash: identity.HashContent(input.Content),
		Metadata:    input.Metadata,
	}
	doc.Embedding, doc.EmbeddingModel = p.embed(ctx, doc.ID, input.Content)

	if err := p.storage.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update applies a partial update. When the content changes, the hash is
// recomputed and the embedding regenerated in the same logical update; a
// provider failure at that point clears the stale embedding rather than
// keeping one that no longer matches the content. Unchanged content leaves
// the existing hash and embedding untouched.
func (p *Pipeline) Update(ctx context.Context, id string, patch *models.DocumentPatch) (*models.Document, error) {
	doc, err := p.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", models.ErrValidation)
		}
		doc.Title = *patch.Title
	}
	if patch.Metadata != nil {
		doc.Metadata = patch.Metadata
	}
	if patch.Content != nil && *patch.Content != doc.Content {
		if *patch.Content == "" {
			return nil, fmt.Errorf("%w: content must not be empty", models.ErrValidation)
		}
		doc.Content = *patch.Content
		doc.ContentHash = identity.HashContent(doc.Content)
		doc.Embedding, doc.EmbeddingModel = p.embed(ctx, doc.ID, doc.Content)
	}

	if err := p.storage.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	return p.storage.DeleteDocument(ctx, id)
}

// embed generates and encodes an embedding for content, bounded by the
// configured timeout. On any failure it logs and returns the absent form;
// the document is persisted regardless.
func (p *Pipeline) embed(ctx context.Context, docID, content string) (vector.Stored, string) {
	ectx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	vec, err := p.embedder.Embed(ectx, content)
	if err != nil {
		p.logger.Warn("embedding generation failed, storing document without embedding",
			zap.String("doc_id", docID), zap.Error(err))
		return vector.Stored{}, ""
	}
	// A vector of the wrong dimensionality would poison ranking for this
	// document; treat it as a provider failure.
	if want := p.embedder.Dimensions(); want > 0 && len(vec) != want {
		p.logger.Warn("embedding has unexpected dimension, storing document without embedding",
			zap.String("doc_id", docID), zap.Int("got", len(vec)), zap.Int("want", want))
		return vector.Stored{}, ""
	}
	stored, err := vector.Encode(vec)
	if err != nil {
		p.logger.Warn("embedding encoding failed, storing document without embedding",
			zap.String("doc_id", docID), zap.Error(err))
		return vector.Stored{}, ""
	}
	return stored, p.embedder.ModelName()
}
