// Package models defines core data structures for organizations, documents, and queries.
package models

import (
	"time"

	"github.com/inkwell-labs/corpora/internal/vector"
)

// Document represents a stored document owned by one organization.
// ContentHash is always the SHA-256 digest of the current Content; the ingest
// pipeline keeps the two in sync on every write.
type Document struct {
	ID          string                 `json:"id" db:"id"`
	OrgID       string                 `json:"org_id" db:"org_id"`
	Title       string                 `json:"title" db:"title"`
	Content     string                 `json:"content" db:"content"`
	ContentHash string                 `json:"content_hash" db:"content_hash"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	// Embedding is the persisted form of the document's embedding. The zero
	// value means no embedding was generated (provider failure, or never
	// attempted); such documents are excluded from ranking but remain
	// retrievable.
	Embedding vector.Stored `json:"-" db:"embedding"`
	// EmbeddingModel records which model produced the embedding. Documents
	// embedded by a different model than the configured one are never ranked.
	EmbeddingModel string    `json:"embedding_model,omitempty" db:"embedding_model"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for creating a document.
type DocumentInput struct {
	OrgID    string                 `json:"org_id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentPatch holds partial updates for a document. Nil fields are left unchanged.
type DocumentPatch struct {
	Title    *string                `json:"title,omitempty"`
	Content  *string                `json:"content,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
