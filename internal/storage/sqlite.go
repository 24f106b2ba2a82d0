// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/vector"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	// embedding is NULL when absent; "[]" is a present zero-length vector.
	// Content uniqueness is scoped per organization, not global.
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		metadata TEXT,
		embedding TEXT,
		embedding_model TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (org_id) REFERENCES organizations(id),
		UNIQUE (org_id, content_hash)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_org_id ON documents(org_id);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// isUniqueViolation reports whether err is a SQLite uniqueness conflict.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateOrganization inserts an organization.
func (s *SQLiteStorage) CreateOrganization(ctx context.Context, org *models.Organization) error {
	org.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)`,
		org.ID, org.Name, org.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("organization %q: %w", org.Name, models.ErrAlreadyExists)
	}
	return err
}

// GetOrganization returns an organization by ID.
func (s *SQLiteStorage) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", id, models.ErrOrgNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrganizations returns all organizations ordered by creation time.
func (s *SQLiteStorage) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, &org)
	}
	return orgs, rows.Err()
}

// DeleteOrganization removes the organization and all of its documents in one
// transaction, so a partial delete is never observable.
func (s *SQLiteStorage) DeleteOrganization(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE org_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete organization documents: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("organization %s: %w", id, models.ErrOrgNotFound)
	}
	return tx.Commit()
}

// CreateDocument inserts a document.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, org_id, title, content, content_hash, metadata, embedding, embedding_model, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OrgID, doc.Title, doc.Content, doc.ContentHash, string(metadataJSON),
		nullString(doc.Embedding), nullEmpty(doc.EmbeddingModel), doc.CreatedAt, doc.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("document with identical content in organization %s: %w", doc.OrgID, models.ErrAlreadyExists)
	}
	return err
}

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, org_id, title, content, content_hash, metadata, embedding, embedding_model, created_at, updated_at
		 FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return doc, err
}

// UpdateDocument updates an existing document.
func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *models.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	doc.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET title = ?, content = ?, content_hash = ?, metadata = ?, embedding = ?, embedding_model = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Title, doc.Content, doc.ContentHash, string(metadataJSON),
		nullString(doc.Embedding), nullEmpty(doc.EmbeddingModel), doc.UpdatedAt, doc.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("document with identical content in organization %s: %w", doc.OrgID, models.ErrAlreadyExists)
	}
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document by ID.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListDocuments returns all documents ordered by creation time.
func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	return s.queryDocuments(ctx,
		`SELECT id, org_id, title, content, content_hash, metadata, embedding, embedding_model, created_at, updated_at
		 FROM documents ORDER BY created_at, id`)
}

// ListDocumentsByOrg returns one organization's documents ordered by creation time.
func (s *SQLiteStorage) ListDocumentsByOrg(ctx context.Context, orgID string) ([]*models.Document, error) {
	return s.queryDocuments(ctx,
		`SELECT id, org_id, title, content, content_hash, metadata, embedding, embedding_model, created_at, updated_at
		 FROM documents WHERE org_id = ? ORDER BY created_at, id`, orgID)
}

func (s *SQLiteStorage) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountOrganizations returns the total number of organizations.
func (s *SQLiteStorage) CountOrganizations(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var metadataJSON sql.NullString
	var embedding sql.NullString
	var embeddingModel sql.NullString

	err := row.Scan(&doc.ID, &doc.OrgID, &doc.Title, &doc.Content, &doc.ContentHash,
		&metadataJSON, &embedding, &embeddingModel, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	doc.Embedding = vector.Stored{Raw: embedding.String, Valid: embedding.Valid}
	doc.EmbeddingModel = embeddingModel.String
	return &doc, nil
}

// nullString maps an absent embedding to SQL NULL so "absent" and "present but
// zero-length" stay distinguishable in the persisted layout.
func nullString(s vector.Stored) sql.NullString {
	return sql.NullString{String: s.Raw, Valid: s.Valid}
}

func nullEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
