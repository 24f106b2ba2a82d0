// Package storage defines the persistence interface for organizations and documents.
package storage

import (
	"context"

	"github.com/inkwell-labs/corpora/internal/models"
)

// Storage defines organization and document persistence operations.
// Missing rows are reported as models.ErrNotFound / models.ErrOrgNotFound;
// uniqueness conflicts as models.ErrAlreadyExists.
type Storage interface {
	// Organization operations
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
	// DeleteOrganization removes the organization and all of its documents
	// in one transaction.
	DeleteOrganization(ctx context.Context, id string) error

	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	ListDocumentsByOrg(ctx context.Context, orgID string) ([]*models.Document, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountOrganizations(ctx context.Context) (int64, error)

	Close() error
}
