package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inkwell-labs/corpora/internal/embedding"
	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/storage"
	"github.com/inkwell-labs/corpora/internal/vector"
)

func newTestPipeline(t *testing.T, embedder embedding.Provider) (*Pipeline, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.CreateOrganization(context.Background(), &models.Organization{ID: "org1", Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	return NewPipeline(store, embedder, nil), store
}

func TestIngest(t *testing.T) {
	p, store := newTestPipeline(t, embedding.NewMockProvider(4))
	ctx := context.Background()

	doc, err := p.Ingest(ctx, &models.DocumentInput{
		OrgID: "org1", Title: "Handbook", Content: "welcome aboard",
		Metadata: map[string]interface{}{"team": "hr"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" {
		t.Error("document should get an ID")
	}
	if doc.ContentHash == "" || len(doc.ContentHash) != 64 {
		t.Errorf("content hash: got %q", doc.ContentHash)
	}
	if !doc.Embedding.Valid {
		t.Error("embedding should be present")
	}
	if doc.EmbeddingModel != "mock" {
		t.Errorf("embedding model: got %q", doc.EmbeddingModel)
	}

	persisted, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.ContentHash != doc.ContentHash {
		t.Error("persisted hash differs")
	}
}

// wrongDimensionProvider claims one dimensionality but emits another,
// simulating a misconfigured or misbehaving provider.
type wrongDimensionProvider struct{}

func (wrongDimensionProvider) Embed(_ context.Context, _ string) ([]float64, error) {
	return []float64{0.1, 0.2, 0.3}, nil
}

func (wrongDimensionProvider) Dimensions() int { return 8 }

func (wrongDimensionProvider) ModelName() string { return "wrong-dim" }

func TestIngest_WrongDimensionEmbeddingDegrades(t *testing.T) {
	p, store := newTestPipeline(t, wrongDimensionProvider{})
	ctx := context.Background()

	doc, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "org1", Title: "T", Content: "body"})
	if err != nil {
		t.Fatalf("dimension mismatch must not abort ingestion: %v", err)
	}
	if doc.Embedding.Valid {
		t.Error("embedding of unexpected dimension should be discarded")
	}
	if doc.EmbeddingModel != "" {
		t.Errorf("embedding model should be empty, got %q", doc.EmbeddingModel)
	}
	persisted, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.Embedding.Valid {
		t.Error("persisted embedding should be absent")
	}
}

func TestIngest_ProviderFailureDegrades(t *testing.T) {
	embedder := embedding.NewMockProvider(4)
	embedder.Fail = errors.New("provider down")
	p, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	doc, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "org1", Title: "T", Content: "body"})
	if err != nil {
		t.Fatalf("provider failure must not abort ingestion: %v", err)
	}
	if doc.Embedding.Valid {
		t.Error("embedding should be absent after provider failure")
	}
	if doc.EmbeddingModel != "" {
		t.Errorf("embedding model should be empty, got %q", doc.EmbeddingModel)
	}
	persisted, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.Embedding.Valid {
		t.Error("degraded record must persist without embedding")
	}
}

func TestIngest_Validation(t *testing.T) {
	p, _ := newTestPipeline(t, embedding.NewMockProvider(4))
	ctx := context.Background()

	tests := []*models.DocumentInput{
		{Title: "T", Content: "c"},
		{OrgID: "org1", Content: "c"},
		{OrgID: "org1", Title: "T"},
	}
	for _, input := range tests {
		if _, err := p.Ingest(ctx, input); !errors.Is(err, models.ErrValidation) {
			t.Errorf("input %+v: got %v, want ErrValidation", input, err)
		}
	}

	_, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "missing", Title: "T", Content: "c"})
	if !errors.Is(err, models.ErrOrgNotFound) {
		t.Errorf("unknown org: got %v, want ErrOrgNotFound", err)
	}
}

func TestUpdate_ContentChangeRehashesAndReembeds(t *testing.T) {
	p, _ := newTestPipeline(t, embedding.NewMockProvider(4))
	ctx := context.Background()

	doc, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "org1", Title: "T", Content: "version one"})
	if err != nil {
		t.Fatal(err)
	}
	oldHash := doc.ContentHash
	oldVec, _ := vector.Decode(doc.Embedding)

	newContent := "version two"
	updated, err := p.Update(ctx, doc.ID, &models.DocumentPatch{Content: &newContent})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ContentHash == oldHash {
		t.Error("hash must change with content")
	}
	newVec, err := vector.Decode(updated.Embedding)
	if err != nil {
		t.Fatal(err)
	}
	same := len(newVec) == len(oldVec)
	if same {
		for i := range newVec {
			if newVec[i] != oldVec[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("embedding must be regenerated for new content")
	}
}

func TestUpdate_TitleOnlyKeepsHashAndEmbedding(t *testing.T) {
	embedder := embedding.NewMockProvider(4)
	p, _ := newTestPipeline(t, embedder)
	ctx := context.Background()

	doc, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "org1", Title: "Old", Content: "stable content"})
	if err != nil {
		t.Fatal(err)
	}

	// Provider failing now must not matter; nothing should be re-embedded.
	embedder.Fail = errors.New("provider down")
	title := "New"
	updated, err := p.Update(ctx, doc.ID, &models.DocumentPatch{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "New" {
		t.Errorf("title: got %s", updated.Title)
	}
	if updated.ContentHash != doc.ContentHash {
		t.Error("hash must be untouched when content is unchanged")
	}
	if !updated.Embedding.Valid {
		t.Error("embedding must be untouched when content is unchanged")
	}
}

func TestUpdate_ProviderFailureClearsStaleEmbedding(t *testing.T) {
	embedder := embedding.NewMockProvider(4)
	p, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	doc, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "org1", Title: "T", Content: "original"})
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Embedding.Valid {
		t.Fatal("precondition: embedding present")
	}

	embedder.Fail = errors.New("provider down")
	newContent := "rewritten"
	updated, err := p.Update(ctx, doc.ID, &models.DocumentPatch{Content: &newContent})
	if err != nil {
		t.Fatalf("provider failure must not abort the update: %v", err)
	}
	if updated.Embedding.Valid {
		t.Error("stale embedding must be cleared, not kept")
	}
	want := updated.ContentHash
	persisted, _ := store.GetDocument(ctx, doc.ID)
	if persisted.ContentHash != want || persisted.Embedding.Valid {
		t.Error("persisted record must carry new hash and no embedding")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	p, _ := newTestPipeline(t, embedding.NewMockProvider(4))
	title := "x"
	_, err := p.Update(context.Background(), "missing", &models.DocumentPatch{Title: &title})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	p, _ := newTestPipeline(t, embedding.NewMockProvider(4))
	ctx := context.Background()
	doc, err := p.Ingest(ctx, &models.DocumentInput{OrgID: "org1", Title: "T", Content: "c"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(ctx, doc.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
