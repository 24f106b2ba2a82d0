package ranking

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/vector"
)

func docWithVec(id string, vec []float64) *models.Document {
	stored, err := vector.Encode(vec)
	if err != nil {
		panic(err)
	}
	return &models.Document{ID: id, Embedding: stored}
}

func TestRank_ThresholdAndExclusion(t *testing.T) {
	// A aligns with the query, B is below threshold, C has no embedding.
	query := []float64{1, 0, 0}
	candidates := []*models.Document{
		docWithVec("a", []float64{0.92, 0.39, 0}),
		docWithVec("b", []float64{0.65, 0.76, 0}),
		{ID: "c"},
	}

	results := NewRanker(nil).Rank(query, candidates, 0.7, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Document.ID != "a" {
		t.Errorf("expected document a, got %s", results[0].Document.ID)
	}
	if results[0].Score < 0.7 {
		t.Errorf("returned score %v below threshold", results[0].Score)
	}
}

func TestRank_CorruptAndMismatchedExcludedNotFatal(t *testing.T) {
	query := []float64{1, 0}
	candidates := []*models.Document{
		{ID: "corrupt", Embedding: vector.Stored{Raw: "not json", Valid: true}},
		docWithVec("wrongdim", []float64{1, 0, 0}),
		docWithVec("ok", []float64{1, 0}),
	}
	results := NewRanker(nil).Rank(query, candidates, 0.5, 10)
	if len(results) != 1 || results[0].Document.ID != "ok" {
		t.Fatalf("expected only the decodable matching-dimension candidate, got %v", results)
	}
}

func TestRank_OrderingLimitAndTies(t *testing.T) {
	query := []float64{1, 0}
	var candidates []*models.Document
	// Ten candidates all above threshold, several of them tied.
	for i := 0; i < 10; i++ {
		angle := float64(i%3) * 0.1
		candidates = append(candidates, docWithVec(fmt.Sprintf("doc-%d", i), []float64{1, angle}))
	}

	results := NewRanker(nil).Rank(query, candidates, 0.5, 3)
	if len(results) != 3 {
		t.Fatalf("expected exactly 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %v > %v", i, results[i].Score, results[i-1].Score)
		}
		if results[i].Score == results[i-1].Score && results[i].Document.ID < results[i-1].Document.ID {
			t.Errorf("tie not broken by ascending id: %s before %s",
				results[i-1].Document.ID, results[i].Document.ID)
		}
	}
	// The three highest scores are the i%3 == 0 candidates; ties by ascending id.
	want := []string{"doc-0", "doc-3", "doc-6"}
	for i, r := range results {
		if r.Document.ID != want[i] {
			t.Errorf("result %d: got %s, want %s", i, r.Document.ID, want[i])
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	query := []float64{0.3, 0.9, 0.1}
	var candidates []*models.Document
	for i := 0; i < 20; i++ {
		candidates = append(candidates, docWithVec(fmt.Sprintf("d%02d", i),
			[]float64{float64(i%4) * 0.2, 0.9, 0.1}))
	}
	r := NewRanker(nil)
	first := r.Rank(query, candidates, 0.1, 10)
	for run := 0; run < 5; run++ {
		if got := r.Rank(query, candidates, 0.1, 10); !reflect.DeepEqual(got, first) {
			t.Fatalf("ranking not deterministic on run %d", run)
		}
	}
}

func TestRank_EmptyInputs(t *testing.T) {
	r := NewRanker(nil)
	if got := r.Rank([]float64{1}, nil, 0.5, 5); len(got) != 0 {
		t.Errorf("empty candidates: got %v", got)
	}
	if got := r.Rank(nil, []*models.Document{docWithVec("a", []float64{1})}, 0.5, 5); len(got) != 0 {
		t.Errorf("empty query vector: got %v", got)
	}
	// No candidate meeting threshold yields an empty sequence, never an error.
	if got := r.Rank([]float64{1, 0}, []*models.Document{docWithVec("a", []float64{0, 1})}, 0.5, 5); len(got) != 0 {
		t.Errorf("below threshold: got %v", got)
	}
}
