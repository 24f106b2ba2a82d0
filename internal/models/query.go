package models

import "fmt"

// QueryRequest asks a question against one organization's corpus.
type QueryRequest struct {
	Query string `json:"query"`
	OrgID string `json:"org_id"`
	// TopK caps the number of documents assembled into the answer context.
	// Zero means the configured default.
	TopK int `json:"top_k,omitempty"`
	// Threshold is the minimum cosine similarity for a document to be used.
	// Nil means the configured default; an explicit 0 disables filtering.
	Threshold *float64 `json:"threshold,omitempty"`
}

// Validate checks required fields. It does not apply defaults; the retrieval
// engine fills those from configuration.
func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("%w: query is required", ErrValidation)
	}
	if q.OrgID == "" {
		return fmt.Errorf("%w: org_id is required", ErrValidation)
	}
	if q.TopK < 0 {
		return fmt.Errorf("%w: top_k must not be negative", ErrValidation)
	}
	return nil
}

// Source is a lightweight descriptor of a document used to answer a query.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Preview is the document content capped at the configured character
	// budget, with "..." appended when truncation occurred.
	Preview string `json:"preview"`
}

// QueryResponse is the answer to a query with its supporting sources.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Query   string   `json:"query"`
	// NoRelevantDocuments is set when nothing in the corpus met the
	// similarity threshold and Answer carries a canned explanation.
	NoRelevantDocuments bool `json:"no_relevant_documents,omitempty"`
}

// SearchRequest asks for documents relevant to a query. When OrgID is empty,
// the search fans out as an independent per-organization ranking for every
// known organization; it is not a cross-organization joint ranking.
type SearchRequest struct {
	Query string `json:"query"`
	OrgID string `json:"org_id,omitempty"`
}

// SearchResult is a single ranked document with its similarity score.
type SearchResult struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []*SearchResult `json:"results"`
}
