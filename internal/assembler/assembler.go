// Package assembler builds the prompt context and source descriptors from a ranking.
package assembler

import (
	"fmt"
	"strings"

	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/ranking"
	"github.com/inkwell-labs/corpora/pkg/utils"
)

// DefaultPreviewLength is the character budget for source previews.
const DefaultPreviewLength = 200

// Assembler turns a ranking into a delimited context block for prompt
// construction and a parallel list of source previews for client display.
type Assembler struct {
	previewLength int
}

// NewAssembler creates an assembler. previewLength <= 0 selects the default.
func NewAssembler(previewLength int) *Assembler {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &Assembler{previewLength: previewLength}
}

// Assemble builds the prompt context and the parallel source descriptors, in
// rank order. Each context block carries a stable 1-based index, the document
// title, and the full content. The block header declares the content length in
// bytes, so a block boundary cannot be forged by content that happens to
// contain the delimiter text. Assemble never truncates the content placed into
// the context; callers needing a token or length budget must apply their own
// cap before invoking the answer provider.
func (a *Assembler) Assemble(results []ranking.Result) (string, []models.Source) {
	var ctx strings.Builder
	sources := make([]models.Source, 0, len(results))
	for i, r := range results {
		doc := r.Document
		fmt.Fprintf(&ctx, "Document %d of %d: %s (%d bytes)\n%s\n\n",
			i+1, len(results), doc.Title, len(doc.Content), doc.Content)
		sources = append(sources, models.Source{
			ID:      doc.ID,
			Title:   doc.Title,
			Preview: utils.Truncate(doc.Content, a.previewLength),
		})
	}
	return ctx.String(), sources
}
