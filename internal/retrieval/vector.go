// internal/retrieval/vector.go

package retrieval

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	apperrors "livestock-advisor/internal/common/errors"
	"livestock-advisor/internal/models"
)

// VectorSource queries an embedded chromem-go collection. It backs the
// general advisory knowledge base that has no dedicated search cluster.
type VectorSource struct {
	collection *chromem.Collection
	id         string
	domain     string
}

// NewVectorSource opens (or creates) the named collection. When path is
// non-empty the database persists there and survives restarts.
func NewVectorSource(id, domain, path, collectionName string, embed chromem.EmbeddingFunc) (*VectorSource, error) {
	var db *chromem.DB
	var err error
	if path != "" {
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, fmt.Errorf("open knowledge base: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", collectionName, err)
	}
	return &VectorSource{collection: col, id: id, domain: domain}, nil
}

func (s *VectorSource) ID() string              { return s.id }
func (s *VectorSource) Kind() models.SourceKind { return models.SourceKindNarrative }
func (s *VectorSource) Domain() string          { return s.domain }

// AddDocuments indexes advisory passages; used at ingestion time and by tests.
func (s *VectorSource) AddDocuments(ctx context.Context, docs []chromem.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *VectorSource) Search(ctx context.Context, query string, budget int, filters map[string]string) ([]models.RetrievalHit, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if budget > count {
		budget = count
	}

	var where map[string]string
	if ct, ok := filters["context_type"]; ok {
		where = map[string]string{"category": ct}
	}

	results, err := s.collection.Query(ctx, query, budget, where, nil)
	if err != nil {
		// A filter matching nothing is "no evidence", not a failure.
		if where != nil {
			if results, err = s.collection.Query(ctx, query, budget, nil, nil); err != nil {
				return nil, apperrors.NewSourceQueryFailedError(s.id, err)
			}
		} else {
			return nil, apperrors.NewSourceQueryFailedError(s.id, err)
		}
	}

	hits := make([]models.RetrievalHit, 0, len(results))
	for _, r := range results {
		metadata := make(map[string]interface{}, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		hits = append(hits, models.RetrievalHit{
			Content:  r.Content,
			RawScore: float64(r.Similarity),
			Metadata: metadata,
		})
	}
	return hits, nil
}
