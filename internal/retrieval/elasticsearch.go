// internal/retrieval/elasticsearch.go

package retrieval

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "livestock-advisor/internal/common/errors"
	"livestock-advisor/internal/models"
)

// ESSource queries one Elasticsearch index of narrative documents (breeder
// guides, veterinary handbooks, housing manuals).
type ESSource struct {
	client *elasticsearch.Client
	id     string
	index  string
	domain string
}

func NewESSource(client *elasticsearch.Client, id, index, domain string) *ESSource {
	return &ESSource{client: client, id: id, index: index, domain: domain}
}

func (s *ESSource) ID() string              { return s.id }
func (s *ESSource) Kind() models.SourceKind { return models.SourceKindNarrative }
func (s *ESSource) Domain() string          { return s.domain }

func (s *ESSource) Search(ctx context.Context, query string, budget int, filters map[string]string) ([]models.RetrievalHit, error) {
	must := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content"},
			},
		},
	}
	var filter []interface{}
	if breed, ok := filters["breed"]; ok {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"breed.keyword": breed},
		})
	}
	if ct, ok := filters["context_type"]; ok {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category.keyword": ct},
		})
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"size": budget,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSourceQueryFailedError(s.id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSourceQueryFailedError(s.id, nil)
	}

	var r struct {
		Hits struct {
			MaxScore float64 `json:"max_score"`
			Hits     []struct {
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSourceQueryFailedError(s.id, err)
	}

	hits := make([]models.RetrievalHit, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		content, _ := h.Source["content"].(string)
		if content == "" {
			continue
		}
		raw := h.Score
		// ES scores are unbounded; normalize against the best hit of this
		// query so the re-ranker sees [0,1].
		if r.Hits.MaxScore > 0 {
			raw = h.Score / r.Hits.MaxScore
		}
		hits = append(hits, models.RetrievalHit{
			Content:  content,
			RawScore: raw,
			Metadata: h.Source,
		})
	}
	return hits, nil
}
