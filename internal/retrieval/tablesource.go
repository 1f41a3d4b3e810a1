// internal/retrieval/tablesource.go

package retrieval

import (
	"context"
	"fmt"
	"strconv"

	"livestock-advisor/internal/models"
	"livestock-advisor/internal/perfstore"
)

// PerfTableSource exposes the performance reference tables through the same
// search interface as the document sources, so fusion treats a table row as
// one more piece of evidence. It only answers when the filters carry enough
// keys for a deterministic lookup.
type PerfTableSource struct {
	store *perfstore.Store
	id    string
}

func NewPerfTableSource(store *perfstore.Store, id string) *PerfTableSource {
	return &PerfTableSource{store: store, id: id}
}

func (s *PerfTableSource) ID() string              { return s.id }
func (s *PerfTableSource) Kind() models.SourceKind { return models.SourceKindTable }
func (s *PerfTableSource) Domain() string          { return "performance" }

func (s *PerfTableSource) Search(ctx context.Context, _ string, _ int, filters map[string]string) ([]models.RetrievalHit, error) {
	line := filters["breed"]
	ageStr := filters["age_days"]
	if line == "" || ageStr == "" {
		return nil, nil
	}
	ageDays, err := strconv.Atoi(ageStr)
	if err != nil {
		return nil, nil
	}

	rec, err := s.store.Lookup(ctx, line, filters["sex"], filters["unit"], ageDays)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	hit := models.RetrievalHit{
		Content:  FormatPerfRecord(rec),
		RawScore: perfstore.SourceReliability,
		Metadata: map[string]interface{}{
			"line":       rec.Line,
			"sex":        string(rec.Sex),
			"age_days":   rec.AgeDays,
			"source_doc": rec.SourceDoc,
			"page":       rec.Page,
			"exact_age":  rec.AgeDays == ageDays,
		},
	}
	return []models.RetrievalHit{hit}, nil
}

// FormatPerfRecord renders a reference row as one advisory sentence; the
// synthesizers quote it directly.
func FormatPerfRecord(rec *models.PerfRecord) string {
	return fmt.Sprintf(
		"%s %s à %d jours : poids cible %.0f g, gain moyen quotidien %.1f g/j, indice de consommation cumulé %.2f (source %s p.%d)",
		rec.Line, frenchSex(rec.Sex), rec.AgeDays, rec.WeightG, rec.DailyGain, rec.FCRCum, rec.SourceDoc, rec.Page,
	)
}

func frenchSex(sex models.Sex) string {
	switch sex {
	case models.SexMale:
		return "mâle"
	case models.SexFemale:
		return "femelle"
	default:
		return "mixte"
	}
}
