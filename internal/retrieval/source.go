// internal/retrieval/source.go

// Package retrieval fans a question out to the configured knowledge sources,
// re-ranks the union of their hits and deduplicates them into one ordered
// evidence list.
package retrieval

import (
	"context"

	"livestock-advisor/internal/models"
)

// Source is one queryable knowledge source. Implementations must be safe for
// concurrent use; the engine queries selected sources in parallel.
type Source interface {
	// ID identifies the source in hits, logs and metrics.
	ID() string
	// Kind reports whether the source yields tabular or narrative content.
	Kind() models.SourceKind
	// Domain is the advisory domain the source specializes in (performance,
	// nutrition, health, housing). Empty means general-purpose.
	Domain() string
	// Search returns up to budget hits for the query. An empty result is
	// "nothing relevant", not an error. Filters narrow by entity values
	// (line, sex, unit, age_days) when the source supports them.
	Search(ctx context.Context, query string, budget int, filters map[string]string) ([]models.RetrievalHit, error)
}

// selectedSource pairs a source with the priority assigned during selection.
type selectedSource struct {
	source   Source
	priority float64
}

// selectSources assigns priorities: a source specialized for the intent's
// domain gets 1.0; general-purpose sources back it up at 0.6, or carry the
// query alone at 0.9 when no specialized source exists. Urgent intents are
// restricted to the matching specialized sources plus the general ones, so
// off-topic indexes never dilute a diagnostic answer.
func selectSources(sources []Source, domain string, urgent bool) []selectedSource {
	var specialized, general []Source
	for _, s := range sources {
		switch s.Domain() {
		case domain:
			specialized = append(specialized, s)
		case "":
			general = append(general, s)
		default:
			if !urgent {
				// Off-domain specialized sources still contribute for normal
				// intents when the domain signal could be wrong.
				general = append(general, s)
			}
		}
	}

	generalPriority := 0.9
	if len(specialized) > 0 {
		generalPriority = 0.6
	}

	selected := make([]selectedSource, 0, len(specialized)+len(general))
	for _, s := range specialized {
		selected = append(selected, selectedSource{source: s, priority: 1.0})
	}
	for _, s := range general {
		selected = append(selected, selectedSource{source: s, priority: generalPriority})
	}
	return selected
}
