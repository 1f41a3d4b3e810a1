// internal/models/retrieval.go
package models

// SourceKind distinguishes tabular reference data from narrative documents.
type SourceKind string

const (
	SourceKindTable     SourceKind = "table"
	SourceKindNarrative SourceKind = "narrative"
)

// RetrievalHit is one piece of evidence produced by a knowledge source.
// Hits are ephemeral: produced and consumed within one resolution cycle.
type RetrievalHit struct {
	SourceID      string                 `json:"sourceId"`
	Content       string                 `json:"content"`
	RawScore      float64                `json:"rawScore"`
	FinalScore    float64                `json:"finalScore"`
	Kind          SourceKind             `json:"kind"`
	IndexPriority float64                `json:"indexPriority"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
