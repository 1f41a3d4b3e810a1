// internal/models/confidence.go
package models

// ConfidenceLevel is the qualitative grade exposed to callers.
type ConfidenceLevel string

const (
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceModerate ConfidenceLevel = "moderate"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

// ResponseType identifies which answering path produced a response. Each
// type carries its own weighting of the component confidences.
type ResponseType string

const (
	ResponseTableLookup   ResponseType = "table_lookup"
	ResponseStructured    ResponseType = "structured_reasoning"
	ResponseDocRetrieval  ResponseType = "document_retrieval"
	ResponseGenerative    ResponseType = "generative_fallback"
	ResponseClarification ResponseType = "clarification"
	ResponseComputed      ResponseType = "computed_formula"
)

// ConfidenceBreakdown is the unified confidence stamped on every response.
// Built once, never mutated.
type ConfidenceBreakdown struct {
	UnifiedScore float64            `json:"unifiedScore"`
	Level        ConfidenceLevel    `json:"level"`
	Components   map[string]float64 `json:"components"`
	Explanation  string             `json:"explanation"`
}
