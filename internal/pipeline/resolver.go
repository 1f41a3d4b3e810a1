// internal/pipeline/resolver.go

// Package pipeline orchestrates one question end to end: extraction and
// classification in parallel, context merge, completeness, strategy, then
// either clarification questions or retrieval plus synthesis, all stamped
// with a unified confidence.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"livestock-advisor/internal/clarify"
	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/common/metrics"
	"livestock-advisor/internal/completeness"
	"livestock-advisor/internal/confidence"
	"livestock-advisor/internal/contextstore"
	"livestock-advisor/internal/entity"
	"livestock-advisor/internal/intent"
	"livestock-advisor/internal/models"
	"livestock-advisor/internal/retrieval"
	"livestock-advisor/internal/strategy"
	"livestock-advisor/internal/synthesis"
	"livestock-advisor/pkg/registry"
)

// Confidence floor used for source reliability when answering with no
// evidence at all.
const noEvidenceReliability = 0.2

// Question is one incoming user turn.
type Question struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// Response is the resolved result for one question.
type Response struct {
	QuestionID     string                     `json:"questionId"`
	SessionID      string                     `json:"sessionId"`
	Strategy       strategy.Action            `json:"strategy"`
	Answer         string                     `json:"answer,omitempty"`
	Clarifications []string                   `json:"clarifications,omitempty"`
	IntentID       string                     `json:"intentId"`
	Entities       map[string]interface{}     `json:"entities"`
	Evidence       []models.RetrievalHit      `json:"evidence,omitempty"`
	Confidence     models.ConfidenceBreakdown `json:"confidence"`
}

type Resolver struct {
	extractor    *entity.Extractor
	normalizer   *entity.Normalizer
	classifier   *intent.Classifier
	contexts     *contextstore.Store
	completeness *completeness.Evaluator
	selector     *strategy.Selector
	clarifier    *clarify.Generator
	retrieval    *retrieval.Engine
	synthesizer  *synthesis.Chain
	registry     *registry.IntentRegistry
	logger       logger.Logger

	questionTimeout   time.Duration
	maxClarifications int
}

type Deps struct {
	Extractor    *entity.Extractor
	Normalizer   *entity.Normalizer
	Classifier   *intent.Classifier
	Contexts     *contextstore.Store
	Completeness *completeness.Evaluator
	Selector     *strategy.Selector
	Clarifier    *clarify.Generator
	Retrieval    *retrieval.Engine
	Synthesizer  *synthesis.Chain
	Registry     *registry.IntentRegistry
	Logger       logger.Logger

	QuestionTimeout   time.Duration
	MaxClarifications int
}

func NewResolver(d Deps) *Resolver {
	return &Resolver{
		extractor:         d.Extractor,
		normalizer:        d.Normalizer,
		classifier:        d.Classifier,
		contexts:          d.Contexts,
		completeness:      d.Completeness,
		selector:          d.Selector,
		clarifier:         d.Clarifier,
		retrieval:         d.Retrieval,
		synthesizer:       d.Synthesizer,
		registry:          d.Registry,
		logger:            d.Logger.WithFields(map[string]interface{}{"component": "resolver"}),
		questionTimeout:   d.QuestionTimeout,
		maxClarifications: d.MaxClarifications,
	}
}

// Resolve processes one question under the per-question timeout. The only
// error it returns is a blown overall deadline; every degraded path inside
// still yields a coherent response.
func (r *Resolver) Resolve(ctx context.Context, q Question) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.questionTimeout)
	defer cancel()
	started := time.Now()
	questionID := uuid.NewString()

	cc := r.contexts.Get(ctx, q.SessionID)

	// Normalization and classification are independent; run them the way
	// source queries fan out.
	var (
		wg   sync.WaitGroup
		norm models.NormalizedEntities
		cls  models.Classification
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		norm = r.normalizer.Normalize(r.extractor.Extract(q.Text))
	}()
	go func() {
		defer wg.Done()
		cls = r.classifier.Classify(q.Text, cc.Entities)
	}()
	wg.Wait()

	cls = r.continueTopic(cls, cc)

	newFields := norm.ToFieldMap()
	merged := models.MergeEntityFields(cc.Entities, newFields)

	comp := r.completeness.Score(merged, cls.IntentID, cls.Confidence, norm.NormalizationConfidence)
	decision := r.selector.Select(comp.Score, cls.Confidence, cls.IntentID, cls.Urgency, cc.ClarificationRound)

	r.logger.Info("question routed", map[string]interface{}{
		"questionId":   questionID,
		"sessionId":    q.SessionID,
		"intent":       cls.IntentID,
		"completeness": comp.Score,
		"strategy":     string(decision.Action),
		"round":        cc.ClarificationRound,
	})

	var resp *Response
	if decision.Action == strategy.ActionClarify {
		resp = r.clarifyResponse(q, cls, comp, norm, merged)
	} else {
		resp = r.answerResponse(ctx, q, cls, comp, norm, merged, decision)
	}

	resp.QuestionID = questionID
	r.updateContext(ctx, q, cls, newFields, resp)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.QuestionsResolved.WithLabelValues(string(resp.Strategy)).Inc()
	metrics.ResolutionDuration.WithLabelValues(string(resp.Strategy)).Observe(time.Since(started).Seconds())
	return resp, nil
}

// continueTopic keeps a clarification exchange on its topic: a bare answer
// like "Ross 308, 21 jours" carries no intent signal of its own, so when a
// clarification is pending the previous intent stands.
func (r *Resolver) continueTopic(cls models.Classification, cc *models.ConversationContext) models.Classification {
	if cls.IntentID != models.IntentUnknown || cc.LastIntent == "" || cc.ClarificationRound == 0 {
		return cls
	}
	def := r.registry.Get(cc.LastIntent)
	if def == nil {
		return cls
	}
	urgency := models.UrgencyNormal
	if def.IsUrgent() {
		urgency = models.UrgencyUrgent
	}
	return models.Classification{
		IntentID:   def.IntentID,
		Domain:     def.Domain,
		Confidence: cc.IntentConfidence,
		Urgency:    urgency,
		Ambiguity:  models.AmbiguityLow,
	}
}

func (r *Resolver) clarifyResponse(q Question, cls models.Classification, comp completeness.Result, norm models.NormalizedEntities, merged map[string]interface{}) *Response {
	questions := r.clarifier.Generate(comp.MissingFields, cls.IntentID, cls.Urgency, r.maxClarifications)
	metrics.ClarificationRounds.Inc()

	breakdown := confidence.Unify(models.ResponseClarification, confidence.Signals{
		SourceReliability:    noEvidenceReliability,
		IntentConfidence:     cls.Confidence,
		Completeness:         comp.Score,
		ValidationConfidence: norm.NormalizationConfidence,
	})
	return &Response{
		SessionID:      q.SessionID,
		Strategy:       strategy.ActionClarify,
		Clarifications: questions,
		IntentID:       cls.IntentID,
		Entities:       merged,
		Confidence:     breakdown,
	}
}

func (r *Resolver) answerResponse(ctx context.Context, q Question, cls models.Classification, comp completeness.Result, norm models.NormalizedEntities, merged map[string]interface{}, decision strategy.Decision) *Response {
	evidence := r.retrieval.Retrieve(ctx, q.Text, merged, cls)

	responseType, exactHit, reliability := gradeEvidence(evidence)

	hedged := decision.Action == strategy.ActionHybrid || decision.RoundEscalated
	result, err := r.synthesizer.Synthesize(ctx, synthesis.Request{
		Question: q.Text,
		IntentID: cls.IntentID,
		Entities: merged,
		Evidence: evidence,
		Hedged:   hedged,
	})
	if err != nil || result.Text == "" {
		// Both synthesis paths down; still return something safe.
		result.Text = "Je ne peux pas répondre précisément pour le moment. " +
			"Reformulez votre question avec la souche, l'âge et le sexe du lot."
		result.Fallback = true
		responseType = models.ResponseGenerative
	}

	breakdown := confidence.Unify(responseType, confidence.Signals{
		SourceReliability:    reliability,
		IntentConfidence:     cls.Confidence,
		Completeness:         comp.Score,
		ValidationConfidence: norm.NormalizationConfidence,
		ExactHit:             exactHit,
		FallbackPath:         result.Fallback,
	})
	return &Response{
		SessionID:  q.SessionID,
		Strategy:   decision.Action,
		Answer:     result.Text,
		IntentID:   cls.IntentID,
		Entities:   merged,
		Evidence:   evidence,
		Confidence: breakdown,
	}
}

// gradeEvidence derives the response type and the source-reliability signal
// from what retrieval produced. A leading table row makes it a table lookup;
// its exact_age marker distinguishes an exact match from a nearest-age one.
func gradeEvidence(evidence []models.RetrievalHit) (models.ResponseType, bool, float64) {
	if len(evidence) == 0 {
		return models.ResponseGenerative, false, noEvidenceReliability
	}

	for _, hit := range evidence {
		if hit.Kind == models.SourceKindTable {
			exact, _ := hit.Metadata["exact_age"].(bool)
			return models.ResponseTableLookup, exact, hit.RawScore
		}
	}

	var sum float64
	n := 0
	for _, hit := range evidence {
		sum += hit.FinalScore
		n++
		if n == 3 {
			break
		}
	}
	return models.ResponseDocRetrieval, false, sum / float64(n)
}

func (r *Resolver) updateContext(ctx context.Context, q Question, cls models.Classification, newFields map[string]interface{}, resp *Response) {
	update := contextstore.Update{
		Entities:         newFields,
		Turn:             &models.Turn{Role: "user", Text: q.Text, Timestamp: time.Now().UTC()},
		Intent:           cls.IntentID,
		IntentConfidence: cls.Confidence,
	}
	if resp.Strategy == strategy.ActionClarify {
		update.ClarificationAsked = true
	} else {
		update.TopicResolved = true
	}
	if _, ok := r.contexts.Apply(ctx, q.SessionID, update); !ok {
		r.logger.Warn("context update not persisted", map[string]interface{}{
			"sessionId": q.SessionID,
		})
	}

	assistantText := resp.Answer
	if resp.Strategy == strategy.ActionClarify && len(resp.Clarifications) > 0 {
		assistantText = resp.Clarifications[0]
	}
	if assistantText != "" {
		r.contexts.Apply(ctx, q.SessionID, contextstore.Update{
			Turn: &models.Turn{Role: "assistant", Text: assistantText, Timestamp: time.Now().UTC()},
		})
	}
}
