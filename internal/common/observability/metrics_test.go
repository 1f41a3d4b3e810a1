// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"
)

func TestObservability_RecordsWithoutPanicking(t *testing.T) {
	obs := New("advisor-test")
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordQuestionProcessed(ctx, "answer")
	obs.RecordQuestionProcessed(ctx, "clarify")
	obs.RecordResolutionDuration(ctx, 150*time.Millisecond, "answer")
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	// New returns an empty Observability when the exporter cannot be built;
	// recording and shutdown must still be no-ops, not panics.
	var obs Observability

	ctx := context.Background()
	obs.RecordQuestionProcessed(ctx, "answer")
	obs.RecordResolutionDuration(ctx, time.Second, "hybrid")
	obs.Shutdown()
}
