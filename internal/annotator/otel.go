package annotator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/mapmarkup/internal/annotator"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	committed metric.Int64Counter
	discarded metric.Int64Counter
	rejected  metric.Int64Counter
}

// newMetrics uses the global OTel meter (no-op if not configured).
func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	out.committed, err = m.Int64Counter(
		"annotator.drawings.committed",
		metric.WithDescription("Committed drawing mutations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating committed counter: %w", err)
	}

	out.discarded, err = m.Int64Counter(
		"annotator.sketches.discarded",
		metric.WithDescription("Sketches and sessions dropped without committing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discarded counter: %w", err)
	}

	out.rejected, err = m.Int64Counter(
		"annotator.commits.rejected",
		metric.WithDescription("Commits refused by validation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	return &out, nil
}

func (m *metrics) add(c metric.Int64Counter, kind string) {
	c.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}
