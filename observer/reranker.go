package observer

import (
	"context"
	"time"

	tenk "github.com/nevindra/tenk"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedReranker wraps a tenk.Reranker with OTEL instrumentation.
type ObservedReranker struct {
	inner tenk.Reranker
	inst  *Instruments
}

var _ tenk.Reranker = (*ObservedReranker)(nil)

// WrapReranker returns an instrumented reranker.
func WrapReranker(inner tenk.Reranker, inst *Instruments) *ObservedReranker {
	return &ObservedReranker{inner: inner, inst: inst}
}

func (o *ObservedReranker) Score(ctx context.Context, query, passage string) (float32, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "rerank.score", trace.WithAttributes(
		AttrQueryLength.Int(len(query)),
		AttrPassageLength.Int(len(passage)),
	))
	defer span.End()
	start := time.Now()

	score, err := o.inner.Score(ctx, query, passage)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(AttrRerankScore.Float64(float64(score)))
	}

	o.inst.RerankRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	o.inst.RerankDuration.Record(ctx, durationMs)

	return score, err
}
