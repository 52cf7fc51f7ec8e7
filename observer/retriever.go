package observer

import (
	"context"
	"time"

	tenk "github.com/nevindra/tenk"

	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedRetriever wraps a tenk.Retriever with OTEL instrumentation.
type ObservedRetriever struct {
	inner tenk.Retriever
	inst  *Instruments
}

var _ tenk.Retriever = (*ObservedRetriever)(nil)

// WrapRetriever returns an instrumented retriever.
func WrapRetriever(inner tenk.Retriever, inst *Instruments) *ObservedRetriever {
	return &ObservedRetriever{inner: inner, inst: inst}
}

func (o *ObservedRetriever) Retrieve(ctx context.Context, query string) ([]tenk.RetrievalResult, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "retrieval.retrieve", trace.WithAttributes(
		AttrQueryLength.Int(len(query)),
	))
	defer span.End()
	start := time.Now()

	results, err := o.inner.Retrieve(ctx, query)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(AttrResultCount.Int(len(results)))

	o.inst.RetrieveRequests.Add(ctx, 1, metric.WithAttributes(
		AttrRetrievalStatus.String(status),
	))
	o.inst.RetrieveDuration.Record(ctx, durationMs)
	o.inst.RetrieveResults.Record(ctx, int64(len(results)))

	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("retrieval completed"))
	rec.AddAttributes(
		otellog.Int("retrieval.query_length", len(query)),
		otellog.Int("retrieval.result_count", len(results)),
		otellog.Float64("duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return results, err
}
