package observer

import (
	"context"
	"time"

	tenk "github.com/nevindra/tenk"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedEmbedding wraps a tenk.EmbeddingProvider with OTEL instrumentation.
type ObservedEmbedding struct {
	inner tenk.EmbeddingProvider
	inst  *Instruments
	model string
}

var _ tenk.EmbeddingProvider = (*ObservedEmbedding)(nil)

// WrapEmbedding returns an instrumented embedding provider.
func WrapEmbedding(inner tenk.EmbeddingProvider, model string, inst *Instruments) *ObservedEmbedding {
	return &ObservedEmbedding{inner: inner, inst: inst, model: model}
}

func (o *ObservedEmbedding) Name() string    { return o.inner.Name() }
func (o *ObservedEmbedding) Dimensions() int { return o.inner.Dimensions() }

func (o *ObservedEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "embedding.embed", trace.WithAttributes(
		AttrEmbedModel.String(o.model),
		AttrEmbedProvider.String(o.inner.Name()),
		AttrEmbedTextCount.Int(len(texts)),
		AttrEmbedDimensions.Int(o.inner.Dimensions()),
	))
	defer span.End()
	start := time.Now()

	result, err := o.inner.Embed(ctx, texts)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	o.inst.EmbedRequests.Add(ctx, 1, metric.WithAttributes(
		AttrEmbedModel.String(o.model),
		AttrEmbedProvider.String(o.inner.Name()),
		attribute.String("status", status),
	))
	o.inst.EmbedDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrEmbedModel.String(o.model),
		AttrEmbedProvider.String(o.inner.Name()),
	))

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("embedding completed"))
	rec.AddAttributes(
		otellog.String("embedding.model", o.model),
		otellog.String("embedding.provider", o.inner.Name()),
		otellog.Int("embedding.text_count", len(texts)),
		otellog.Float64("duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return result, err
}
