package goHash

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/MrEthical07/goHash"

const (
	spanHash   = "goHash.Hash"
	spanVerify = "goHash.Verify"
)

// Span attributes. Passwords, salts and digests are never recorded.
const (
	attrVariant     = attribute.Key("argon2.variant")
	attrMemory      = attribute.Key("argon2.memory_kib")
	attrTime        = attribute.Key("argon2.time")
	attrParallelism = attribute.Key("argon2.parallelism")
	attrMatch       = attribute.Key("goHash.match")
)

func (e *Engine) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := e.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
}

func costAttributes(variant string, memory, passes, parallelism uint32) []attribute.KeyValue {
	return []attribute.KeyValue{
		attrVariant.String(variant),
		attrMemory.Int64(int64(memory)),
		attrTime.Int64(int64(passes)),
		attrParallelism.Int64(int64(parallelism)),
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
