package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "planner"

// Span pairs an OTel span with the log fields of the work it covers, so a
// trace and the log lines written under it carry the same session, plan and
// phase.
type Span struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan starts a child span and merges fields into its context. The
// merged fields become span attributes.
//
//	span := logger.StartSpan(ctx, "service.planning.generate_plans", logger.LogFields{SessionID: &id})
//	defer span.End()
//	ctx = span.Context()
func StartSpan(ctx context.Context, name string, fields LogFields) *Span {
	ctx = WithLogFields(ctx, fields)
	ctx, span := otel.Tracer(tracerName).Start(ctx, name,
		trace.WithAttributes(spanAttributes(GetLogFields(ctx))...))
	return &Span{ctx: ctx, span: span}
}

func (s *Span) Context() context.Context {
	return s.ctx
}

// Annotate adds fields learned after the span started, the session phase
// usually, and returns the updated context.
func (s *Span) Annotate(fields LogFields) context.Context {
	s.ctx = WithLogFields(s.ctx, fields)
	s.span.SetAttributes(spanAttributes(fields)...)
	return s.ctx
}

// Fail records err on the span and marks it failed. A nil err is ignored.
func (s *Span) Fail(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *Span) End() {
	s.span.End()
}

func (s *Span) TraceID() string {
	return s.span.SpanContext().TraceID().String()
}

func spanAttributes(f LogFields) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if f.SessionID != nil {
		attrs = append(attrs, attribute.Int64("planner.session_id", *f.SessionID))
	}
	if f.EvaluationID != nil {
		attrs = append(attrs, attribute.Int64("planner.evaluation_id", *f.EvaluationID))
	}
	if f.PlanID != nil {
		attrs = append(attrs, attribute.String("planner.plan_id", *f.PlanID))
	}
	if f.Phase != nil {
		attrs = append(attrs, attribute.String("planner.phase", *f.Phase))
	}
	if f.Component != "" {
		attrs = append(attrs, attribute.String("planner.component", f.Component))
	}
	return attrs
}
