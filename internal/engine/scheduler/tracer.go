package scheduler

import (
	"context"
	"io"

	"go.trai.ch/ecow/internal/core/ports"
)

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

func (noopTracer) EmitPlan(context.Context, []string, string) {}

// noopSpan discards action output.
type noopSpan struct{}

func (noopSpan) Write(p []byte) (int, error) { return io.Discard.Write(p) }
func (noopSpan) End()                        {}
func (noopSpan) RecordError(error)           {}
func (noopSpan) SetAttribute(string, any)    {}
