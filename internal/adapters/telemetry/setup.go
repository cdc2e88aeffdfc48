package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/ecow/internal/core/ports"
)

// InstrumentationName is the name unit spans are recorded under.
const InstrumentationName = "ecow"

// Setup installs a global tracer provider whose spans are bridged to renderer
// and returns a tracer streaming unit output to it. The returned function
// shuts the provider down.
func Setup(renderer ports.Renderer) (*OTelTracer, func(context.Context) error) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
	otel.SetTracerProvider(tp)

	tracer := &OTelTracer{tracer: tp.Tracer(InstrumentationName)}
	return tracer.WithRenderer(renderer), tp.Shutdown
}
