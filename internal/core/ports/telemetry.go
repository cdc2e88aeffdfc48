package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// AttrUnitStatus is the span attribute carrying a unit's final status.
const AttrUnitStatus = "ecow.status"

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals which units are planned, in dependency order, for the target.
	EmitPlan(ctx context.Context, units []string, target string)
}

// Span represents a unit of work.
// Writes to the span are the output of the unit's build action.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Kind is the unit kind the span belongs to.
	Kind string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithUnitKind records the kind of the unit the span belongs to.
func WithUnitKind(kind string) SpanOption {
	return func(c *SpanConfig) {
		c.Kind = kind
	}
}
