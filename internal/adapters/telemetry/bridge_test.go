package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/ecow/internal/adapters/telemetry"
	"go.trai.ch/ecow/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_OnStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	mockRenderer.EXPECT().OnUnitStart(gomock.Any(), "", "poc/poc", gomock.Any()).Times(1)
	mockRenderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockRenderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "poc/poc")
	span.End()
}

func TestBridge_OnStart_Parent(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	var parentID string
	mockRenderer.EXPECT().OnUnitStart(gomock.Any(), "", "build", gomock.Any()).
		Do(func(spanID, _, _ string, _ any) { parentID = spanID })
	mockRenderer.EXPECT().OnUnitStart(gomock.Any(), gomock.Any(), "poc", gomock.Any()).
		Do(func(_, parent, _ string, _ any) { assert.Equal(t, parentID, parent) })
	mockRenderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockRenderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, root := tp.Tracer("test").Start(context.Background(), "build")
	_, child := tp.Tracer("test").Start(ctx, "poc")
	child.End()
	root.End()
}

func TestBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	mockRenderer.EXPECT().OnUnitStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	mockRenderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), "up-to-date", nil).Times(1)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockRenderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "poc")
	span.SetAttributes(attribute.String(telemetry.AttrStatus, "up-to-date"))
	span.End()
}

func TestBridge_OnEndWithError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	mockRenderer.EXPECT().OnUnitStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	mockRenderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), "failed", gomock.Any()).
		Do(func(_ string, _ any, _ string, err error) {
			assert.EqualError(t, err, "build action failed")
		})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockRenderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "poc")
	span.SetAttributes(attribute.String(telemetry.AttrStatus, "failed"))
	span.SetStatus(codes.Error, "build action failed")
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "poc")
	span.End()
}
