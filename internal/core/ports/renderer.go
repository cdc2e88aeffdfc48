package ports

import (
	"context"
	"time"

	"go.trai.ch/ecow/internal/core/domain"
)

// Renderer presents build progress.
// It is fed from telemetry spans, decoupling what happens during a build from how it is shown.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes any buffered output.
	Stop() error

	// OnPlanEmit is called once the scheduler has planned the units of a build.
	// units are full unit paths in dependency order.
	OnPlanEmit(units []string, target string)

	// OnUnitStart is called when a unit's span starts.
	OnUnitStart(spanID, parentID, name string, startTime time.Time)

	// OnUnitLog receives raw output of a unit's action, possibly partial lines.
	OnUnitLog(spanID string, data []byte)

	// OnUnitComplete is called when a unit's span ends.
	// status is the unit's final status; err is non-nil for failed units.
	OnUnitComplete(spanID string, endTime time.Time, status string, err error)

	// OnSummary prints the final status of every unit of the build.
	OnSummary(report *domain.Report)
}
