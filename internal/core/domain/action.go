package domain

import (
	"context"
	"io"
)

// Action is the build action attached to a unit.
// It is supplied by the integration that assembles the graph and is opaque to the scheduler.
type Action interface {
	// Signature describes what Run does. It is part of the unit's fingerprint,
	// so changing the command line invalidates previous builds.
	Signature() string

	// Inputs returns the declared input patterns, relative to the graph base directory.
	Inputs() []string

	// Outputs returns the artifacts produced by Run, relative to the graph base directory.
	// They are removed by clean.
	Outputs() []string

	// Run performs the action. It must honor ctx cancellation.
	Run(ctx context.Context, stdout, stderr io.Writer) error
}

// Command is the declarative description of a shell build action.
type Command struct {
	Argv        []string
	Environment map[string]string
	WorkingDir  string
	Inputs      []string
	Outputs     []string
}
