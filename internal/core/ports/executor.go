// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/ecow/internal/core/domain"
)

// Executor runs shell commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd, streaming its output to stdout and stderr.
	// It returns an error if the command cannot be started or exits unsuccessfully.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error
}

// ActionFactory turns declarative commands into build actions.
type ActionFactory interface {
	NewAction(cmd domain.Command) domain.Action
}
