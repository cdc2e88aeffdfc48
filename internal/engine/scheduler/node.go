package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ecow/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ecow/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ecow/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ecow/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			fs.HasherNodeID,
			fs.ResolverNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(store, hasher, resolver, log), nil
		},
	})
}
