// Package modules contains the dependency modules of the composition root.
package modules

import (
	"context"

	"github.com/riverqueue/river"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/handlers"
)

// Module represents a domain-specific dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// RegisterWorkers registers module workers into a shared River worker registry.
	RegisterWorkers(*river.Workers)

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}

// ServerDepsContributor is implemented by modules that own HTTP dependencies.
type ServerDepsContributor interface {
	ContributeServerDeps(*handlers.ServerDeps)
}

// PeriodicJobSource is implemented by modules that schedule River periodic jobs.
type PeriodicJobSource interface {
	PeriodicJobs() []*river.PeriodicJob
}

// Starter is implemented by modules with background work of their own.
type Starter interface {
	Start(context.Context) error
}
