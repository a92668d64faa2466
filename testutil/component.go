package testutil

import (
	"context"

	"github.com/kbukum/cassandrastore/component"
)

// TestComponent is a component whose stored state tests can wipe, capture
// and roll back, such as the in-memory cluster.
type TestComponent interface {
	component.Component

	// Reset returns the component to its empty state.
	Reset(ctx context.Context) error

	// Snapshot captures the stored rows. The value is only meaningful to
	// Restore on the same component.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore replaces the stored rows with a Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
