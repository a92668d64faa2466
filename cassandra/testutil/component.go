package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/component"
	"github.com/kbukum/cassandrastore/testutil"
)

// Component is a test Cassandra component backed by an in-memory Cluster.
// It implements both component.Component and testutil.TestComponent.
type Component struct {
	cluster *Cluster
	started bool
	mu      sync.RWMutex
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a new in-memory Cassandra test component.
func NewComponent(opts ...Option) *Component {
	return &Component{cluster: NewCluster(opts...)}
}

// Cluster returns the in-memory cluster. It is usable before Start so tests
// can configure clocks and failures up front.
func (c *Component) Cluster() *Cluster {
	return c.cluster
}

// Executor returns the cluster as a cassandra.Executor, or nil if not started.
func (c *Component) Executor() cassandra.Executor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return nil
	}
	return c.cluster
}

// Name returns the component name.
func (c *Component) Name() string { return "cassandra-test" }

// Start marks the component as running.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}
	c.started = true
	return nil
}

// Stop marks the component as stopped. Data is kept.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	return nil
}

// Health returns the health status.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "not started",
		}
	}
	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Reset drops all data and recorded statements.
func (c *Component) Reset(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.cluster.Reset()
	return nil
}

// Snapshot captures the stored data.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return nil, fmt.Errorf("component not started")
	}
	return c.cluster.Snapshot(), nil
}

// Restore returns the stored data to a previously captured snapshot.
func (c *Component) Restore(_ context.Context, snap interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	return c.cluster.Restore(snap)
}
