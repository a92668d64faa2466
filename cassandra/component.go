package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/cassandrastore/component"
	"github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/resilience"
)

// Component wraps Client and implements component.Component for lifecycle management.
type Component struct {
	client  *Client
	cfg     Config
	log     *logger.Logger
	unbound bool
}

// NewComponent creates a Cassandra component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("cassandra"),
	}
}

// NewSchemaComponent creates a component whose session is not bound to the
// configured keyspace, for creating the keyspace itself.
func NewSchemaComponent(cfg Config, log *logger.Logger) *Component {
	c := NewComponent(cfg, log)
	c.unbound = true
	return c
}

// Client returns the underlying *Client, or nil if not started.
func (c *Component) Client() *Client {
	return c.client
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "cassandra" }

// Start opens the session and verifies connectivity, retrying transient
// failures under cfg.Connect.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	open := New
	if c.unbound {
		open = NewUnbound
	}

	policy := c.cfg.Connect
	policy.RetryIf = connectRetryable
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.log.Warn("Cassandra connect failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
			"reason":  Reason(err),
			"error":   err.Error(),
		})
	}

	var version string
	client, err := resilience.Retry(ctx, policy, func(ctx context.Context) (*Client, error) {
		client, err := open(c.cfg, c.log)
		if err != nil {
			return nil, err
		}
		if version, err = client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	})
	if err != nil {
		return fmt.Errorf("cassandra start: %w", err)
	}

	c.client = client
	c.log.Info("Cassandra component started", map[string]interface{}{
		"release_version": version,
	})
	return nil
}

// connectRetryable retries session and ping failures the driver marks as
// transient. Configuration errors are returned at once.
func connectRetryable(err error) bool {
	appErr, ok := errors.AsAppError(err)
	if !ok || !appErr.Retryable {
		return false
	}
	return IsRetryable(err)
}

// Stop closes the session.
func (c *Component) Stop(_ context.Context) error {
	if c.client == nil {
		return nil
	}
	c.log.Info("Cassandra component stopping")
	return c.client.Close()
}

// Health pings the cluster.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.client == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "cassandra not initialized",
		}
	}

	if _, err := c.client.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns infrastructure summary info for the CLI.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Cassandra",
		Type:    "database",
		Details: c.cfg.Summary(),
	}
}
