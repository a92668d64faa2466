package component

import "context"

// HealthStatus is the state a component reports from Health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is the result of one health probe.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// OK reports whether the component can serve requests. Degraded counts.
func (h Health) OK() bool {
	return h.Status == StatusHealthy || h.Status == StatusDegraded
}

// Component is something the registry starts, probes and stops: the
// cluster session, or its in-memory stand-in in tests.
type Component interface {
	Name() string

	// Start opens connections. A failed Start leaves nothing to Stop.
	Start(ctx context.Context) error

	// Stop releases resources. Calling Stop twice is not an error.
	Stop(ctx context.Context) error

	Health(ctx context.Context) Health
}

// Description is the summary the CLI prints for a component.
type Description struct {
	// Name is the display name. If empty, Name() is used.
	Name string `json:"name"`
	// Type categorizes the component, e.g. "database".
	Type string `json:"type"`
	// Details is a one-liner such as "10.0.0.1,10.0.0.2 keyspace=saml consistency=QUORUM".
	Details string `json:"details"`
}

// Describable is implemented by components that can report their own
// configuration.
type Describable interface {
	Describe() Description
}
