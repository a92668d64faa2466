package cassandra

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/cassandrastore/resilience"
	"github.com/kbukum/cassandrastore/security"
	"github.com/kbukum/cassandrastore/validation"
)

// Config holds the cluster connection configuration.
type Config struct {
	// Enabled controls whether the Cassandra component is active.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Hosts lists contact points as host or host:port.
	Hosts []string `yaml:"hosts" mapstructure:"hosts" validate:"required,min=1,dive,hostport"`

	// Port is used for hosts given without a port.
	Port int `yaml:"port" mapstructure:"port" validate:"gt=0,lt=65536"`

	// Keyspace every statement runs against.
	Keyspace string `yaml:"keyspace" mapstructure:"keyspace" validate:"required"`

	// Username and Password enable password authentication when Username is set.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// TLS configures the client side of the connection.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Consistency is the session default, used by statements that do not
	// set their own level.
	Consistency Consistency `yaml:"consistency" mapstructure:"consistency"`

	// ConnectTimeout bounds the initial connection to each host.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gt=0"`

	// Timeout bounds each query round trip.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// NumConns is the number of connections per host.
	NumConns int `yaml:"num_conns" mapstructure:"num_conns" validate:"gte=1"`

	// ProtoVersion pins the native protocol version. 0 lets the driver negotiate.
	ProtoVersion int `yaml:"proto_version" mapstructure:"proto_version" validate:"gte=0,lte=5"`

	// LocalDC routes queries to one datacenter first when set.
	LocalDC string `yaml:"local_dc" mapstructure:"local_dc"`

	// Connect retries opening the session at startup. Queries never retry.
	Connect resilience.Policy `yaml:"connect" mapstructure:"connect"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 9042
	}
	if c.Consistency == "" {
		c.Consistency = LocalQuorum
	}
	c.Consistency = Consistency(strings.ToUpper(string(c.Consistency)))
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	if c.NumConns == 0 {
		c.NumConns = 2
	}
	if c.Connect.Attempts == 0 {
		c.Connect.Attempts = 3
	}
	c.Connect.ApplyDefaults()
}

// Validate checks that required fields are present and consistent.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("cassandra config: %w", err)
	}
	if _, err := ParseConsistency(string(c.Consistency)); err != nil {
		return fmt.Errorf("cassandra config: %w", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("cassandra config: %w", err)
	}
	return nil
}

// Summary is a one-line description safe for logs; it never includes the password.
func (c *Config) Summary() string {
	s := fmt.Sprintf("%s keyspace=%s consistency=%s", strings.Join(c.Hosts, ","), c.Keyspace, c.Consistency)
	if c.TLS.IsEnabled() {
		s += " tls"
	}
	if c.LocalDC != "" {
		s += " dc=" + c.LocalDC
	}
	return s
}
