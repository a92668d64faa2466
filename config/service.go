package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/metadata"
	"github.com/kbukum/cassandrastore/observability"
)

// ServiceConfig is the configuration of a process using the stores.
type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging     logger.Config         `yaml:"logging" mapstructure:"logging"`
	Cassandra   cassandra.Config      `yaml:"cassandra" mapstructure:"cassandra"`
	Replication cassandra.Replication `yaml:"replication" mapstructure:"replication"`
	Session     SessionConfig         `yaml:"session" mapstructure:"session"`
	Metadata    MetadataConfig        `yaml:"metadata" mapstructure:"metadata"`
	Telemetry   observability.Config  `yaml:"telemetry" mapstructure:"telemetry"`
}

// SessionConfig configures the session store.
type SessionConfig struct {
	// LegacyFalseIsAbsent makes a stored false read back as absent, as the
	// previous implementation did.
	LegacyFalseIsAbsent bool `yaml:"legacy_false_is_absent" mapstructure:"legacy_false_is_absent"`
	// Consistency overrides QUORUM for session statements.
	Consistency cassandra.Consistency `yaml:"consistency" mapstructure:"consistency"`
}

// MetadataConfig configures the metadata store.
type MetadataConfig struct {
	// Feed backs the saml20-idp-remote set.
	Feed string `yaml:"feed" mapstructure:"feed"`
	// PreloadOnStart fills the metadata set cache before serving.
	PreloadOnStart bool `yaml:"preload_on_start" mapstructure:"preload_on_start"`
	// Consistency overrides QUORUM for metadata statements.
	Consistency cassandra.Consistency `yaml:"consistency" mapstructure:"consistency"`
}

var environments = []string{"development", "staging", "production"}

// ApplyDefaults fills unset fields of every section.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "cassandrastore"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Cassandra.ApplyDefaults()
	if c.Session.Consistency == "" {
		c.Session.Consistency = cassandra.Quorum
	}
	if c.Metadata.Feed == "" {
		c.Metadata.Feed = metadata.DefaultFeed
	}
	if c.Metadata.Consistency == "" {
		c.Metadata.Consistency = cassandra.Quorum
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	if c.Telemetry.ServiceVersion == "" && c.Version != "" {
		c.Telemetry.ServiceVersion = c.Version
	}
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section. Call ApplyDefaults first.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Cassandra.Validate(); err != nil {
		return err
	}
	if _, err := cassandra.ParseConsistency(string(c.Session.Consistency)); err != nil {
		return fmt.Errorf("config.session: %w", err)
	}
	if _, err := cassandra.ParseConsistency(string(c.Metadata.Consistency)); err != nil {
		return fmt.Errorf("config.metadata: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}
