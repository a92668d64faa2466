// Package config loads the service configuration.
//
// Values come from a YAML file, then a .env file, then the process
// environment, later sources winning. Environment variables carry a prefix
// and use underscores for nesting:
//
//	CASSANDRASTORE_CASSANDRA_HOSTS=10.0.0.1,10.0.0.2
//	CASSANDRASTORE_CASSANDRA_LOCAL_DC=dc1
//	CASSANDRASTORE_METADATA_FEED=edugain
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("cassandrastore", &cfg, config.WithEnvPrefix("CASSANDRASTORE")); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
