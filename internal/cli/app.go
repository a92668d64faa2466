package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/codec"
	"github.com/kbukum/cassandrastore/component"
	"github.com/kbukum/cassandrastore/config"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/metadata"
	"github.com/kbukum/cassandrastore/observability"
	"github.com/kbukum/cassandrastore/session"
)

const (
	serviceName       = "cassandrastore"
	sessionComponent  = "session-store"
	metadataComponent = "metadata-store"
)

// Backend is what the commands need from a cluster connection.
type Backend interface {
	cassandra.Executor
	cassandra.SchemaApplier
	Ping(ctx context.Context) (string, error)
}

// Connection is a lifecycle-managed Backend.
type Connection interface {
	component.Component
	Backend() Backend
}

// Connector builds a connection. unbound connections are not tied to the
// configured keyspace.
type Connector func(cfg cassandra.Config, log *logger.Logger, unbound bool) Connection

// ConnectCassandra is the gocql-backed Connector.
func ConnectCassandra(cfg cassandra.Config, log *logger.Logger, unbound bool) Connection {
	if unbound {
		return cassandraConnection{cassandra.NewSchemaComponent(cfg, log)}
	}
	return cassandraConnection{cassandra.NewComponent(cfg, log)}
}

type cassandraConnection struct {
	*cassandra.Component
}

func (c cassandraConnection) Backend() Backend {
	if client := c.Client(); client != nil {
		return client
	}
	return nil
}

// app is the runtime shared by the commands of one invocation.
type app struct {
	cfg      config.ServiceConfig
	log      *logger.Logger
	registry *component.Registry
	conn     Connection
	out      *output
	shutdown observability.ShutdownFunc
}

func loadConfig(opts *RootOptions) (config.ServiceConfig, error) {
	var cfg config.ServiceConfig
	loaderOpts := []config.LoaderOption{config.WithEnvPrefix("CASSANDRASTORE")}
	if opts.ConfigFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.ConfigFile))
	}
	if opts.EnvFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.EnvFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, loaderOpts...); err != nil {
		return cfg, err
	}

	cfg.Cassandra.Enabled = true
	if len(opts.Hosts) > 0 {
		cfg.Cassandra.Hosts = opts.Hosts
	}
	if opts.Keyspace != "" {
		cfg.Cassandra.Keyspace = opts.Keyspace
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// start loads configuration, opens the connection and returns the runtime.
// The caller must call stop.
func start(cmd *cobra.Command, opts *RootOptions, unbound bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, cmd.ErrOrStderr())
	logger.SetGlobalLogger(log)
	logger.RegisterDefaults(sessionComponent, metadataComponent)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := observability.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		registry: component.NewRegistry(log),
		conn:     opts.Connect(cfg.Cassandra, log, unbound),
		out:      newOutput(opts.Format, cmd.OutOrStdout()),
		shutdown: shutdown,
	}
	if err := a.registry.Register(a.conn); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if err := a.registry.StartAll(ctx); err != nil {
		a.stop(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) stop(ctx context.Context) {
	if err := a.registry.StopAll(ctx); err != nil {
		a.log.Warn("Stopping components failed", logger.ErrorFields("stop", err))
	}
	if err := a.shutdown(ctx); err != nil {
		a.log.Warn("Telemetry shutdown failed", logger.ErrorFields("telemetry.shutdown", err))
	}
}

func (a *app) sessions() *session.Store {
	opts := []session.Option{
		session.WithConsistency(a.cfg.Session.Consistency),
		session.WithInstrumenter(observability.NewInstrumenter(sessionComponent, nil, nil)),
	}
	if a.cfg.Session.LegacyFalseIsAbsent {
		opts = append(opts, session.WithCodec(codec.New(codec.WithLegacyFalseAsAbsent())))
	}
	return session.New(a.conn.Backend(), opts...)
}

// metadata builds the metadata store, filling its cache first when
// metadata.preload_on_start is set.
func (a *app) metadata(ctx context.Context) (*metadata.Store, error) {
	store := metadata.New(a.conn.Backend(),
		metadata.WithFeed(a.cfg.Metadata.Feed),
		metadata.WithConsistency(a.cfg.Metadata.Consistency),
		metadata.WithInstrumenter(observability.NewInstrumenter(metadataComponent, nil, nil)),
	)
	if a.cfg.Metadata.PreloadOnStart {
		if err := store.Preload(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// run wraps a command body with start and stop.
func run(opts *RootOptions, unbound bool, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := start(cmd, opts, unbound)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer a.stop(ctx)
		return fn(ctx, a, args)
	}
}
