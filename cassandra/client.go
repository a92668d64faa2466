package cassandra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
)

// Client wraps a gocql session. The session is opened once in New and shared
// by every caller; it is safe for concurrent use.
type Client struct {
	session *gocql.Session
	log     *logger.Logger
	cfg     Config
	closed  bool
	mu      sync.Mutex
}

var (
	_ Executor      = (*Client)(nil)
	_ SchemaApplier = (*Client)(nil)
)

// New validates cfg and opens a session bound to cfg.Keyspace.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	return open(cfg, log, true)
}

// NewUnbound opens a session that is not bound to any keyspace. It is used to
// create the keyspace itself; statements must qualify table names.
func NewUnbound(cfg Config, log *logger.Logger) (*Client, error) {
	return open(cfg, log, false)
}

func open(cfg Config, log *logger.Logger, bindKeyspace bool) (*Client, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		return nil, fmt.Errorf("cassandra is disabled")
	}

	cluster, err := newClusterConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !bindKeyspace {
		cluster.Keyspace = ""
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.ConnectionFailed(fmt.Sprint(cfg.Hosts), err)
	}

	log.Info("Cassandra session opened", map[string]interface{}{
		logger.FieldHosts:       cfg.Hosts,
		logger.FieldKeyspace:    cfg.Keyspace,
		logger.FieldConsistency: cfg.Consistency.String(),
		"tls":                   cfg.TLS.IsEnabled(),
	})

	return &Client{session: session, log: log, cfg: cfg}, nil
}

func newClusterConfig(cfg Config) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Port = cfg.Port
	cluster.Consistency = cfg.Consistency.driver()
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.NumConns = cfg.NumConns
	if cfg.ProtoVersion > 0 {
		cluster.ProtoVersion = cfg.ProtoVersion
	}
	// Failures surface to the caller, who decides whether to retry.
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 0}

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.LocalDC != "" {
		cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(
			gocql.DCAwareRoundRobinPolicy(cfg.LocalDC),
		)
	}

	if cfg.TLS.IsEnabled() {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, fmt.Errorf("cassandra tls: %w", err)
		}
		cluster.SslOpts = &gocql.SslOptions{
			Config:                 tlsCfg,
			EnableHostVerification: !cfg.TLS.SkipVerify,
		}
	}

	return cluster, nil
}

// Execute runs stmt with args. Selects return every row; other kinds return nil.
// The statement's consistency wins over the session default.
func (c *Client) Execute(ctx context.Context, stmt Statement, args ...any) ([]Row, error) {
	if len(args) != stmt.Arity() {
		return nil, errors.Internal(fmt.Errorf("statement %q expects %d arguments, got %d", stmt.CQL(), stmt.Arity(), len(args)))
	}

	q := c.session.Query(stmt.CQL(), args...).WithContext(ctx)
	if stmt.Consistency != "" {
		q = q.Consistency(stmt.Consistency.driver())
	}

	if stmt.Kind != KindSelect {
		return nil, q.Exec()
	}

	iter := q.Iter()
	var rows []Row
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, Row(row))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplyDDL runs one schema statement.
func (c *Client) ApplyDDL(ctx context.Context, ddl string) error {
	c.log.Debug("Applying schema statement", map[string]interface{}{
		logger.FieldStatement: ddl,
	})
	return c.session.Query(ddl).WithContext(ctx).Exec()
}

// Ping reads the server version from system.local.
func (c *Client) Ping(ctx context.Context) (string, error) {
	start := time.Now()
	var version string
	err := c.session.Query("SELECT release_version FROM system.local").
		WithContext(ctx).
		Consistency(gocql.One).
		Scan(&version)
	if err != nil {
		return "", FromCassandra("ping", "SELECT release_version FROM system.local", err)
	}
	c.log.Debug("Cassandra ping", logger.DurationFields("ping", time.Since(start)))
	return version, nil
}

// Keyspace returns the keyspace the session is bound to.
func (c *Client) Keyspace() string { return c.cfg.Keyspace }

// Close releases the session. Calling Close twice is not an error.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.session.Close()
	c.log.Info("Cassandra session closed")
	return nil
}
