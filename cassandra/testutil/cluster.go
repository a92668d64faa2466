package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/cassandrastore/cassandra"
)

// Executed is one statement seen by the Cluster.
type Executed struct {
	Statement cassandra.Statement
	Args      []any
}

type cell struct {
	value   any
	expires time.Time
}

type storedRow struct {
	cells map[string]cell
	// marker is the row liveness written by INSERT; it carries the TTL of
	// the insert that wrote it.
	marker  bool
	expires time.Time
}

// partition maps clustering key to row.
type partition map[string]*storedRow

type table map[string]partition

// Cluster is an in-memory stand-in for a Cassandra cluster. It is safe for
// concurrent use.
type Cluster struct {
	mu       sync.Mutex
	now      func() time.Time
	schema   map[string]cassandra.Table
	tables   map[string]table
	executed []Executed
	ddl      []string
	failNext []error
	failAll  error
	hook     func(ctx context.Context, stmt cassandra.Statement)
}

var (
	_ cassandra.Executor      = (*Cluster)(nil)
	_ cassandra.SchemaApplier = (*Cluster)(nil)
)

// Option configures a Cluster.
type Option func(*Cluster)

// WithNow sets the clock used for TTL expiry.
func WithNow(now func() time.Time) Option {
	return func(c *Cluster) { c.now = now }
}

// WithTables replaces the known tables. The default is cassandra.Tables.
func WithTables(tables ...cassandra.Table) Option {
	return func(c *Cluster) {
		c.schema = make(map[string]cassandra.Table, len(tables))
		for _, t := range tables {
			c.schema[t.Name] = t
		}
	}
}

// NewCluster creates an empty in-memory cluster.
func NewCluster(opts ...Option) *Cluster {
	c := &Cluster{now: time.Now}
	WithTables(cassandra.Tables...)(c)
	for _, opt := range opts {
		opt(c)
	}
	c.tables = make(map[string]table)
	return c
}

// SetNow replaces the clock.
func (c *Cluster) SetNow(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// FailNext makes the next Execute return err without touching data.
// Calls queue up: n calls fail the next n statements.
func (c *Cluster) FailNext(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext = append(c.failNext, err)
}

// FailAll makes every Execute return err until called again with nil.
func (c *Cluster) FailAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAll = err
}

// OnExecute installs a hook called before each statement runs, outside the
// cluster lock. It lets tests block or count concurrent callers.
func (c *Cluster) OnExecute(hook func(ctx context.Context, stmt cassandra.Statement)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = hook
}

// Statements returns a copy of every statement executed so far.
func (c *Cluster) Statements() []Executed {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Executed, len(c.executed))
	copy(out, c.executed)
	return out
}

// StatementCount returns how many executed statements have the given CQL text.
func (c *Cluster) StatementCount(cql string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.executed {
		if e.Statement.CQL() == cql {
			n++
		}
	}
	return n
}

// DDL returns the schema statements applied so far.
func (c *Cluster) DDL() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ddl...)
}

// ApplyDDL records the statement. Tables are fixed by WithTables.
func (c *Cluster) ApplyDDL(ctx context.Context, ddl string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.takeFailure(); err != nil {
		return err
	}
	c.ddl = append(c.ddl, ddl)
	return nil
}

// Execute runs stmt against the in-memory tables.
func (c *Cluster) Execute(ctx context.Context, stmt cassandra.Statement, args ...any) ([]cassandra.Row, error) {
	c.mu.Lock()
	hook := c.hook
	c.mu.Unlock()
	if hook != nil {
		hook(ctx, stmt)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.executed = append(c.executed, Executed{Statement: stmt, Args: append([]any(nil), args...)})
	if err := c.takeFailure(); err != nil {
		return nil, err
	}
	if len(args) != stmt.Arity() {
		return nil, fmt.Errorf("invalid query: %q expects %d arguments, got %d", stmt.CQL(), stmt.Arity(), len(args))
	}
	def, ok := c.schema[stmt.Table]
	if !ok {
		return nil, fmt.Errorf("unconfigured table %s", stmt.Table)
	}

	switch stmt.Kind {
	case cassandra.KindSelect:
		return c.selectRows(def, stmt, args)
	case cassandra.KindUpsert:
		return nil, c.upsert(def, stmt, args)
	case cassandra.KindDelete:
		return nil, c.delete(def, stmt, args)
	default:
		return nil, fmt.Errorf("unsupported statement kind %v", stmt.Kind)
	}
}

func (c *Cluster) takeFailure() error {
	if len(c.failNext) > 0 {
		err := c.failNext[0]
		c.failNext = c.failNext[1:]
		return err
	}
	return c.failAll
}

func (c *Cluster) upsert(def cassandra.Table, stmt cassandra.Statement, args []any) error {
	values := make(map[string]any, len(stmt.Columns))
	for i, col := range stmt.Columns {
		values[col] = args[i]
	}
	pk, pok := values[def.PartitionKey]
	ck, cok := values[def.ClusteringKey]
	if !pok || !cok || pk == nil || ck == nil {
		return fmt.Errorf("invalid query: missing primary key for %s", def.Name)
	}

	var expires time.Time
	if stmt.WithTTL {
		ttl, err := toSeconds(args[len(args)-1])
		if err != nil {
			return err
		}
		if ttl < 0 {
			return fmt.Errorf("invalid query: TTL %d must be non-negative", ttl)
		}
		if ttl > 0 {
			expires = c.now().Add(time.Duration(ttl) * time.Second)
		}
	}

	t := c.tables[def.Name]
	if t == nil {
		t = make(table)
		c.tables[def.Name] = t
	}
	p := t[keyString(pk)]
	if p == nil {
		p = make(partition)
		t[keyString(pk)] = p
	}
	r := p[keyString(ck)]
	if r == nil {
		r = &storedRow{cells: make(map[string]cell)}
		p[keyString(ck)] = r
	}
	r.marker = true
	r.expires = expires
	for col, v := range values {
		if col == def.PartitionKey || col == def.ClusteringKey {
			continue
		}
		if v == nil {
			delete(r.cells, col)
			continue
		}
		r.cells[col] = cell{value: copyValue(v), expires: expires}
	}
	return nil
}

func (c *Cluster) delete(def cassandra.Table, stmt cassandra.Statement, args []any) error {
	pred, err := predicates(def, stmt, args)
	if err != nil {
		return err
	}
	pk, ok := pred[def.PartitionKey]
	if !ok {
		return fmt.Errorf("invalid query: delete requires the partition key of %s", def.Name)
	}
	p := c.tables[def.Name][pk]
	if p == nil {
		return nil
	}
	if ck, ok := pred[def.ClusteringKey]; ok {
		delete(p, ck)
	} else {
		for k := range p {
			delete(p, k)
		}
	}
	return nil
}

func (c *Cluster) selectRows(def cassandra.Table, stmt cassandra.Statement, args []any) ([]cassandra.Row, error) {
	pred, err := predicates(def, stmt, args)
	if err != nil {
		return nil, err
	}
	if !stmt.AllowFiltering && !isKeyPrefix(def, stmt.Keys) {
		return nil, fmt.Errorf("invalid query: cannot execute this query as it might involve data filtering and thus may have unpredictable performance; use ALLOW FILTERING")
	}

	now := c.now()
	var rows []cassandra.Row
	partitionKeys := make([]string, 0)
	for pk := range c.tables[def.Name] {
		if want, ok := pred[def.PartitionKey]; ok && want != pk {
			continue
		}
		partitionKeys = append(partitionKeys, pk)
	}
	sort.Strings(partitionKeys)

	for _, pk := range partitionKeys {
		p := c.tables[def.Name][pk]
		clustering := make([]string, 0, len(p))
		for ck := range p {
			if want, ok := pred[def.ClusteringKey]; ok && want != ck {
				continue
			}
			clustering = append(clustering, ck)
		}
		sort.Strings(clustering)

		for _, ck := range clustering {
			r := p[ck]
			if !r.live(now) {
				continue
			}
			row := make(cassandra.Row, len(stmt.Columns))
			for _, col := range stmt.Columns {
				switch col {
				case def.PartitionKey:
					row[col] = pk
				case def.ClusteringKey:
					row[col] = ck
				default:
					if cl, ok := r.cells[col]; ok && cl.liveAt(now) {
						row[col] = copyValue(cl.value)
					} else {
						row[col] = nil
					}
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *storedRow) live(now time.Time) bool {
	if r.marker && (r.expires.IsZero() || now.Before(r.expires)) {
		return true
	}
	for _, cl := range r.cells {
		if cl.liveAt(now) {
			return true
		}
	}
	return false
}

func (cl cell) liveAt(now time.Time) bool {
	return cl.expires.IsZero() || now.Before(cl.expires)
}

func predicates(def cassandra.Table, stmt cassandra.Statement, args []any) (map[string]string, error) {
	pred := make(map[string]string, len(stmt.Keys))
	for i, k := range stmt.Keys {
		if k != def.PartitionKey && k != def.ClusteringKey {
			return nil, fmt.Errorf("invalid query: %s is not a primary key column of %s", k, def.Name)
		}
		if args[i] == nil {
			return nil, fmt.Errorf("invalid query: null value for key column %s", k)
		}
		pred[k] = keyString(args[i])
	}
	return pred, nil
}

func isKeyPrefix(def cassandra.Table, keys []string) bool {
	pk := def.KeyColumns()
	if len(keys) == 0 || len(keys) > len(pk) {
		return false
	}
	for i, k := range keys {
		if pk[i] != k {
			return false
		}
	}
	return true
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toSeconds(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("invalid query: TTL must be an integer, got %T", v)
	}
}

func copyValue(v any) any {
	if b, ok := v.([]byte); ok {
		return append([]byte(nil), b...)
	}
	return v
}

// Reset drops all data, recorded statements and injected failures.
func (c *Cluster) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[string]table)
	c.executed = nil
	c.ddl = nil
	c.failNext = nil
	c.failAll = nil
}

// snapshot is an opaque deep copy of the cluster data.
type snapshot map[string]table

// Snapshot returns a deep copy of the stored data.
func (c *Cluster) Snapshot() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTables(c.tables)
}

// Restore replaces the stored data with a value returned by Snapshot.
func (c *Cluster) Restore(snap interface{}) error {
	s, ok := snap.(snapshot)
	if !ok {
		return fmt.Errorf("invalid snapshot type: %T", snap)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = cloneTables(s)
	return nil
}

func cloneTables(src map[string]table) snapshot {
	dst := make(snapshot, len(src))
	for name, t := range src {
		nt := make(table, len(t))
		for pk, p := range t {
			np := make(partition, len(p))
			for ck, r := range p {
				nr := &storedRow{
					cells:   make(map[string]cell, len(r.cells)),
					marker:  r.marker,
					expires: r.expires,
				}
				for col, cl := range r.cells {
					nr.cells[col] = cell{value: copyValue(cl.value), expires: cl.expires}
				}
				np[ck] = nr
			}
			nt[pk] = np
		}
		dst[name] = nt
	}
	return dst
}

// Ping reports a fixed release version, or the pending injected failure.
func (c *Cluster) Ping(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.takeFailure(); err != nil {
		return "", err
	}
	return "in-memory", nil
}
