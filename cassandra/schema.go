package cassandra

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Column is one column of a table definition.
type Column struct {
	Name string
	Type string
}

// Table describes a table the stores depend on. The primary key is
// (PartitionKey, ClusteringKey).
type Table struct {
	Name          string
	PartitionKey  string
	ClusteringKey string
	Columns       []Column
}

// SessionTable holds session and application key-value records.
var SessionTable = Table{
	Name:          "session",
	PartitionKey:  "type",
	ClusteringKey: "key",
	Columns: []Column{
		{"type", "text"},
		{"key", "text"},
		{"value", "text"},
	},
}

// EntitiesTable holds federation metadata, one row per (feed, entity).
var EntitiesTable = Table{
	Name:          "entities",
	PartitionKey:  "feed",
	ClusteringKey: "entityid",
	Columns: []Column{
		{"feed", "text"},
		{"entityid", "text"},
		{"enabled", "boolean"},
		{"verification", "text"},
		{"metadata", "text"},
		{"uimeta", "text"},
		{"reg", "text"},
		{"logo", "blob"},
		{"logo_updated", "timestamp"},
		{"logo_etag", "text"},
		{"created", "timestamp"},
		{"updated", "timestamp"},
	},
}

// Tables lists every table in creation order.
var Tables = []Table{SessionTable, EntitiesTable}

// Replication is the keyspace replication strategy.
type Replication struct {
	// Class is SimpleStrategy or NetworkTopologyStrategy.
	Class string `yaml:"class" mapstructure:"class"`
	// Factor is the replication factor for SimpleStrategy.
	Factor int `yaml:"factor" mapstructure:"factor"`
	// DataCenters maps datacenter name to replication factor for NetworkTopologyStrategy.
	DataCenters map[string]int `yaml:"datacenters" mapstructure:"datacenters"`
}

// CQL renders the replication map.
func (r Replication) CQL() string {
	if len(r.DataCenters) > 0 {
		dcs := make([]string, 0, len(r.DataCenters))
		for dc := range r.DataCenters {
			dcs = append(dcs, dc)
		}
		sort.Strings(dcs)
		parts := []string{"'class': 'NetworkTopologyStrategy'"}
		for _, dc := range dcs {
			parts = append(parts, fmt.Sprintf("'%s': %d", dc, r.DataCenters[dc]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	factor := r.Factor
	if factor <= 0 {
		factor = 1
	}
	return fmt.Sprintf("{'class': 'SimpleStrategy', 'replication_factor': %d}", factor)
}

// CreateTable renders the CREATE TABLE statement for t in keyspace.
func (t Table) CreateTable(keyspace string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s.%s (", keyspace, t.Name)
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "%s %s, ", c.Name, c.Type)
	}
	fmt.Fprintf(&b, "PRIMARY KEY (%s, %s))", t.PartitionKey, t.ClusteringKey)
	return b.String()
}

// KeyColumns returns the primary key columns in order.
func (t Table) KeyColumns() []string {
	return []string{t.PartitionKey, t.ClusteringKey}
}

// Schema returns the DDL creating the keyspace and every table.
func Schema(keyspace string, replication Replication) []string {
	ddl := []string{
		fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH replication = %s", keyspace, replication.CQL()),
	}
	for _, t := range Tables {
		ddl = append(ddl, t.CreateTable(keyspace))
	}
	return ddl
}

// ApplySchema runs the DDL from Schema in order and stops at the first failure.
func ApplySchema(ctx context.Context, a SchemaApplier, keyspace string, replication Replication) error {
	for _, ddl := range Schema(keyspace, replication) {
		if err := a.ApplyDDL(ctx, ddl); err != nil {
			return FromCassandra("schema.apply", ddl, err)
		}
	}
	return nil
}
