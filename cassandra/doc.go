// Package cassandra is the database client used by the session and metadata
// stores. It wraps a gocql session, renders the fixed statement shapes the
// stores issue, and translates driver failures into storage errors.
//
// The stores depend only on the Executor interface, so tests can swap the
// gocql-backed Client for the in-memory cluster in cassandra/testutil.
//
//	client, err := cassandra.New(cfg, log)
//	rows, err := client.Execute(ctx, stmt.At(cassandra.Quorum), "saml", key)
package cassandra
