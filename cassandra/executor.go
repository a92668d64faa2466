package cassandra

import "context"

// Executor runs fixed statement shapes. Select statements return their rows;
// upserts and deletes return nil rows.
type Executor interface {
	Execute(ctx context.Context, stmt Statement, args ...any) ([]Row, error)
}

// SchemaApplier runs DDL produced by Schema.
type SchemaApplier interface {
	ApplyDDL(ctx context.Context, ddl string) error
}
