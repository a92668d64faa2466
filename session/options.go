package session

import (
	"time"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/codec"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/observability"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The store logs under the "session-store" component.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock sets the clock used to turn expiry instants into TTLs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCodec replaces the value codec.
func WithCodec(c *codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithInstrumenter traces and meters every operation.
func WithInstrumenter(inst *observability.Instrumenter) Option {
	return func(s *Store) { s.inst = inst }
}

// WithConsistency overrides the QUORUM default.
func WithConsistency(c cassandra.Consistency) Option {
	return func(s *Store) { s.consistency = c }
}
