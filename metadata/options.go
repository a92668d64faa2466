package metadata

import (
	"time"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/observability"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The store logs under the "metadata-store" component.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock sets the clock used for created, updated and logo_updated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithInstrumenter traces and meters every operation.
func WithInstrumenter(inst *observability.Instrumenter) Option {
	return func(s *Store) { s.inst = inst }
}

// WithConsistency overrides the QUORUM default.
func WithConsistency(c cassandra.Consistency) Option {
	return func(s *Store) { s.consistency = c }
}

// WithFeed sets the feed SupportedSet is read from.
func WithFeed(feed string) Option {
	return func(s *Store) {
		if feed != "" {
			s.feed = feed
		}
	}
}

// WithCache shares a cache between stores. Stores sharing a cache must read
// the same feed.
func WithCache(c *Cache) Option {
	return func(s *Store) { s.cache = c }
}
