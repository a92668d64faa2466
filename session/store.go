package session

import (
	"context"
	"math"
	"time"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/codec"
	"github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/observability"
	"github.com/kbukum/cassandrastore/validation"
)

// MinExpiry is the earliest accepted expiry, in seconds since the Unix
// epoch. Anything at or below it looks like a relative duration passed by
// mistake and is rejected.
const MinExpiry = 30 * 24 * 60 * 60

var (
	selectValue    = cassandra.NewSelect("session", []string{"value"}, []string{"type", "key"})
	insertValue    = cassandra.NewUpsert("session", []string{"type", "key", "value"})
	insertValueTTL = insertValue.UsingTTL()
	deleteValue    = cassandra.NewDelete("session", []string{"type", "key"})
)

// Store reads and writes the session table. It is safe for concurrent use.
type Store struct {
	exec        cassandra.Executor
	codec       *codec.Codec
	log         *logger.Logger
	now         func() time.Time
	inst        *observability.Instrumenter
	consistency cassandra.Consistency
}

// New creates a Store on top of exec.
func New(exec cassandra.Executor, opts ...Option) *Store {
	s := &Store{
		exec:        exec,
		now:         time.Now,
		consistency: cassandra.Quorum,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("session-store")
	} else {
		s.log = s.log.WithComponent("session-store")
	}
	if s.codec == nil {
		s.codec = codec.New()
	}
	if s.inst == nil {
		s.inst = observability.NewInstrumenter("session-store", nil, nil)
	}
	return s
}

// Get returns the value stored under (typ, key). found is false when there is
// no live row or the stored text does not decode.
func (s *Store) Get(ctx context.Context, typ, key string) (value any, found bool, err error) {
	if err := requireType(typ); err != nil {
		return nil, false, err
	}
	nkey := codec.NormalizeKey(key)

	err = s.inst.Do(ctx, "session.get", func(ctx context.Context) error {
		rows, err := s.execute(ctx, "session.get", selectValue, typ, nkey)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		value, found = s.codec.Decode(rows[0].String("value"))
		if !found {
			s.log.WithContext(ctx).Warn("Stored session value does not decode", map[string]interface{}{
				logger.FieldSessionType: typ,
			})
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Set stores value under (typ, key). A zero expiresAt means the row never
// expires. Otherwise expiresAt must be an absolute instant after MinExpiry;
// when it is already in the past nothing is written and Set returns nil.
func (s *Store) Set(ctx context.Context, typ, key string, value any, expiresAt time.Time) error {
	err := validation.New().
		Required("type", typ).
		Custom(expiresAt.IsZero() || expiresAt.Unix() > MinExpiry, "expires_at", "must be an absolute time, not a duration").
		Precondition()
	if err != nil {
		return err
	}

	text, err := s.codec.Encode(value)
	if err != nil {
		return errors.Precondition("value", "value cannot be encoded").WithCause(err)
	}
	nkey := codec.NormalizeKey(key)

	if expiresAt.IsZero() {
		return s.inst.Do(ctx, "session.set", func(ctx context.Context) error {
			_, err := s.execute(ctx, "session.set", insertValue, typ, nkey, text)
			return err
		})
	}

	ttl := ttlSeconds(expiresAt.Sub(s.now()))
	if ttl <= 0 {
		s.log.WithContext(ctx).Debug("Skipping write of already expired session value", map[string]interface{}{
			logger.FieldSessionType: typ,
			logger.FieldTTL:         ttl,
		})
		return nil
	}
	return s.inst.Do(ctx, "session.set", func(ctx context.Context) error {
		_, err := s.execute(ctx, "session.set", insertValueTTL, typ, nkey, text, ttl)
		return err
	})
}

// Delete removes the row for (typ, key). A missing row is not an error.
func (s *Store) Delete(ctx context.Context, typ, key string) error {
	if err := requireType(typ); err != nil {
		return err
	}
	nkey := codec.NormalizeKey(key)
	return s.inst.Do(ctx, "session.delete", func(ctx context.Context) error {
		_, err := s.execute(ctx, "session.delete", deleteValue, typ, nkey)
		return err
	})
}

func (s *Store) execute(ctx context.Context, op string, stmt cassandra.Statement, args ...any) ([]cassandra.Row, error) {
	stmt = stmt.At(s.consistency)
	rows, err := s.exec.Execute(ctx, stmt, args...)
	if err != nil {
		appErr := cassandra.FromCassandra(op, stmt.CQL(), err)
		s.log.WithContext(ctx).Error("Session storage operation failed", logger.MergeWithError(
			logger.StatementFields(op, stmt.CQL(), stmt.Consistency.String()), err))
		return nil, appErr
	}
	return rows, nil
}

func requireType(typ string) error {
	return validation.New().Required("type", typ).Precondition()
}

// ttlSeconds rounds d up to whole seconds.
func ttlSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
