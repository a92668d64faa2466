package metadata

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"
	"github.com/zeebo/blake3"

	"github.com/kbukum/cassandrastore/cassandra"
	"github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/observability"
	"github.com/kbukum/cassandrastore/validation"
)

var (
	entityKey = []string{"feed", "entityid"}
	feedKey   = []string{"feed"}

	selectEntity = cassandra.NewSelect("entities",
		[]string{"entityid", "feed", "enabled", "verification", "metadata", "uimeta", "reg", "created", "updated"},
		entityKey)
	selectFeed = cassandra.NewSelect("entities",
		[]string{"entityid", "feed", "enabled", "verification", "metadata", "uimeta", "reg", "logo_etag", "created", "updated"},
		feedKey).Filtering()
	selectRegAuth = cassandra.NewSelect("entities",
		[]string{"entityid", "enabled", "verification", "metadata", "uimeta", "reg", "logo_etag", "created", "updated"},
		feedKey).Filtering()
	selectLogo = cassandra.NewSelect("entities",
		[]string{"enabled", "logo", "logo_updated", "logo_etag"},
		entityKey)

	insertCreated = cassandra.NewUpsert("entities",
		[]string{"feed", "entityid", "metadata", "uimeta", "reg", "enabled", "created"})
	insertUpdated = cassandra.NewUpsert("entities",
		[]string{"feed", "entityid", "metadata", "uimeta", "reg", "enabled", "updated"})
	insertDisabled = cassandra.NewUpsert("entities",
		[]string{"feed", "entityid", "enabled", "updated"})
	insertLogo = cassandra.NewUpsert("entities",
		[]string{"feed", "entityid", "logo", "logo_updated", "logo_etag"})

	deleteEntity = cassandra.NewDelete("entities", entityKey)
)

// Store reads and writes the entities table. It is safe for concurrent use.
type Store struct {
	exec        cassandra.Executor
	log         *logger.Logger
	now         func() time.Time
	inst        *observability.Instrumenter
	consistency cassandra.Consistency
	feed        string
	cache       *Cache
}

// New creates a Store on top of exec with an empty cache.
func New(exec cassandra.Executor, opts ...Option) *Store {
	s := &Store{
		exec:        exec,
		now:         time.Now,
		consistency: cassandra.Quorum,
		feed:        DefaultFeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("metadata-store")
	} else {
		s.log = s.log.WithComponent("metadata-store")
	}
	if s.inst == nil {
		s.inst = observability.NewInstrumenter("metadata-store", nil, nil)
	}
	if s.cache == nil {
		s.cache = NewCache()
	}
	return s
}

// Feed returns the feed SupportedSet is read from.
func (s *Store) Feed() string { return s.feed }

// GetMetadataSet returns every enabled entity of set keyed by entity id, with
// the id also stored under "entityid" in each metadata object. Sets other than
// SupportedSet are empty. Results are cached for the lifetime of the store and
// must not be modified.
func (s *Store) GetMetadataSet(ctx context.Context, set string) (map[string]Metadata, error) {
	if cached, ok := s.cache.Load(set); ok {
		s.inst.CacheLookup(ctx, true)
		return cached, nil
	}
	s.inst.CacheLookup(ctx, false)

	return s.cache.LoadOrFill(set, func() (map[string]Metadata, error) {
		if set != SupportedSet {
			return map[string]Metadata{}, nil
		}
		feed, err := s.GetFeed(ctx, s.feed)
		if err != nil {
			return nil, err
		}
		result := make(map[string]Metadata, len(feed))
		for id, e := range feed {
			if !e.Enabled || e.Metadata == nil {
				continue
			}
			e.Metadata["entityid"] = id
			result[id] = e.Metadata
		}
		s.log.WithContext(ctx).Info("Metadata set loaded", map[string]interface{}{
			logger.FieldSet:   set,
			logger.FieldFeed:  s.feed,
			logger.FieldCount: len(result),
		})
		return result, nil
	})
}

// Preload fills the cache for SupportedSet.
func (s *Store) Preload(ctx context.Context) error {
	_, err := s.GetMetadataSet(ctx, SupportedSet)
	return err
}

// GetMetadata returns the metadata of entityID in set, or nil when the set is
// not SupportedSet or the entity is absent or disabled. It reads storage
// directly and does not consult the cache.
func (s *Store) GetMetadata(ctx context.Context, entityID, set string) (Metadata, error) {
	if set != SupportedSet {
		return nil, nil
	}
	return s.GetEntity(ctx, s.feed, entityID)
}

// GetEntity returns the metadata of one entity, or nil when the row is
// missing or disabled.
func (s *Store) GetEntity(ctx context.Context, feed, entityID string) (Metadata, error) {
	e, err := s.LookupEntity(ctx, feed, entityID)
	if err != nil || e == nil {
		return nil, err
	}
	return e.Metadata, nil
}

// LookupEntity returns the full decoded row of one entity, or nil when the
// row is missing or disabled.
func (s *Store) LookupEntity(ctx context.Context, feed, entityID string) (*Entity, error) {
	if err := requireKey(feed, entityID); err != nil {
		return nil, err
	}
	var entity *Entity
	err := s.inst.Do(ctx, "metadata.get_entity", func(ctx context.Context) error {
		rows, err := s.execute(ctx, "metadata.get_entity", selectEntity, feed, entityID)
		if err != nil || len(rows) == 0 {
			return err
		}
		e := s.decodeRow(ctx, rows[0], feed)
		if e.Enabled {
			entity = e
		}
		return nil
	})
	return entity, err
}

// Insert writes an enabled entity. Only the columns it names are touched, so
// a logo written earlier survives.
func (s *Store) Insert(ctx context.Context, p InsertParams) error {
	if err := validation.Precondition(p); err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return errors.Precondition("metadata", "metadata cannot be encoded as JSON").WithCause(err)
	}
	uiJSON, err := json.Marshal(p.UIMetadata)
	if err != nil {
		return errors.Precondition("ui_metadata", "ui metadata cannot be encoded as JSON").WithCause(err)
	}

	stmt := insertCreated
	if p.IsUpdate {
		stmt = insertUpdated
	}
	return s.inst.Do(ctx, "metadata.insert", func(ctx context.Context) error {
		_, err := s.execute(ctx, "metadata.insert", stmt,
			p.Feed, p.EntityID, string(metadataJSON), string(uiJSON), p.RegistrationAuthority, true, s.now())
		return err
	})
}

// SoftDelete disables an entity. Only enabled and updated are written; the
// metadata stays in place.
func (s *Store) SoftDelete(ctx context.Context, feed, entityID string) error {
	if err := requireKey(feed, entityID); err != nil {
		return err
	}
	return s.inst.Do(ctx, "metadata.soft_delete", func(ctx context.Context) error {
		_, err := s.execute(ctx, "metadata.soft_delete", insertDisabled, feed, entityID, false, s.now())
		return err
	})
}

// Delete removes the row. A missing row is not an error.
func (s *Store) Delete(ctx context.Context, feed, entityID string) error {
	if err := requireKey(feed, entityID); err != nil {
		return err
	}
	return s.inst.Do(ctx, "metadata.delete", func(ctx context.Context) error {
		_, err := s.execute(ctx, "metadata.delete", deleteEntity, feed, entityID)
		return err
	})
}

// GetFeed returns the enabled entities of feed keyed by entity id.
func (s *Store) GetFeed(ctx context.Context, feed string) (map[string]*Entity, error) {
	if err := validation.New().Required("feed", feed).Precondition(); err != nil {
		return nil, err
	}
	result := make(map[string]*Entity)
	err := s.inst.Do(ctx, "metadata.get_feed", func(ctx context.Context) error {
		rows, err := s.execute(ctx, "metadata.get_feed", selectFeed, feed)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if !row.Bool("enabled") {
				continue
			}
			e := s.decodeRow(ctx, row, feed)
			result[e.EntityID] = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetRegAuthUI returns the entities of feed registered by regAuth, keyed by
// entity id, for administrative views. Disabled entities are included.
// Metadata is only decoded to evaluate excludeHidden and is not returned.
func (s *Store) GetRegAuthUI(ctx context.Context, feed, regAuth string, excludeHidden bool) (map[string]*Entity, error) {
	if err := validation.New().Required("feed", feed).Precondition(); err != nil {
		return nil, err
	}
	result := make(map[string]*Entity)
	err := s.inst.Do(ctx, "metadata.get_reg_auth_ui", func(ctx context.Context) error {
		rows, err := s.execute(ctx, "metadata.get_reg_auth_ui", selectRegAuth, feed)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.String("reg") != regAuth {
				continue
			}
			e := s.decodeRow(ctx, row, feed)
			if excludeHidden && IsHiddenFromDiscovery(e.Metadata) {
				continue
			}
			e.Metadata = nil
			result[e.EntityID] = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetLogo returns the logo columns of an entity, or nil when there is no row.
func (s *Store) GetLogo(ctx context.Context, feed, entityID string) (*Logo, error) {
	if err := requireKey(feed, entityID); err != nil {
		return nil, err
	}
	var logo *Logo
	err := s.inst.Do(ctx, "metadata.get_logo", func(ctx context.Context) error {
		rows, err := s.execute(ctx, "metadata.get_logo", selectLogo, feed, entityID)
		if err != nil || len(rows) == 0 {
			return err
		}
		row := rows[0]
		logo = &Logo{
			Enabled: row.Bool("enabled"),
			Data:    row.Bytes("logo"),
			Updated: row.Epoch("logo_updated"),
			ETag:    row.String("logo_etag"),
		}
		return nil
	})
	return logo, err
}

// UpdateLogo stores the logo of an entity and returns its ETag, the hex
// BLAKE3 digest of the bytes.
func (s *Store) UpdateLogo(ctx context.Context, feed, entityID string, data []byte) (string, error) {
	if err := requireKey(feed, entityID); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.Precondition("logo", "logo must not be empty")
	}
	sum := blake3.Sum256(data)
	etag := hex.EncodeToString(sum[:])

	err := s.inst.Do(ctx, "metadata.update_logo", func(ctx context.Context) error {
		_, err := s.execute(ctx, "metadata.update_logo", insertLogo, feed, entityID, data, s.now(), etag)
		return err
	})
	if err != nil {
		return "", err
	}
	return etag, nil
}

func (s *Store) execute(ctx context.Context, op string, stmt cassandra.Statement, args ...any) ([]cassandra.Row, error) {
	stmt = stmt.At(s.consistency)
	rows, err := s.exec.Execute(ctx, stmt, args...)
	if err != nil {
		appErr := cassandra.FromCassandra(op, stmt.CQL(), err)
		fields := logger.MergeWithError(logger.StatementFields(op, stmt.CQL(), stmt.Consistency.String()), err)
		fields[logger.FieldFeed] = args[0]
		s.log.WithContext(ctx).Error("Metadata storage operation failed", fields)
		return nil, appErr
	}
	return rows, nil
}

// decodeRow decodes the columns present in row. JSON columns that fail to
// decode are left nil.
func (s *Store) decodeRow(ctx context.Context, row cassandra.Row, feed string) *Entity {
	e := &Entity{
		Feed:                  feed,
		EntityID:              row.String("entityid"),
		Enabled:               row.Bool("enabled"),
		RegistrationAuthority: row.String("reg"),
		LogoETag:              row.String("logo_etag"),
		Created:               row.Epoch("created"),
		Updated:               row.Epoch("updated"),
	}
	md, _ := s.decodeJSON(ctx, row, "metadata", e.EntityID).(map[string]any)
	e.Metadata = md
	e.UIMetadata = s.decodeJSON(ctx, row, "uimeta", e.EntityID)
	e.Verification = s.decodeJSON(ctx, row, "verification", e.EntityID)
	return e
}

func (s *Store) decodeJSON(ctx context.Context, row cassandra.Row, column, entityID string) any {
	text := row.String(column)
	if text == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		s.log.WithContext(ctx).Warn("Stored JSON column does not decode", map[string]interface{}{
			logger.FieldEntityID: entityID,
			"column":             column,
			logger.FieldError:    errors.Decode(column, err).Error(),
		})
		return nil
	}
	return v
}

func requireKey(feed, entityID string) error {
	return validation.New().
		Required("feed", feed).
		Required("entity_id", entityID).
		Precondition()
}
