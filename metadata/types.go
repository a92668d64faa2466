package metadata

const (
	// SupportedSet is the only metadata set backed by storage.
	SupportedSet = "saml20-idp-remote"

	// DefaultFeed is the feed SupportedSet is read from.
	DefaultFeed = "edugain"
)

// Metadata is a decoded metadata JSON object.
type Metadata = map[string]any

// Entity is one decoded row of the entities table. Which fields are filled
// depends on the query that produced it.
type Entity struct {
	Feed                  string   `json:"feed"`
	EntityID              string   `json:"entityid"`
	Enabled               bool     `json:"enabled"`
	Metadata              Metadata `json:"metadata,omitempty"`
	UIMetadata            any      `json:"uimeta,omitempty"`
	Verification          any      `json:"verification,omitempty"`
	RegistrationAuthority string   `json:"reg,omitempty"`
	LogoETag              string   `json:"logo_etag,omitempty"`
	// Created and Updated are unix seconds, nil when never written.
	Created *int64 `json:"created,omitempty"`
	Updated *int64 `json:"updated,omitempty"`
}

// Logo is the logo projection of an entity row. Enabled is surfaced as-is;
// callers decide what a disabled entity's logo means.
type Logo struct {
	Enabled bool   `json:"enabled"`
	Data    []byte `json:"-"`
	Updated *int64 `json:"logo_updated,omitempty"`
	ETag    string `json:"logo_etag,omitempty"`
}

// InsertParams are the arguments of Insert.
type InsertParams struct {
	Feed     string   `mapstructure:"feed" validate:"required"`
	EntityID string   `mapstructure:"entity_id" validate:"required"`
	Metadata Metadata `mapstructure:"metadata" validate:"required"`
	// UIMetadata is any JSON-encodable value; nil is stored as JSON null.
	UIMetadata            any    `mapstructure:"ui_metadata"`
	RegistrationAuthority string `mapstructure:"registration_authority"`
	// IsUpdate selects which timestamp column the write sets: updated when
	// true, created otherwise. Callers must know whether the entity exists.
	IsUpdate bool `mapstructure:"is_update"`
}

const (
	entityCategoryAttribute = "http://macedir.org/entity-category"
	hideFromDiscovery       = "http://refeds.org/category/hide-from-discovery"
)

// IsHiddenFromDiscovery reports whether md carries the REFEDS
// hide-from-discovery entity category, or the hide.from.discovery flag set
// by metadata aggregation tools.
func IsHiddenFromDiscovery(md Metadata) bool {
	if md == nil {
		return false
	}
	if hidden, _ := md["hide.from.discovery"].(bool); hidden {
		return true
	}
	attrs, _ := md["EntityAttributes"].(map[string]any)
	switch categories := attrs[entityCategoryAttribute].(type) {
	case []any:
		for _, c := range categories {
			if c == hideFromDiscovery {
				return true
			}
		}
	case string:
		return categories == hideFromDiscovery
	}
	return false
}
