// Package session stores opaque session and application values in the
// session table, keyed by (type, key), with optional expiry.
//
//	store := session.New(client, session.WithLogger(log))
//	err := store.Set(ctx, "saml2", id, state, time.Now().Add(8*time.Hour))
//	v, found, err := store.Get(ctx, "saml2", id)
//
// Keys are normalized with codec.NormalizeKey and values are encoded with
// codec.Codec. Every statement runs at QUORUM unless WithConsistency says
// otherwise. Cluster failures are returned as TRANSIENT_STORAGE errors and
// are never retried here.
package session
