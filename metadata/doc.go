// Package metadata stores federation metadata for remote identity
// providers in the entities table, one row per (feed, entity id).
//
// Rows are never removed by normal operation: SoftDelete flips enabled to
// false and every read path except GetRegAuthUI and GetLogo treats a
// disabled row as absent. Metadata, UI metadata and verification are stored
// as JSON text.
//
// The store keeps an in-process cache of metadata sets. Only the
// "saml20-idp-remote" set is backed by storage (the "edugain" feed by
// default); other set names resolve to an empty set without a query. The
// cache is filled once per set and never invalidated, so a long-lived
// process sees feed changes only after restart.
package metadata
