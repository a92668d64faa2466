// Package codec turns caller keys and values into the text stored in the
// session table.
//
// Keys longer than MaxKeyLength bytes are replaced by their SHA-1 digest.
// Values are MessagePack-encoded and then percent-encoded, so every stored
// value is plain ASCII and decodes back to the same kind of value:
// integers stay integers, maps stay maps.
package codec
