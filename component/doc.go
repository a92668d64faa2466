// Package component defines the lifecycle interfaces shared by the
// infrastructure pieces of the module (the Cassandra client in particular)
// and an ordered registry that starts them and stops them in reverse.
package component
