// Package security builds the client-side TLS configuration used to reach
// the Cassandra cluster.
//
//	cfg := security.TLSConfig{
//	    Enabled: true,
//	    CAFiles: []string{"/etc/ssl/cassandra/ca1.pem", "/etc/ssl/cassandra/ca2.pem"},
//	}
//	tlsConfig, err := cfg.Build()
//
// Peer verification is on unless SkipVerify is set explicitly.
package security
