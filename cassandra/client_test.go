package cassandra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocql/gocql"

	apperrors "github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
	"github.com/kbukum/cassandrastore/security"
	"github.com/kbukum/cassandrastore/security/tlstest"
)

func TestNewClusterConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Consistency = Quorum
	cfg.ProtoVersion = 4
	cfg.Username = "store"
	cfg.Password = "secret"
	cfg.LocalDC = "dc1"

	cluster, err := newClusterConfig(cfg)
	if err != nil {
		t.Fatalf("newClusterConfig: %v", err)
	}
	if len(cluster.Hosts) != 2 || cluster.Keyspace != "saml" || cluster.Port != 9042 {
		t.Errorf("hosts/keyspace/port = %v/%s/%d", cluster.Hosts, cluster.Keyspace, cluster.Port)
	}
	if cluster.Consistency != gocql.Quorum || cluster.ProtoVersion != 4 {
		t.Errorf("consistency/proto = %v/%d", cluster.Consistency, cluster.ProtoVersion)
	}
	auth, ok := cluster.Authenticator.(gocql.PasswordAuthenticator)
	if !ok || auth.Username != "store" || auth.Password != "secret" {
		t.Errorf("authenticator = %#v", cluster.Authenticator)
	}
	if cluster.PoolConfig.HostSelectionPolicy == nil {
		t.Error("expected a DC-aware host selection policy")
	}
	retry, ok := cluster.RetryPolicy.(*gocql.SimpleRetryPolicy)
	if !ok || retry.NumRetries != 0 {
		t.Errorf("retry policy = %#v, want no driver retries", cluster.RetryPolicy)
	}
	if cluster.SslOpts != nil {
		t.Error("TLS should be off by default")
	}
}

func TestNewClusterConfigTLS(t *testing.T) {
	certs := tlstest.New(t)
	cfg := validConfig()
	cfg.TLS = security.TLSConfig{
		CAFiles:  []string{certs.CAFile},
		CertFile: certs.CertFile,
		KeyFile:  certs.KeyFile,
	}

	cluster, err := newClusterConfig(cfg)
	if err != nil {
		t.Fatalf("newClusterConfig: %v", err)
	}
	if cluster.SslOpts == nil || cluster.SslOpts.Config == nil {
		t.Fatal("expected SslOpts")
	}
	if !cluster.SslOpts.EnableHostVerification {
		t.Error("host verification should stay on")
	}
	if len(cluster.SslOpts.Config.Certificates) != 1 {
		t.Error("expected client certificate")
	}

	cfg.TLS = security.TLSConfig{CAFiles: []string{tlstest.InvalidPEM(t, "ca.pem")}}
	if _, err := newClusterConfig(cfg); err == nil {
		t.Error("expected error for invalid CA")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Enabled: true}, logger.Nop()); err == nil {
		t.Error("expected validation error")
	}
	if _, err := New(Config{Hosts: []string{"127.0.0.1"}, Keyspace: "saml"}, logger.Nop()); err == nil {
		t.Error("expected error for disabled config")
	}
}

func TestComponentStartRejectsInvalidConfig(t *testing.T) {
	cfg := Config{Enabled: true, Keyspace: "saml"}
	cfg.Connect.Attempts = 5
	cfg.Connect.Backoff = time.Hour
	c := NewComponent(cfg, logger.Nop())

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error for missing hosts")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start waited on a configuration error")
	}
	if c.Client() != nil {
		t.Error("failed Start should leave no client")
	}
	if h := c.Health(context.Background()); h.OK() {
		t.Errorf("health = %+v", h)
	}
}

func TestConnectRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("cassandra is disabled"), false},
		{"connection failed", apperrors.ConnectionFailed("[10.0.0.1]", gocql.ErrNoConnections), true},
		{"transient timeout", FromCassandra("ping", "SELECT", gocql.ErrTimeoutNoResponse), true},
		{"bad credentials", FromCassandra("ping", "SELECT", requestError{code: gocql.ErrCodeCredentials}), false},
		{"precondition", apperrors.Precondition("hosts", "required"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectRetryable(tt.err); got != tt.want {
				t.Errorf("connectRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
