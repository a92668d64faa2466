package security

import (
	"crypto/tls"
	"reflect"
	"testing"

	"github.com/kbukum/cassandrastore/security/tlstest"
)

func TestTLSConfig_Build_Disabled(t *testing.T) {
	var nilCfg *TLSConfig
	if result, err := nilCfg.Build(); err != nil || result != nil {
		t.Fatalf("expected nil config for nil receiver, got %v, %v", result, err)
	}
	if result, err := (&TLSConfig{}).Build(); err != nil || result != nil {
		t.Fatalf("expected nil config for zero value, got %v, %v", result, err)
	}
}

func TestTLSConfig_Build_EnabledDefaults(t *testing.T) {
	result, err := (&TLSConfig{Enabled: true}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil tls.Config")
	}
	if result.InsecureSkipVerify {
		t.Error("peer verification must be on by default")
	}
	if result.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected MinVersion=TLS12, got %d", result.MinVersion)
	}
	if result.RootCAs != nil {
		t.Error("expected system roots when no CA file is configured")
	}
}

func TestTLSConfig_Build_MinVersion(t *testing.T) {
	result, err := (&TLSConfig{Enabled: true, MinVersion: "1.3"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected MinVersion=TLS13, got %d", result.MinVersion)
	}
	if _, err := (&TLSConfig{Enabled: true, MinVersion: "1.0"}).Build(); err == nil {
		t.Error("expected error for unsupported min_version")
	}
}

func TestTLSConfig_Build_InvalidFiles(t *testing.T) {
	if _, err := (&TLSConfig{CAFiles: []string{"/nonexistent/ca.pem"}}).Build(); err == nil {
		t.Error("expected error for nonexistent CA file")
	}
	if _, err := (&TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}).Build(); err == nil {
		t.Error("expected error for nonexistent cert files")
	}
	bad := tlstest.InvalidPEM(t, "bad-ca.pem")
	if _, err := (&TLSConfig{CAFiles: []string{bad}}).Build(); err == nil {
		t.Error("expected error for invalid CA PEM content")
	}
}

func TestTLSConfig_Build_MultipleCAs(t *testing.T) {
	certs := tlstest.New(t)
	extra := tlstest.CAFile(t)

	result, err := (&TLSConfig{CAFiles: []string{certs.CAFile, extra}}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil {
		t.Fatal("expected RootCAs to be set")
	}
	//nolint:staticcheck // Subjects is fine for pools built from PEM files.
	if n := len(result.RootCAs.Subjects()); n != 2 {
		t.Errorf("expected 2 CA subjects, got %d", n)
	}
}

func TestTLSConfig_Build_FullConfig(t *testing.T) {
	certs := tlstest.New(t)
	cfg := &TLSConfig{
		CAFiles:    []string{certs.CAFile},
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "localhost",
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Certificates) != 1 {
		t.Error("expected 1 client certificate")
	}
	if result.ServerName != "localhost" {
		t.Errorf("expected ServerName=localhost, got %s", result.ServerName)
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&TLSConfig{CertFile: "cert.pem"}).Validate(); err == nil {
		t.Error("expected error when CertFile set without KeyFile")
	}
	if err := (&TLSConfig{KeyFile: "key.pem"}).Validate(); err == nil {
		t.Error("expected error when KeyFile set without CertFile")
	}
	if err := (&TLSConfig{MinVersion: "tls13"}).Validate(); err == nil {
		t.Error("expected error for bad min_version")
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"enabled", &TLSConfig{Enabled: true}, true},
		{"skip_verify", &TLSConfig{SkipVerify: true}, true},
		{"ca_files", &TLSConfig{CAFiles: []string{"ca.pem"}}, true},
		{"cert_file", &TLSConfig{CertFile: "cert.pem"}, true},
		{"server_name", &TLSConfig{ServerName: "cassandra.local"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestParseCAList(t *testing.T) {
	got := ParseCAList(" /a.pem, ,/b.pem,")
	want := []string{"/a.pem", "/b.pem"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCAList = %v, want %v", got, want)
	}
	if ParseCAList("") != nil {
		t.Error("expected nil for empty list")
	}
}
