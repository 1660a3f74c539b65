package service

import "testing"

func TestPostgresURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		db   string
		want string
	}{
		{"localhost", 5432, "meetings", "postgres://localhost:5432/meetings"},
		{"pg.internal", 6432, "ms", "postgres://pg.internal:6432/ms"},
		{"::1", 5432, "ms", "postgres://[::1]:5432/ms"},
	}

	for _, tt := range tests {
		if got := PostgresURL(tt.host, tt.port, tt.db); got != tt.want {
			t.Errorf("PostgresURL(%q, %d, %q) = %q, ожидалось %q", tt.host, tt.port, tt.db, got, tt.want)
		}
	}
}

func TestJWKSHealthPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://idp.example.com/realms/meetings/protocol/openid-connect/certs", "/realms/meetings/protocol/openid-connect/certs"},
		{"https://idp.example.com/.well-known/jwks.json", "/.well-known/jwks.json"},
		{"https://idp.example.com", "/health"},
		{"://bad", "/health"},
	}

	for _, tt := range tests {
		if got := jwksHealthPath(tt.url); got != tt.want {
			t.Errorf("jwksHealthPath(%q) = %q, ожидалось %q", tt.url, got, tt.want)
		}
	}
}
