// Package config handles configuration for the development auth server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"slices"
	"time"
)

// Config holds runtime settings for the auth server.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP API (/login, /token, /logout, /api).
//   - EndpointAddrGRPC: bind address of the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps refresh tokens in memory.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - ClientIDs: client ids accepted at login and refresh.
//   - DemoUsername / DemoPassword: the single account the server knows.
type Config struct {
	EndpointAddr                 string
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	ClientIDs                    []string
	DemoUsername                 string
	DemoPassword                 string
	Debug                        bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 1 * time.Minute
	c.RefreshTokenValidityDuration = 60 * time.Minute
	c.ClientIDs = []string{"gophgate-cli"}
	c.DemoUsername = "demo"
	c.DemoPassword = "demo"
	c.Debug = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// KnownClient reports whether id is one of ClientIDs.
func (c *Config) KnownClient(id string) bool {
	return slices.Contains(c.ClientIDs, id)
}
